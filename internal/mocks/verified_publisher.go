package mocks

import (
	"context"

	"github.com/Behyna/payment-services/esewagateway/internal/model"
	"github.com/stretchr/testify/mock"
)

type VerifiedPublisher struct {
	mock.Mock
}

func (m *VerifiedPublisher) PaymentVerified(ctx context.Context, payment model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
