package mocks

import (
	"context"

	"github.com/Behyna/payment-services/esewagateway/internal/service"
	"github.com/stretchr/testify/mock"
)

type PaymentService struct {
	mock.Mock
}

func (m *PaymentService) Initiate(ctx context.Context, cmd service.InitiatePaymentCommand) (service.InitiatePaymentResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(service.InitiatePaymentResult), args.Error(1)
}

func (m *PaymentService) HandleCallback(ctx context.Context, payload string) (service.ReconcileResult, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(service.ReconcileResult), args.Error(1)
}

func (m *PaymentService) HandleStatusFallback(ctx context.Context, transactionUUID string) (service.ReconcileResult, error) {
	args := m.Called(ctx, transactionUUID)
	return args.Get(0).(service.ReconcileResult), args.Error(1)
}
