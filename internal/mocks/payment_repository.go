package mocks

import (
	"context"

	"github.com/Behyna/payment-services/esewagateway/internal/model"
	"github.com/stretchr/testify/mock"
)

type PaymentRepository struct {
	mock.Mock
}

func (m *PaymentRepository) Create(ctx context.Context, p *model.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *PaymentRepository) FindByTransactionUUID(ctx context.Context, transactionUUID string) (*model.Payment, error) {
	args := m.Called(ctx, transactionUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *PaymentRepository) FindForUpdate(ctx context.Context, transactionUUID string) (*model.Payment, error) {
	args := m.Called(ctx, transactionUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *PaymentRepository) Update(ctx context.Context, p *model.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
