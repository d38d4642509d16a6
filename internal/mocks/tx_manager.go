package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// TxManager runs the unit of work directly; there is no transaction to carry.
type TxManager struct {
	mock.Mock
}

func (m *TxManager) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}

	return fn(ctx)
}
