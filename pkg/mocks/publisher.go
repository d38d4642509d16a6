package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type Publisher struct {
	mock.Mock
}

func (m *Publisher) Publish(ctx context.Context, exchange string, routingKey string, body []byte) error {
	args := m.Called(ctx, exchange, routingKey, body)
	return args.Error(0)
}
