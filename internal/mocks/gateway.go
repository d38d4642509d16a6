package mocks

import (
	"context"

	"github.com/Behyna/payment-services/esewagateway/pkg/esewa"
	"github.com/stretchr/testify/mock"
)

type Gateway struct {
	mock.Mock
}

func (m *Gateway) FormEndpoint() string {
	args := m.Called()
	return args.String(0)
}

func (m *Gateway) StatusEndpoint() string {
	args := m.Called()
	return args.String(0)
}

func (m *Gateway) RelayURL(transactionUUID string) string {
	args := m.Called(transactionUUID)
	return args.String(0)
}

func (m *Gateway) BuildRequestSignature(totalAmount, transactionUUID string) string {
	args := m.Called(totalAmount, transactionUUID)
	return args.String(0)
}

func (m *Gateway) BuildFormPayload(params esewa.FormParams, overrides esewa.URLOverrides) (map[string]string, error) {
	args := m.Called(params, overrides)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]string), args.Error(1)
}

func (m *Gateway) VerifyCallback(payload string) (map[string]any, error) {
	args := m.Called(payload)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *Gateway) StatusCheck(ctx context.Context, productCode, totalAmount, transactionUUID string) (map[string]any, error) {
	args := m.Called(ctx, productCode, totalAmount, transactionUUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}
