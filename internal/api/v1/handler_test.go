package v1_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/Behyna/payment-services/esewagateway/internal/api"
	"github.com/Behyna/payment-services/esewagateway/internal/api/contract"
	apivalidator "github.com/Behyna/payment-services/esewagateway/internal/api/validator"
	v1 "github.com/Behyna/payment-services/esewagateway/internal/api/v1"
	"github.com/Behyna/payment-services/esewagateway/internal/config"
	"github.com/Behyna/payment-services/esewagateway/internal/constants"
	apierrors "github.com/Behyna/payment-services/esewagateway/internal/errors"
	"github.com/Behyna/payment-services/esewagateway/internal/mocks"
	"github.com/Behyna/payment-services/esewagateway/internal/model"
	"github.com/Behyna/payment-services/esewagateway/internal/service"
	"github.com/Behyna/payment-services/esewagateway/pkg/esewa"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

func newTestApp(t *testing.T) (*fiber.App, *mocks.PaymentService) {
	t.Helper()

	payments := &mocks.PaymentService{}
	cfg := &config.Config{Esewa: esewa.Config{ProductCode: "EPAYTEST"}}

	handler := v1.NewHandler(zap.NewNop(), payments,
		apivalidator.NewXValidator(validator.New(), nil), cfg)

	app := fiber.New(fiber.Config{ErrorHandler: apierrors.ErrorHandler()})
	api.SetupRoutes(app, handler)

	return app, payments
}

func decodeResponse(t *testing.T, resp *http.Response) contract.Response {
	t.Helper()

	body, err := io.ReadAll(resp.Body)
	assert.NoError(t, err)

	var parsed contract.Response
	assert.NoError(t, json.Unmarshal(body, &parsed))

	return parsed
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	return req
}

func completeResult() service.ReconcileResult {
	p := model.Payment{
		TransactionUUID: "250610-162413-ABCD",
		ProductCode:     "EPAYTEST",
		TotalAmount:     1000,
		Status:          model.StatusComplete,
	}

	return service.ReconcileResult{
		Payment: p,
		Raw:     map[string]any{"status": "COMPLETE"},
		Outcome: service.OutcomeFor(p),
	}
}

func TestHandler_InitiatePayment(t *testing.T) {
	t.Run("answers JSON for machine clients", func(t *testing.T) {
		app, payments := newTestApp(t)

		payments.On("Initiate", mock.Anything, mock.MatchedBy(func(cmd service.InitiatePaymentCommand) bool {
			return cmd.Amount == 1000 && cmd.TransactionUUID == "order-42"
		})).Return(service.InitiatePaymentResult{
			Payment:      model.Payment{TransactionUUID: "order-42", Status: model.StatusPending},
			FormEndpoint: "https://rc-epay.esewa.com.np/api/epay/main/v2/form",
			FormPayload:  map[string]string{"total_amount": "1000"},
		}, nil)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/esewa/pay",
			`{"amount":1000,"transaction_uuid":"order-42"}`))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		parsed := decodeResponse(t, resp)
		assert.True(t, parsed.OK)
		assert.Equal(t, "PENDING", parsed.Status)
		payments.AssertExpectations(t)
	})

	t.Run("rejects an invalid amount", func(t *testing.T) {
		app, payments := newTestApp(t)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/esewa/pay", `{"amount":0}`))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		payments.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything)
	})

	t.Run("rejects a malformed redirect URL", func(t *testing.T) {
		app, payments := newTestApp(t)

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/esewa/pay",
			`{"amount":1000,"success_url":"javascript:alert(1)"}`))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
		payments.AssertNotCalled(t, "Initiate", mock.Anything, mock.Anything)
	})

	t.Run("duplicate transaction maps to conflict", func(t *testing.T) {
		app, payments := newTestApp(t)

		payments.On("Initiate", mock.Anything, mock.Anything).
			Return(service.InitiatePaymentResult{},
				service.NewServiceError(constants.ErrCodePaymentExists, assert.AnError))

		resp, err := app.Test(jsonRequest(fiber.MethodPost, "/esewa/pay",
			`{"amount":1000,"transaction_uuid":"order-42"}`))

		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	})
}

func TestHandler_Callback(t *testing.T) {
	t.Run("acknowledges a posted payload", func(t *testing.T) {
		app, payments := newTestApp(t)

		payments.On("HandleCallback", mock.Anything, "payload-b64").Return(completeResult(), nil)

		form := url.Values{}
		form.Set("data", "payload-b64")

		req := httptest.NewRequest(fiber.MethodPost, "/esewa/callback", strings.NewReader(form.Encode()))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationForm)
		req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		parsed := decodeResponse(t, resp)
		assert.True(t, parsed.OK)
		assert.Equal(t, "COMPLETE", parsed.Status)
		payments.AssertExpectations(t)
	})

	t.Run("accepts the payload from the query string", func(t *testing.T) {
		app, payments := newTestApp(t)

		payments.On("HandleCallback", mock.Anything, "payload-b64").Return(completeResult(), nil)

		req := httptest.NewRequest(fiber.MethodGet, "/esewa/callback?data=payload-b64", nil)
		req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		payments.AssertExpectations(t)
	})

	t.Run("falls back to a status check for a bare transaction id", func(t *testing.T) {
		app, payments := newTestApp(t)

		payments.On("HandleStatusFallback", mock.Anything, "250610-162413-ABCD").
			Return(completeResult(), nil)

		req := httptest.NewRequest(fiber.MethodGet, "/esewa/callback/250610-162413-ABCD", nil)
		req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		payments.AssertExpectations(t)
	})

	t.Run("rejects a request with no payload or id", func(t *testing.T) {
		app, payments := newTestApp(t)

		req := httptest.NewRequest(fiber.MethodGet, "/esewa/callback", nil)
		req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

		parsed := decodeResponse(t, resp)
		assert.False(t, parsed.OK)
		payments.AssertNotCalled(t, "HandleCallback", mock.Anything, mock.Anything)
	})

	t.Run("maps a signature mismatch to 422", func(t *testing.T) {
		app, payments := newTestApp(t)

		payments.On("HandleCallback", mock.Anything, "tampered").
			Return(service.ReconcileResult{},
				service.NewServiceError(constants.ErrCodeSignatureMismatch, assert.AnError))

		req := httptest.NewRequest(fiber.MethodGet, "/esewa/callback?data=tampered", nil)
		req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

		parsed := decodeResponse(t, resp)
		assert.False(t, parsed.OK)
		assert.Equal(t, constants.GetErrorMessage(constants.ErrCodeSignatureMismatch), parsed.Error)
	})

	t.Run("maps an unknown transaction to 404", func(t *testing.T) {
		app, payments := newTestApp(t)

		payments.On("HandleStatusFallback", mock.Anything, "missing").
			Return(service.ReconcileResult{},
				service.NewServiceError(constants.ErrCodePaymentNotFound, assert.AnError))

		req := httptest.NewRequest(fiber.MethodGet, "/esewa/callback/missing", nil)
		req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("redirects a browser to the stored destination", func(t *testing.T) {
		app, payments := newTestApp(t)

		result := completeResult()
		result.Payment.Meta = map[string]any{"success_redirect": "https://store.example.com/thanks"}

		payments.On("HandleCallback", mock.Anything, "payload-b64").Return(result, nil)

		req := httptest.NewRequest(fiber.MethodGet, "/esewa/callback?data=payload-b64", nil)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "https://store.example.com/thanks", resp.Header.Get(fiber.HeaderLocation))
	})

	t.Run("explicit redirect parameter wins", func(t *testing.T) {
		app, payments := newTestApp(t)

		payments.On("HandleCallback", mock.Anything, "payload-b64").Return(completeResult(), nil)

		req := httptest.NewRequest(fiber.MethodGet,
			"/esewa/callback?data=payload-b64&redirect=https%3A%2F%2Fstore.example.com%2Fdone", nil)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "https://store.example.com/done", resp.Header.Get(fiber.HeaderLocation))
	})
}

func TestHandler_Relay(t *testing.T) {
	t.Run("missing data parameter", func(t *testing.T) {
		app, _ := newTestApp(t)

		req := httptest.NewRequest(fiber.MethodGet, "/esewa/relay", nil)
		req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		assert.NoError(t, err)
		assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	})
}

func TestHandler_Pong(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/ping", nil))
	assert.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "pong", string(body))
}
