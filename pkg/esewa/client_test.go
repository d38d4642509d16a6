package esewa_test

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Behyna/payment-services/esewagateway/pkg/esewa"
	"github.com/Behyna/payment-services/esewagateway/pkg/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testConfig() esewa.Config {
	return esewa.Config{
		Mode:        esewa.ModeUAT,
		ProductCode: "EPAYTEST",
		SecretKey:   "8gBm/:&EnhH.1/q",
		BaseURL:     "https://merchant.example.com",
		Endpoints:   esewa.DefaultEndpoints(),
		Timeout:     5 * time.Second,
	}
}

func signedPayload(t *testing.T, secret string, fields map[string]any, signedFieldNames string) string {
	t.Helper()

	flat := make(map[string]string, len(fields))
	for k, v := range fields {
		flat[k] = esewa.FieldString(v)
	}

	signature, err := esewa.SignFields(flat, signedFieldNames, []byte(secret))
	assert.NoError(t, err)

	fields["signed_field_names"] = signedFieldNames
	fields["signature"] = signature

	payload, err := esewa.EncodePayload(fields)
	assert.NoError(t, err)

	return payload
}

func callbackFields() map[string]any {
	return map[string]any{
		"transaction_code": "000AWEO",
		"status":           "COMPLETE",
		"total_amount":     "1000.0",
		"transaction_uuid": "250610-162413",
		"product_code":     "EPAYTEST",
	}
}

func TestGateway_Endpoints(t *testing.T) {
	t.Run("uat", func(t *testing.T) {
		gw := esewa.NewGateway(testConfig(), nil)
		assert.Equal(t, "https://rc-epay.esewa.com.np/api/epay/main/v2/form", gw.FormEndpoint())
	})

	t.Run("production", func(t *testing.T) {
		cfg := testConfig()
		cfg.Mode = esewa.ModeProduction

		gw := esewa.NewGateway(cfg, nil)
		assert.Equal(t, "https://epay.esewa.com.np/api/epay/main/v2/form", gw.FormEndpoint())
	})

	t.Run("empty mode falls back to uat", func(t *testing.T) {
		cfg := testConfig()
		cfg.Mode = ""

		gw := esewa.NewGateway(cfg, nil)
		assert.Equal(t, "https://rc.esewa.com.np/api/epay/transaction/status/", gw.StatusEndpoint())
	})
}

func TestGateway_BuildFormPayload(t *testing.T) {
	params := esewa.FormParams{
		Amount:          900,
		TaxAmount:       100,
		TotalAmount:     1000,
		TransactionUUID: "250610-162413",
	}

	t.Run("signs the fixed initiation field set", func(t *testing.T) {
		gw := esewa.NewGateway(testConfig(), nil)

		payload, err := gw.BuildFormPayload(params, esewa.URLOverrides{})
		assert.NoError(t, err)
		assert.Equal(t, "1000", payload["total_amount"])
		assert.Equal(t, "EPAYTEST", payload["product_code"])
		assert.Equal(t, esewa.InitiationSignedFields, payload["signed_field_names"])
		assert.Equal(t, gw.BuildRequestSignature("1000", "250610-162413"), payload["signature"])
	})

	t.Run("absolute redirect URLs pass through", func(t *testing.T) {
		cfg := testConfig()
		cfg.SuccessURL = "https://store.example.com/thanks"
		gw := esewa.NewGateway(cfg, nil)

		payload, err := gw.BuildFormPayload(params, esewa.URLOverrides{})
		assert.NoError(t, err)
		assert.Equal(t, "https://store.example.com/thanks", payload["success_url"])
	})

	t.Run("relative redirect URLs join the base URL", func(t *testing.T) {
		cfg := testConfig()
		cfg.SuccessURL = "/checkout/done"
		gw := esewa.NewGateway(cfg, nil)

		payload, err := gw.BuildFormPayload(params, esewa.URLOverrides{})
		assert.NoError(t, err)
		assert.Equal(t, "https://merchant.example.com/checkout/done", payload["success_url"])
	})

	t.Run("overrides beat the configured URLs", func(t *testing.T) {
		cfg := testConfig()
		cfg.FailureURL = "https://store.example.com/failed"
		gw := esewa.NewGateway(cfg, nil)

		overrides := esewa.URLOverrides{FailureURL: "https://store.example.com/retry"}

		payload, err := gw.BuildFormPayload(params, overrides)
		assert.NoError(t, err)
		assert.Equal(t, "https://store.example.com/retry", payload["failure_url"])
	})

	t.Run("missing URLs fall back to the relay", func(t *testing.T) {
		gw := esewa.NewGateway(testConfig(), nil)

		payload, err := gw.BuildFormPayload(params, esewa.URLOverrides{})
		assert.NoError(t, err)
		assert.Equal(t, "https://merchant.example.com/esewa/relay/250610-162413", payload["success_url"])
		assert.Equal(t, payload["success_url"], payload["failure_url"])
	})

	t.Run("rejects a non-positive total", func(t *testing.T) {
		gw := esewa.NewGateway(testConfig(), nil)

		_, err := gw.BuildFormPayload(esewa.FormParams{TransactionUUID: "x"}, esewa.URLOverrides{})
		assert.ErrorIs(t, err, esewa.ErrMissingFormParams)
	})
}

func TestGateway_VerifyCallback(t *testing.T) {
	cfg := testConfig()
	csv := "transaction_code,status,total_amount,transaction_uuid,product_code"

	t.Run("accepts a correctly signed payload", func(t *testing.T) {
		gw := esewa.NewGateway(cfg, nil)
		payload := signedPayload(t, cfg.SecretKey, callbackFields(), csv)

		data, err := gw.VerifyCallback(payload)
		assert.NoError(t, err)
		assert.Equal(t, "COMPLETE", data["status"])
		assert.Equal(t, "250610-162413", data["transaction_uuid"])
	})

	t.Run("rejects a payload signed with another secret", func(t *testing.T) {
		gw := esewa.NewGateway(cfg, nil)
		payload := signedPayload(t, "wrong-secret", callbackFields(), csv)

		_, err := gw.VerifyCallback(payload)
		assert.ErrorIs(t, err, esewa.ErrSignatureMismatch)
	})

	t.Run("rejects a tampered signed field", func(t *testing.T) {
		gw := esewa.NewGateway(cfg, nil)

		fields := callbackFields()
		payload := signedPayload(t, cfg.SecretKey, fields, csv)

		data, err := esewa.DecodePayload(payload)
		assert.NoError(t, err)
		data["total_amount"] = "1.0"

		tampered, err := esewa.EncodePayload(data)
		assert.NoError(t, err)

		_, err = gw.VerifyCallback(tampered)
		assert.ErrorIs(t, err, esewa.ErrSignatureMismatch)
	})

	t.Run("rejects a payload without signature metadata", func(t *testing.T) {
		gw := esewa.NewGateway(cfg, nil)

		payload, err := esewa.EncodePayload(callbackFields())
		assert.NoError(t, err)

		_, err = gw.VerifyCallback(payload)
		assert.ErrorIs(t, err, esewa.ErrMissingSignatureMetadata)
	})

	t.Run("rejects a declared field the payload lacks", func(t *testing.T) {
		gw := esewa.NewGateway(cfg, nil)

		fields := callbackFields()
		payload := signedPayload(t, cfg.SecretKey, fields, csv)

		data, err := esewa.DecodePayload(payload)
		assert.NoError(t, err)
		delete(data, "transaction_code")

		broken, err := esewa.EncodePayload(data)
		assert.NoError(t, err)

		_, err = gw.VerifyCallback(broken)

		var missing esewa.MissingFieldError
		assert.ErrorAs(t, err, &missing)
		assert.Equal(t, "transaction_code", missing.Field)
	})

	t.Run("rejects a malformed payload", func(t *testing.T) {
		gw := esewa.NewGateway(cfg, nil)

		_, err := gw.VerifyCallback("!!not base64!!")
		assert.ErrorIs(t, err, esewa.ErrMalformedPayload)
	})
}

func TestGateway_StatusCheck(t *testing.T) {
	cfg := testConfig()

	newResponse := func(status int, body string) *http.Response {
		return &http.Response{StatusCode: status, Body: io.NopCloser(strings.NewReader(body))}
	}

	t.Run("returns the decoded status document", func(t *testing.T) {
		client := &mocks.HTTPClient{}
		client.On("Get", mock.Anything, mock.MatchedBy(func(url string) bool {
			return strings.HasPrefix(url, cfg.Endpoints[esewa.ModeUAT].StatusCheck) &&
				strings.Contains(url, "transaction_uuid=250610-162413")
		}), mock.Anything).Return(newResponse(http.StatusOK,
			`{"status":"COMPLETE","ref_id":"0001TX","total_amount":1000.0}`), nil)

		gw := esewa.NewGateway(cfg, client)

		data, err := gw.StatusCheck(context.Background(), "EPAYTEST", "1000", "250610-162413")
		assert.NoError(t, err)
		assert.Equal(t, "COMPLETE", data["status"])
		assert.Equal(t, "0001TX", data["ref_id"])
		client.AssertExpectations(t)
	})

	t.Run("reports a non-success HTTP status", func(t *testing.T) {
		client := &mocks.HTTPClient{}
		client.On("Get", mock.Anything, mock.Anything, mock.Anything).
			Return(newResponse(http.StatusServiceUnavailable, `{}`), nil)

		gw := esewa.NewGateway(cfg, client)

		_, err := gw.StatusCheck(context.Background(), "EPAYTEST", "1000", "250610-162413")

		var statusErr esewa.StatusCheckError
		assert.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)
	})

	t.Run("maps a deadline to the timeout error", func(t *testing.T) {
		client := &mocks.HTTPClient{}
		client.On("Get", mock.Anything, mock.Anything, mock.Anything).
			Return((*http.Response)(nil), context.DeadlineExceeded)

		gw := esewa.NewGateway(cfg, client)

		_, err := gw.StatusCheck(context.Background(), "EPAYTEST", "1000", "250610-162413")
		assert.ErrorIs(t, err, esewa.ErrTimeout)
	})

	t.Run("rejects an undecodable body", func(t *testing.T) {
		client := &mocks.HTTPClient{}
		client.On("Get", mock.Anything, mock.Anything, mock.Anything).
			Return(newResponse(http.StatusOK, "<html>"), nil)

		gw := esewa.NewGateway(cfg, client)

		_, err := gw.StatusCheck(context.Background(), "EPAYTEST", "1000", "250610-162413")
		assert.ErrorIs(t, err, esewa.ErrMalformedPayload)
	})
}
