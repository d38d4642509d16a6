package esewa

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/Behyna/payment-services/esewagateway/pkg/httpclient"
)

const (
	// InitiationSignedFields is the field set the protocol mandates for the
	// initiation form; the callback field set is dynamic and declared by the
	// message itself.
	InitiationSignedFields = "total_amount,transaction_uuid,product_code"

	RelayPath = "/esewa/relay"
)

var absoluteURL = regexp.MustCompile(`(?i)^https?://`)

type FormParams struct {
	Amount          int64
	TaxAmount       int64
	ServiceCharge   int64
	DeliveryCharge  int64
	TotalAmount     int64
	TransactionUUID string
	SuccessURL      string
	FailureURL      string
}

type URLOverrides struct {
	SuccessURL string
	FailureURL string
}

type Gateway interface {
	FormEndpoint() string
	StatusEndpoint() string
	RelayURL(transactionUUID string) string
	BuildRequestSignature(totalAmount, transactionUUID string) string
	BuildFormPayload(params FormParams, overrides URLOverrides) (map[string]string, error)
	VerifyCallback(payload string) (map[string]any, error)
	StatusCheck(ctx context.Context, productCode, totalAmount, transactionUUID string) (map[string]any, error)
}

type gateway struct {
	config Config
	client httpclient.HTTPClient
}

func NewGateway(cfg Config, client httpclient.HTTPClient) Gateway {
	return &gateway{config: cfg, client: client}
}

func (g *gateway) FormEndpoint() string {
	return g.config.endpoints().Form
}

func (g *gateway) StatusEndpoint() string {
	return g.config.endpoints().StatusCheck
}

// RelayURL points the gateway back at the relay endpoint scoped to one
// transaction, used whenever no usable absolute destination is configured.
func (g *gateway) RelayURL(transactionUUID string) string {
	path := RelayPath
	if transactionUUID != "" {
		path += "/" + transactionUUID
	}

	return strings.TrimRight(g.config.BaseURL, "/") + path
}

// BuildRequestSignature signs the fixed initiation field set in its mandated
// order.
func (g *gateway) BuildRequestSignature(totalAmount, transactionUUID string) string {
	message := "total_amount=" + totalAmount +
		",transaction_uuid=" + transactionUUID +
		",product_code=" + g.config.ProductCode

	return Sign([]byte(message), []byte(g.config.SecretKey))
}

func (g *gateway) BuildFormPayload(params FormParams, overrides URLOverrides) (map[string]string, error) {
	if params.TotalAmount <= 0 {
		return nil, ErrMissingFormParams
	}

	successURL := g.resolveURL(firstNonEmpty(params.SuccessURL, overrides.SuccessURL, g.config.SuccessURL))
	failureURL := g.resolveURL(firstNonEmpty(params.FailureURL, overrides.FailureURL, g.config.FailureURL))

	relay := g.RelayURL(params.TransactionUUID)
	if successURL == "" {
		successURL = relay
	}
	if failureURL == "" {
		failureURL = relay
	}

	totalAmount := strconv.FormatInt(params.TotalAmount, 10)

	payload := map[string]string{
		"amount":                  strconv.FormatInt(params.Amount, 10),
		"tax_amount":              strconv.FormatInt(params.TaxAmount, 10),
		"product_service_charge":  strconv.FormatInt(params.ServiceCharge, 10),
		"product_delivery_charge": strconv.FormatInt(params.DeliveryCharge, 10),
		"total_amount":            totalAmount,
		"transaction_uuid":        params.TransactionUUID,
		"product_code":            g.config.ProductCode,
		"success_url":             successURL,
		"failure_url":             failureURL,
		"signed_field_names":      InitiationSignedFields,
	}

	payload["signature"] = g.BuildRequestSignature(totalAmount, params.TransactionUUID)

	return payload, nil
}

// VerifyCallback is the trust boundary between the gateway and the
// reconciliation logic. The payload names its own signed field set; the
// signature is recomputed over exactly those fields and compared in constant
// time. Every other field stays untrusted until this passes.
func (g *gateway) VerifyCallback(payload string) (map[string]any, error) {
	data, err := DecodePayload(payload)
	if err != nil {
		return nil, err
	}

	signedFieldNames, _ := data["signed_field_names"].(string)
	signature, _ := data["signature"].(string)

	if signedFieldNames == "" || signature == "" {
		return nil, ErrMissingSignatureMetadata
	}

	fields := make(map[string]string, len(data))
	for key, value := range data {
		fields[key] = FieldString(value)
	}

	computed, err := SignFields(fields, signedFieldNames, []byte(g.config.SecretKey))
	if err != nil {
		return nil, err
	}

	if subtle.ConstantTimeCompare([]byte(signature), []byte(computed)) != 1 {
		return nil, ErrSignatureMismatch
	}

	return data, nil
}

func (g *gateway) StatusCheck(ctx context.Context, productCode, totalAmount, transactionUUID string) (map[string]any, error) {
	query := url.Values{}
	query.Set("product_code", productCode)
	query.Set("total_amount", totalAmount)
	query.Set("transaction_uuid", transactionUUID)

	endpoint := g.StatusEndpoint() + "?" + query.Encode()
	headers := map[string]string{"Accept": "application/json"}

	ctx, cancel := context.WithTimeout(ctx, g.config.Timeout)
	defer cancel()

	resp, err := g.client.Get(ctx, endpoint, headers)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}

		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, StatusCheckError{StatusCode: resp.StatusCode}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, ErrMalformedPayload
	}

	return data, nil
}

func (g *gateway) resolveURL(value string) string {
	if value == "" {
		return ""
	}

	if absoluteURL.MatchString(value) {
		return value
	}

	if g.config.BaseURL == "" {
		return ""
	}

	return strings.TrimRight(g.config.BaseURL, "/") + "/" + strings.TrimLeft(value, "/")
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
