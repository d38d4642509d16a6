package service

import (
	"github.com/Behyna/payment-services/esewagateway/internal/model"
)

type InitiatePaymentCommand struct {
	Amount          int64
	TaxAmount       int64
	ServiceCharge   int64
	DeliveryCharge  int64
	TotalAmount     int64
	TransactionUUID string
	SuccessURL      string
	FailureURL      string
	Meta            map[string]any
}

type InitiatePaymentResult struct {
	Payment      model.Payment     `json:"payment"`
	FormEndpoint string            `json:"form_endpoint"`
	FormPayload  map[string]string `json:"form_payload"`
}

type ReconcileResult struct {
	Payment model.Payment  `json:"payment"`
	Raw     map[string]any `json:"raw"`
	Outcome Outcome        `json:"outcome"`
	// VerifiedNow reports that this reconciliation made the transition into
	// COMPLETE and the verified event was published.
	VerifiedNow bool `json:"verified_now"`
}
