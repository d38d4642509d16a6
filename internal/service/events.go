package service

import (
	"context"
	"time"

	"github.com/Behyna/payment-services/esewagateway/internal/model"
)

// PaymentVerifiedEvent is emitted exactly once per payment, on the
// transition into COMPLETE.
type PaymentVerifiedEvent struct {
	TransactionUUID string     `json:"transaction_uuid"`
	ProductCode     string     `json:"product_code"`
	TotalAmount     int64      `json:"total_amount"`
	RefID           string     `json:"ref_id,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at"`
}

type VerifiedPublisher interface {
	PaymentVerified(ctx context.Context, payment model.Payment) error
}
