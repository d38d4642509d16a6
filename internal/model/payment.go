package model

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending       Status = "PENDING"
	StatusComplete      Status = "COMPLETE"
	StatusFullRefund    Status = "FULL_REFUND"
	StatusPartialRefund Status = "PARTIAL_REFUND"
	StatusAmbiguous     Status = "AMBIGUOUS"
	StatusNotFound      Status = "NOT_FOUND"
	StatusCanceled      Status = "CANCELED"
)

var knownStatuses = map[Status]struct{}{
	StatusPending:       {},
	StatusComplete:      {},
	StatusFullRefund:    {},
	StatusPartialRefund: {},
	StatusAmbiguous:     {},
	StatusNotFound:      {},
	StatusCanceled:      {},
}

// ResolveStatus maps a gateway status token onto the known set. Tokens are
// upper-cased before matching; anything unrecognized or empty resolves to
// PENDING, never to a success state.
func ResolveStatus(token string) Status {
	candidate := Status(strings.ToUpper(strings.TrimSpace(token)))
	if _, ok := knownStatuses[candidate]; ok {
		return candidate
	}

	return StatusPending
}

type Payment struct {
	ID              int64          `gorm:"primaryKey;autoIncrement"`
	TransactionUUID string         `gorm:"column:transaction_uuid;type:varchar(64);not null;uniqueIndex:uniq_payments_transaction_uuid;index:idx_payments_uuid_status,priority:1"`
	ProductCode     string         `gorm:"type:varchar(32);not null"`
	Amount          int64          `gorm:"not null"`
	TaxAmount       int64          `gorm:"not null;default:0"`
	ServiceCharge   int64          `gorm:"not null;default:0"`
	DeliveryCharge  int64          `gorm:"not null;default:0"`
	TotalAmount     int64          `gorm:"not null"`
	Status          Status         `gorm:"type:varchar(20);not null;default:'PENDING';index:idx_payments_uuid_status,priority:2"`
	RefID           *string        `gorm:"type:varchar(64)"`
	VerifiedAt      *time.Time     `gorm:"column:verified_at"`
	RawResponse     map[string]any `gorm:"type:json;serializer:json"`
	Meta            map[string]any `gorm:"type:json;serializer:json"`
	CreatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string {
	return "esewa_payments"
}
