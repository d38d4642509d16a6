package service

import (
	"fmt"

	"github.com/Behyna/payment-services/esewagateway/internal/model"
)

// Outcome is the human-facing summary of a reconciliation.
type Outcome struct {
	OK      bool         `json:"ok"`
	Status  model.Status `json:"status"`
	Message string       `json:"message"`
	RefID   string       `json:"ref_id,omitempty"`
}

func OutcomeFor(p model.Payment) Outcome {
	refID := ""
	if p.RefID != nil {
		refID = *p.RefID
	}

	return Outcome{
		OK:      p.Status == model.StatusComplete,
		Status:  p.Status,
		Message: messageForStatus(p.Status, p.TransactionUUID),
		RefID:   refID,
	}
}

func messageForStatus(status model.Status, transactionUUID string) string {
	switch status {
	case model.StatusComplete:
		return "Payment verified successfully."
	case model.StatusPending:
		return fmt.Sprintf("Payment for %s is still processing.", transactionUUID)
	case model.StatusAmbiguous:
		return fmt.Sprintf("Payment for %s is in an ambiguous state. Please verify later.", transactionUUID)
	case model.StatusCanceled:
		return fmt.Sprintf("Payment for %s was canceled. Please try again.", transactionUUID)
	case model.StatusNotFound:
		return fmt.Sprintf("We could not locate transaction %s.", transactionUUID)
	case model.StatusFullRefund:
		return fmt.Sprintf("Payment for %s has been fully refunded.", transactionUUID)
	case model.StatusPartialRefund:
		return fmt.Sprintf("Payment for %s has been partially refunded.", transactionUUID)
	default:
		return fmt.Sprintf("Payment for %s is still processing.", transactionUUID)
	}
}
