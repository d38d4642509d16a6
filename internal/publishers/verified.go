package publishers

import (
	"context"
	"encoding/json"

	"github.com/Behyna/payment-services/esewagateway/internal/model"
	"github.com/Behyna/payment-services/esewagateway/internal/service"
	"github.com/Behyna/payment-services/esewagateway/pkg/mq"
	"go.uber.org/zap"
)

// QueueVerified receives one message per payment on its transition into
// COMPLETE.
const QueueVerified = "esewa.payment.verified"

type verifiedPublisher struct {
	publisher mq.Publisher
	logger    *zap.Logger
}

func NewVerifiedPublisher(publisher mq.Publisher, logger *zap.Logger) service.VerifiedPublisher {
	return &verifiedPublisher{publisher: publisher, logger: logger}
}

func (p *verifiedPublisher) PaymentVerified(ctx context.Context, payment model.Payment) error {
	event := service.PaymentVerifiedEvent{
		TransactionUUID: payment.TransactionUUID,
		ProductCode:     payment.ProductCode,
		TotalAmount:     payment.TotalAmount,
		VerifiedAt:      payment.VerifiedAt,
	}
	if payment.RefID != nil {
		event.RefID = *payment.RefID
	}

	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := p.publisher.Publish(ctx, "", QueueVerified, body); err != nil {
		return err
	}

	p.logger.Debug("Published verified event",
		zap.String("transaction_uuid", payment.TransactionUUID))

	return nil
}
