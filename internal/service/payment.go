package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Behyna/payment-services/esewagateway/internal/config"
	"github.com/Behyna/payment-services/esewagateway/internal/constants"
	"github.com/Behyna/payment-services/esewagateway/internal/metrics"
	"github.com/Behyna/payment-services/esewagateway/internal/model"
	"github.com/Behyna/payment-services/esewagateway/internal/repository"
	"github.com/Behyna/payment-services/esewagateway/pkg/esewa"
	"go.uber.org/zap"
)

type PaymentService interface {
	// Initiate creates the pending record and builds the signed form payload
	// for the gateway's hosted checkout.
	Initiate(ctx context.Context, cmd InitiatePaymentCommand) (InitiatePaymentResult, error)
	// HandleCallback verifies a base64 callback payload and reconciles the
	// stored record against it.
	HandleCallback(ctx context.Context, payload string) (ReconcileResult, error)
	// HandleStatusFallback reconciles through the gateway's status endpoint
	// when the browser arrived without a payload.
	HandleStatusFallback(ctx context.Context, transactionUUID string) (ReconcileResult, error)
}

type paymentService struct {
	txManager repository.TxManager
	repo      repository.PaymentRepository
	gateway   esewa.Gateway
	publisher VerifiedPublisher
	cfg       *config.Config
	log       *zap.Logger
	metrics   *metrics.Metrics
}

func NewPaymentService(txManager repository.TxManager, repo repository.PaymentRepository,
	gateway esewa.Gateway, publisher VerifiedPublisher, cfg *config.Config,
	log *zap.Logger, metrics *metrics.Metrics) PaymentService {
	return &paymentService{
		txManager: txManager,
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
	}
}

func (s *paymentService) Initiate(ctx context.Context, cmd InitiatePaymentCommand) (InitiatePaymentResult, error) {
	total := cmd.TotalAmount
	if total == 0 {
		total = cmd.Amount + cmd.TaxAmount + cmd.ServiceCharge + cmd.DeliveryCharge
	}

	transactionUUID := cmd.TransactionUUID
	if transactionUUID == "" {
		transactionUUID = NewTransactionUUID(time.Now())
	}

	meta := make(map[string]any, len(cmd.Meta)+2)
	for k, v := range cmd.Meta {
		meta[k] = v
	}
	if redirect := firstString(cmd.SuccessURL, stringValue(meta["success_redirect"]), s.cfg.Esewa.SuccessURL); redirect != "" {
		meta["success_redirect"] = redirect
	}
	if redirect := firstString(cmd.FailureURL, stringValue(meta["failure_redirect"]), s.cfg.Esewa.FailureURL); redirect != "" {
		meta["failure_redirect"] = redirect
	}

	p := model.Payment{
		TransactionUUID: transactionUUID,
		ProductCode:     s.cfg.Esewa.ProductCode,
		Amount:          cmd.Amount,
		TaxAmount:       cmd.TaxAmount,
		ServiceCharge:   cmd.ServiceCharge,
		DeliveryCharge:  cmd.DeliveryCharge,
		TotalAmount:     total,
		Status:          model.StatusPending,
		Meta:            meta,
	}

	// Record the attempt before redirecting; a browser that never reaches
	// the gateway still leaves a pending row behind.
	if err := s.repo.Create(ctx, &p); err != nil {
		if errors.Is(err, repository.ErrPaymentExists) {
			return InitiatePaymentResult{}, NewServiceError(constants.ErrCodePaymentExists, err)
		}

		return InitiatePaymentResult{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	relay := s.gateway.RelayURL(transactionUUID)

	payload, err := s.gateway.BuildFormPayload(esewa.FormParams{
		Amount:          cmd.Amount,
		TaxAmount:       cmd.TaxAmount,
		ServiceCharge:   cmd.ServiceCharge,
		DeliveryCharge:  cmd.DeliveryCharge,
		TotalAmount:     total,
		TransactionUUID: transactionUUID,
	}, esewa.URLOverrides{SuccessURL: relay, FailureURL: relay})
	if err != nil {
		return InitiatePaymentResult{}, NewServiceError(constants.ErrCodeIncompleteTransaction, err)
	}

	s.metrics.RecordPaymentInitiated()
	s.log.Info("Payment initiated",
		zap.String("transaction_uuid", transactionUUID),
		zap.Int64("total_amount", total),
	)

	return InitiatePaymentResult{
		Payment:      p,
		FormEndpoint: s.gateway.FormEndpoint(),
		FormPayload:  payload,
	}, nil
}

func (s *paymentService) HandleCallback(ctx context.Context, payload string) (ReconcileResult, error) {
	verified, err := s.gateway.VerifyCallback(payload)
	if err != nil {
		s.metrics.RecordCallback("rejected")
		return ReconcileResult{}, s.mapGatewayError(err)
	}

	result, err := s.reconcile(ctx, verified)
	if err != nil {
		s.metrics.RecordCallback("conflict")
		return ReconcileResult{}, err
	}

	s.metrics.RecordCallback("accepted")
	return result, nil
}

func (s *paymentService) HandleStatusFallback(ctx context.Context, transactionUUID string) (ReconcileResult, error) {
	p, err := s.repo.FindByTransactionUUID(ctx, transactionUUID)
	if err != nil {
		if errors.Is(err, repository.ErrPaymentNotFound) {
			return ReconcileResult{}, NewServiceError(constants.ErrCodePaymentNotFound, err)
		}

		return ReconcileResult{}, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	response, err := s.gateway.StatusCheck(ctx, p.ProductCode,
		strconv.FormatInt(p.TotalAmount, 10), p.TransactionUUID)
	if err != nil {
		s.metrics.RecordStatusCheck("error")
		return ReconcileResult{}, s.mapGatewayError(err)
	}

	s.metrics.RecordStatusCheck("success")

	if stringField(response, "transaction_uuid") == "" {
		response["transaction_uuid"] = transactionUUID
	}

	return s.reconcile(ctx, response)
}

// reconcile merges externally-reported payment facts into the durable record.
// The read-then-write runs under a row lock so that duplicate callbacks for
// the same transaction serialize; the verified event fires after commit, and
// only on the transition into COMPLETE.
func (s *paymentService) reconcile(ctx context.Context, inbound map[string]any) (ReconcileResult, error) {
	transactionUUID := stringField(inbound, "transaction_uuid")
	if transactionUUID == "" {
		return ReconcileResult{}, NewServiceError(constants.ErrCodeIncompleteTransaction,
			errors.New("payload missing transaction_uuid"))
	}

	var (
		p           *model.Payment
		verifiedNow bool
	)

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindForUpdate(ctx, transactionUUID)
		if err != nil && !errors.Is(err, repository.ErrPaymentNotFound) {
			return NewServiceError(constants.ErrCodeOperationFailed, err)
		}

		if existing == nil {
			p, verifiedNow, err = s.createFromInbound(ctx, transactionUUID, inbound)
			return err
		}

		p, verifiedNow, err = s.updateFromInbound(ctx, existing, inbound)
		return err
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	if verifiedNow {
		s.publishVerified(ctx, *p)
	}

	return ReconcileResult{
		Payment:     *p,
		Raw:         inbound,
		Outcome:     OutcomeFor(*p),
		VerifiedNow: verifiedNow,
	}, nil
}

func (s *paymentService) createFromInbound(ctx context.Context, transactionUUID string, inbound map[string]any) (*model.Payment, bool, error) {
	total := normalizeAmount(inbound["total_amount"])
	if total <= 0 {
		return nil, false, NewServiceError(constants.ErrCodeIncompleteTransaction,
			errors.New("payload missing total_amount for new transaction"))
	}

	productCode := stringField(inbound, "product_code")
	if productCode == "" {
		productCode = s.cfg.Esewa.ProductCode
	}

	status := model.ResolveStatus(stringField(inbound, "status"))

	p := &model.Payment{
		TransactionUUID: transactionUUID,
		ProductCode:     productCode,
		Amount:          normalizeAmountOr(inbound["amount"], total),
		TaxAmount:       normalizeAmount(inbound["tax_amount"]),
		ServiceCharge:   normalizeAmount(inbound["product_service_charge"]),
		DeliveryCharge:  normalizeAmount(inbound["product_delivery_charge"]),
		TotalAmount:     total,
		Status:          status,
		RawResponse:     inbound,
	}

	if ref := refIDFrom(inbound); ref != "" {
		p.RefID = &ref
	}

	verifiedNow := status == model.StatusComplete
	if verifiedNow {
		now := time.Now()
		p.VerifiedAt = &now
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, false, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	s.metrics.RecordPaymentStatus(string(status))

	return p, verifiedNow, nil
}

func (s *paymentService) updateFromInbound(ctx context.Context, p *model.Payment, inbound map[string]any) (*model.Payment, bool, error) {
	// Consistency guard: financial facts on an existing record are immutable.
	// A disagreeing message is tampering or a gateway anomaly, never a
	// correction.
	if productCode := stringField(inbound, "product_code"); productCode != "" && productCode != p.ProductCode {
		return nil, false, NewServiceError(constants.ErrCodeProductCodeMismatch,
			errors.New("product code mismatch for transaction "+p.TransactionUUID))
	}

	if total := normalizeAmount(inbound["total_amount"]); total > 0 && total != p.TotalAmount {
		return nil, false, NewServiceError(constants.ErrCodeAmountMismatch,
			errors.New("total amount mismatch for transaction "+p.TransactionUUID))
	}

	previous := p.Status

	// A partial refresh that omits the status must not erase existing
	// knowledge.
	next := previous
	if token := stringField(inbound, "status"); token != "" {
		next = model.ResolveStatus(token)
	}

	// COMPLETE never regresses to PENDING; authoritative refund states may
	// still overwrite it.
	if previous == model.StatusComplete && next == model.StatusPending {
		next = previous
	}

	if ref := refIDFrom(inbound); ref != "" {
		p.RefID = &ref
	}

	p.Status = next
	p.RawResponse = inbound

	if next == model.StatusComplete && p.VerifiedAt == nil {
		now := time.Now()
		p.VerifiedAt = &now
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, false, NewServiceError(constants.ErrCodeOperationFailed, err)
	}

	if next != previous {
		s.metrics.RecordPaymentStatus(string(next))
	}

	return p, previous != model.StatusComplete && next == model.StatusComplete, nil
}

func (s *paymentService) publishVerified(ctx context.Context, p model.Payment) {
	if err := s.publisher.PaymentVerified(ctx, p); err != nil {
		s.log.Error("Failed to publish verified event",
			zap.Error(err),
			zap.String("transaction_uuid", p.TransactionUUID),
		)
		return
	}

	s.metrics.RecordVerifiedEvent()
	s.log.Info("Payment verified",
		zap.String("transaction_uuid", p.TransactionUUID),
		zap.Int64("total_amount", p.TotalAmount),
	)
}

func (s *paymentService) mapGatewayError(err error) error {
	var missingField esewa.MissingFieldError
	var statusCheck esewa.StatusCheckError

	switch {
	case errors.Is(err, esewa.ErrMalformedPayload):
		return NewServiceError(constants.ErrCodeMalformedPayload, err)
	case errors.Is(err, esewa.ErrMissingSignatureMetadata):
		return NewServiceError(constants.ErrCodeMissingSignatureMetadata, err)
	case errors.Is(err, esewa.ErrSignatureMismatch):
		return NewServiceError(constants.ErrCodeSignatureMismatch, err)
	case errors.As(err, &missingField):
		return NewServiceError(constants.ErrCodeMissingSignedField, err)
	case errors.As(err, &statusCheck), errors.Is(err, esewa.ErrTimeout):
		return NewServiceError(constants.ErrCodeStatusCheckFailed, err)
	default:
		return NewServiceError(constants.ErrCodeStatusCheckFailed, err)
	}
}

// NewTransactionUUID builds a sortable merchant transaction id: a second
// resolution time prefix plus a random upper-alphanumeric suffix.
func NewTransactionUUID(now time.Time) string {
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process is in far worse trouble
		// than id generation.
		panic(err)
	}

	suffix := make([]byte, len(buf))
	for i, b := range buf {
		suffix[i] = alphabet[int(b)%len(alphabet)]
	}

	return now.Format("060102-150405") + "-" + string(suffix)
}

func stringField(data map[string]any, key string) string {
	return strings.TrimSpace(esewa.FieldString(data[key]))
}

func refIDFrom(data map[string]any) string {
	if ref := stringField(data, "transaction_code"); ref != "" {
		return ref
	}

	return stringField(data, "ref_id")
}

func normalizeAmount(value any) int64 {
	switch v := value.(type) {
	case nil:
		return 0
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v + 0.5)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return int64(f + 0.5)
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == '.' {
				return r
			}
			return -1
		}, v)

		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		return int64(f + 0.5)
	default:
		return 0
	}
}

func normalizeAmountOr(value any, fallback int64) int64 {
	if amount := normalizeAmount(value); amount > 0 {
		return amount
	}

	return fallback
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

func stringValue(v any) string {
	s, _ := v.(string)
	return s
}
