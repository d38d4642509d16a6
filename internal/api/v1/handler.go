package v1

import (
	"errors"
	"strings"

	"github.com/Behyna/payment-services/esewagateway/internal/api/contract"
	"github.com/Behyna/payment-services/esewagateway/internal/api/validator"
	"github.com/Behyna/payment-services/esewagateway/internal/config"
	"github.com/Behyna/payment-services/esewagateway/internal/constants"
	"github.com/Behyna/payment-services/esewagateway/internal/model"
	"github.com/Behyna/payment-services/esewagateway/internal/service"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Handler struct {
	logger     *zap.Logger
	payments   service.PaymentService
	XValidator validator.IXValidator
	cfg        *config.Config
}

func NewHandler(logger *zap.Logger, payments service.PaymentService, XValidator validator.IXValidator, cfg *config.Config) *Handler {
	return &Handler{
		logger:     logger,
		payments:   payments,
		XValidator: XValidator,
		cfg:        cfg,
	}
}

func (h *Handler) Pong(c *fiber.Ctx) error {
	return c.SendString("pong")
}

// InitiatePayment creates the pending record and responds with the
// auto-submitting form bound to the gateway's hosted checkout. Machine
// clients get the endpoint and payload as JSON instead.
func (h *Handler) InitiatePayment(c *fiber.Ctx) error {
	var handlerRequest InitiatePaymentRequest

	responseError := h.XValidator.Validator(&handlerRequest, constants.MessageErrorFormat, c)
	if responseError.Code != "" {
		h.logger.Error("Error Validator", zap.Any("request", handlerRequest))
		responseError.Code = constants.ErrCodeValidationFailed
		return c.JSON(responseError)
	}

	cmd := service.InitiatePaymentCommand{
		Amount:          handlerRequest.Amount,
		TaxAmount:       handlerRequest.TaxAmount,
		ServiceCharge:   handlerRequest.ProductServiceCharge,
		DeliveryCharge:  handlerRequest.ProductDeliveryCharge,
		TotalAmount:     handlerRequest.TotalAmount,
		TransactionUUID: handlerRequest.TransactionUUID,
		SuccessURL:      handlerRequest.SuccessURL,
		FailureURL:      handlerRequest.FailureURL,
	}

	result, err := h.payments.Initiate(c.UserContext(), cmd)
	if err != nil {
		return err
	}

	if wantsJSON(c) {
		return c.JSON(contract.Response{OK: true, Data: result, Status: string(result.Payment.Status)})
	}

	return c.Render("form", fiber.Map{
		"Endpoint": result.FormEndpoint,
		"Payload":  result.FormPayload,
	})
}

// Callback accepts either a posted signed payload or a bare transaction
// identifier on the GET fallback, reconciles, and answers JSON for machine
// clients or a redirect/rendered status for browsers.
func (h *Handler) Callback(c *fiber.Ctx) error {
	var body callbackBody
	_ = c.BodyParser(&body)

	var (
		result service.ReconcileResult
		err    error
	)

	if payload := resolvePayload(c, body); payload != "" {
		result, err = h.payments.HandleCallback(c.UserContext(), payload)
	} else if transactionUUID := resolveTransactionUUID(c, body); transactionUUID != "" {
		result, err = h.payments.HandleStatusFallback(c.UserContext(), transactionUUID)
	} else {
		return h.respondFailure(c, constants.ErrCodeMalformedPayload, "Missing callback payload.")
	}

	if err != nil {
		code := errorCode(err)
		h.logger.Warn("Callback rejected",
			zap.String("code", code),
			zap.Error(err),
		)
		return h.respondFailure(c, code, constants.GetErrorMessage(code))
	}

	if wantsJSON(c) {
		return c.JSON(contract.Response{
			OK:     result.Outcome.OK,
			Data:   result.Raw,
			Status: string(result.Payment.Status),
		})
	}

	return h.renderBrowserResponse(c, result)
}

// Relay re-posts a payload that arrived as a query string to the callback
// endpoint; some gateway redirect flows cannot deliver a POST body directly.
func (h *Handler) Relay(c *fiber.Ctx) error {
	payload := c.Query("data")
	if payload == "" {
		return h.respondFailure(c, constants.ErrCodeMalformedPayload, "Missing data query parameter.")
	}

	return c.Render("relay", fiber.Map{
		"Data":        payload,
		"Redirect":    c.Query("redirect"),
		"Transaction": c.Params("transaction"),
		"Action":      "/esewa/callback",
	})
}

func (h *Handler) respondFailure(c *fiber.Ctx, code, message string) error {
	status := constants.GetHTTPStatus(code)

	if wantsJSON(c) {
		return c.Status(status).JSON(contract.Response{OK: false, Error: message})
	}

	if redirect := requestValue(c, "redirect"); redirect != "" {
		return c.Redirect(redirect, fiber.StatusSeeOther)
	}

	return c.Status(status).Render("status", fiber.Map{
		"OK":      false,
		"Message": message,
	})
}

func (h *Handler) renderBrowserResponse(c *fiber.Ctx, result service.ReconcileResult) error {
	outcome := result.Outcome

	if redirect := h.resolveRedirect(c, result.Payment, outcome.OK); redirect != "" {
		return c.Redirect(redirect, fiber.StatusSeeOther)
	}

	status := fiber.StatusOK
	if !outcome.OK {
		status = fiber.StatusAccepted
	}

	return c.Status(status).Render("status", fiber.Map{
		"OK":              outcome.OK,
		"Message":         outcome.Message,
		"Status":          string(outcome.Status),
		"RefID":           outcome.RefID,
		"TransactionUUID": result.Payment.TransactionUUID,
	})
}

// resolveRedirect picks the post-reconciliation destination: an explicit
// request override, then the per-payment stored hint for the outcome, then
// the configured default. Empty means render inline.
func (h *Handler) resolveRedirect(c *fiber.Ctx, payment model.Payment, ok bool) string {
	if redirect := requestValue(c, "redirect"); redirect != "" {
		return redirect
	}

	key := "failure_redirect"
	if ok {
		key = "success_redirect"
	}

	if payment.Meta != nil {
		if stored, _ := payment.Meta[key].(string); stored != "" {
			return stored
		}
	}

	if ok {
		return h.cfg.Esewa.SuccessURL
	}

	return h.cfg.Esewa.FailureURL
}

type callbackBody struct {
	Data            string `json:"data" form:"data"`
	Payload         string `json:"payload" form:"payload"`
	Response        string `json:"response" form:"response"`
	TransactionUUID string `json:"transaction_uuid" form:"transaction_uuid"`
	TransactionID   string `json:"transaction_id" form:"transaction_id"`
	UUID            string `json:"uuid" form:"uuid"`
	OID             string `json:"oid" form:"oid"`
}

func resolvePayload(c *fiber.Ctx, body callbackBody) string {
	return firstNonEmpty(
		body.Data, body.Payload, body.Response,
		c.Query("data"), c.Query("payload"), c.Query("response"),
	)
}

func resolveTransactionUUID(c *fiber.Ctx, body callbackBody) string {
	return firstNonEmpty(
		body.TransactionUUID, body.TransactionID, body.UUID, body.OID,
		c.Query("transaction_uuid"), c.Query("transaction_id"),
		c.Query("uuid"), c.Query("oid"),
		c.Params("transaction"),
	)
}

func requestValue(c *fiber.Ctx, key string) string {
	if value := c.FormValue(key); value != "" {
		return value
	}

	return c.Query(key)
}

func errorCode(err error) string {
	var serviceErr service.Error
	if errors.As(err, &serviceErr) {
		return serviceErr.Code
	}

	return constants.ErrCodeInternalError
}

func wantsJSON(c *fiber.Ctx) bool {
	return strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
