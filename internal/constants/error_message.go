package constants

const MessageErrorFormat = "The '%s' format is invalid"

const (
	ErrCodeMalformedPayload         = "MALFORMED_PAYLOAD"
	ErrCodeMissingSignatureMetadata = "MISSING_SIGNATURE_METADATA"
	ErrCodeSignatureMismatch        = "SIGNATURE_MISMATCH"
	ErrCodeMissingSignedField       = "MISSING_SIGNED_FIELD"
	ErrCodeProductCodeMismatch      = "PRODUCT_CODE_MISMATCH"
	ErrCodeAmountMismatch           = "AMOUNT_MISMATCH"
	ErrCodeIncompleteTransaction    = "INCOMPLETE_TRANSACTION"
	ErrCodePaymentNotFound          = "PAYMENT_NOT_FOUND"
	ErrCodePaymentExists            = "PAYMENT_ALREADY_EXISTS"
	ErrCodeStatusCheckFailed        = "STATUS_CHECK_FAILED"
	ErrCodeValidationFailed         = "VALIDATION_FAILED"
	ErrCodeOperationFailed          = "OPERATION_FAILED"
	ErrCodeInternalError            = "INTERNAL_ERROR"
)

var errorMessages = map[string]string{
	ErrCodeMalformedPayload:         "callback payload is not valid base64 JSON",
	ErrCodeMissingSignatureMetadata: "callback payload is missing signature metadata",
	ErrCodeSignatureMismatch:        "callback signature does not match the signed fields",
	ErrCodeMissingSignedField:       "callback payload is missing a declared signed field",
	ErrCodeProductCodeMismatch:      "product code does not match the stored payment",
	ErrCodeAmountMismatch:           "total amount does not match the stored payment",
	ErrCodeIncompleteTransaction:    "callback payload is missing data required for a new transaction",
	ErrCodePaymentNotFound:          "no payment record found for the transaction",
	ErrCodePaymentExists:            "a payment with this transaction id already exists",
	ErrCodeStatusCheckFailed:        "gateway status check failed",
	ErrCodeValidationFailed:         "request validation failed",
	ErrCodeOperationFailed:          "operation failed",
	ErrCodeInternalError:            "internal error",
}

var httpStatuses = map[string]int{
	ErrCodeMalformedPayload:         422,
	ErrCodeMissingSignatureMetadata: 422,
	ErrCodeSignatureMismatch:        422,
	ErrCodeMissingSignedField:       422,
	ErrCodeProductCodeMismatch:      422,
	ErrCodeAmountMismatch:           422,
	ErrCodeIncompleteTransaction:    422,
	ErrCodeValidationFailed:         422,
	ErrCodePaymentNotFound:          404,
	ErrCodePaymentExists:            409,
	ErrCodeStatusCheckFailed:        502,
	ErrCodeOperationFailed:          500,
	ErrCodeInternalError:            500,
}

func GetErrorMessage(code string) string {
	msg, exists := errorMessages[code]
	if !exists {
		return errorMessages[ErrCodeInternalError]
	}
	return msg
}

func GetHTTPStatus(code string) int {
	status, exists := httpStatuses[code]
	if !exists {
		return 500
	}
	return status
}
