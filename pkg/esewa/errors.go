package esewa

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedPayload         = errors.New("MALFORMED_PAYLOAD")
	ErrMissingSignatureMetadata = errors.New("MISSING_SIGNATURE_METADATA")
	ErrSignatureMismatch        = errors.New("SIGNATURE_MISMATCH")
	ErrMissingFormParams        = errors.New("MISSING_FORM_PARAMS")
	ErrTimeout                  = errors.New("TIMEOUT")
)

// MissingFieldError reports a field declared by signed_field_names that is
// absent from the payload being signed or verified.
type MissingFieldError struct {
	Field string
}

func (e MissingFieldError) Error() string {
	return fmt.Sprintf("missing field '%s' required by signed_field_names", e.Field)
}

// StatusCheckError reports a non-success HTTP outcome from the status endpoint.
type StatusCheckError struct {
	StatusCode int
}

func (e StatusCheckError) Error() string {
	return fmt.Sprintf("status check failed with HTTP %d", e.StatusCode)
}
