package esewa

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// DecodePayload base64-decodes an untrusted callback payload and parses it
// into a string-keyed object. Numbers are kept as json.Number so that the
// byte representation the gateway signed survives re-signing during
// verification.
func DecodePayload(payload string) (map[string]any, error) {
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64", ErrMalformedPayload)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedPayload)
	}

	return data, nil
}

// EncodePayload is the inverse of DecodePayload. It exists for fixtures and
// for the relay hop, which re-posts a payload it received as a query string.
func EncodePayload(data map[string]any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(raw), nil
}

// FieldString renders a decoded payload value the way it appeared in the
// signed JSON document.
func FieldString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
