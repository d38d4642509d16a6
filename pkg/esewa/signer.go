package esewa

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// Sign computes the HMAC-SHA256 of message under secret and returns it
// base64-encoded, the representation eSewa carries in the signature field.
func Sign(message, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(message)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignFields signs the fields named by signedFieldNames, a comma-separated
// key list supplied by the gateway. The message is the ordered list of
// key=value pairs joined by commas; the order comes from the CSV, never from
// the map. Every named field must be present.
func SignFields(fields map[string]string, signedFieldNames string, secret []byte) (string, error) {
	names := strings.Split(signedFieldNames, ",")
	pairs := make([]string, 0, len(names))

	for _, name := range names {
		name = strings.TrimSpace(name)
		value, ok := fields[name]
		if !ok {
			return "", MissingFieldError{Field: name}
		}

		pairs = append(pairs, name+"="+value)
	}

	return Sign([]byte(strings.Join(pairs, ",")), secret), nil
}
