package services

import (
	"encoding/base64"
	"errors"
)

var errBadCursor = errors.New("malformed cursor")

// EncodeCursor turns the id of the last item of a page into an opaque
// continuation token.
func EncodeCursor(id string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(id))
}

// DecodeCursor is the inverse of EncodeCursor.
func DecodeCursor(token string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", errBadCursor
	}
	if len(raw) == 0 {
		return "", errBadCursor
	}
	return string(raw), nil
}
