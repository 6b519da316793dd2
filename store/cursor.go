package store

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidCursor is returned when a pagination cursor was not produced by
// EncodeCursor. Decoding fails closed: a corrupt cursor is never treated as
// "start from the beginning".
var ErrInvalidCursor = errors.New("invalid cursor")

// Cursor is the continuation state for a paginated find. It is self-describing:
// decoding needs no server-side state beyond the collection itself.
type Cursor struct {
	Offset int    `json:"offset"`
	SortBy string `json:"sortBy,omitempty"`
}

// EncodeCursor renders the cursor as an opaque URL-safe token.
func EncodeCursor(c Cursor) string {
	payload, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(payload)
}

// DecodeCursor parses a token produced by EncodeCursor. Any syntactically
// invalid token, unknown field, or negative offset fails with ErrInvalidCursor.
func DecodeCursor(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, fmt.Errorf("%w: empty token", ErrInvalidCursor)
	}

	payload, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("%w: %s", ErrInvalidCursor, err.Error())
	}

	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.DisallowUnknownFields()

	var c Cursor
	if err := dec.Decode(&c); err != nil {
		return Cursor{}, fmt.Errorf("%w: %s", ErrInvalidCursor, err.Error())
	}
	// Reject trailing garbage after the JSON document.
	if dec.More() {
		return Cursor{}, fmt.Errorf("%w: trailing data", ErrInvalidCursor)
	}
	if c.Offset < 0 {
		return Cursor{}, fmt.Errorf("%w: negative offset", ErrInvalidCursor)
	}

	return c, nil
}
