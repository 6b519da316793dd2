package mcp

import (
	"errors"
	"fmt"
)

// Category classifies every error the server can surface to a caller. The
// category travels in the error reply's data field, so callers can branch on
// a stable string while the message stays human-readable.
type Category string

// Error categories.
const (
	CategoryMalformedRequest Category = "MalformedRequest"
	CategoryMethodNotFound   Category = "MethodNotFound"
	CategorySessionNotFound  Category = "SessionNotFound"
	CategoryValidationError  Category = "ValidationError"
	CategoryNotFound         Category = "NotFound"
	CategoryDuplicateKey     Category = "DuplicateKey"
	CategoryAccessDenied     Category = "AccessDenied"
	CategoryOperationFailed  Category = "OperationFailed"
)

// Error is a categorized server error. It is converted into a JSON-RPC error
// object at the dispatch boundary; no error escapes to the transport layer
// unformatted.
type Error struct {
	Category Category
	Message  string
	// Fields carries per-field detail for validation errors.
	Fields map[string]string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

// JSONRPC renders the error as a JSON-RPC error object with the category (and
// any per-field detail) in the data field.
func (e *Error) JSONRPC() *JSONRPCError {
	data := map[string]any{"category": string(e.Category)}
	if len(e.Fields) > 0 {
		data["fields"] = e.Fields
	}
	return &JSONRPCError{
		Code:    e.Category.rpcCode(),
		Message: e.Message,
		Data:    data,
	}
}

func (c Category) rpcCode() int {
	switch c {
	case CategoryMalformedRequest:
		return jsonRPCInvalidRequestCode
	case CategoryMethodNotFound:
		return jsonRPCMethodNotFoundCode
	case CategorySessionNotFound:
		return jsonRPCSessionNotFoundCode
	case CategoryValidationError, CategoryNotFound, CategoryDuplicateKey:
		return jsonRPCInvalidParamsCode
	case CategoryAccessDenied:
		return jsonRPCAccessDeniedCode
	default:
		return jsonRPCInternalErrorCode
	}
}

func newError(category Category, format string, args ...any) *Error {
	return &Error{
		Category: category,
		Message:  fmt.Sprintf(format, args...),
	}
}

// CategoryOf extracts the category from an error produced by this package,
// defaulting to OperationFailed for anything else.
func CategoryOf(err error) Category {
	var e *Error
	if errors.As(err, &e) {
		return e.Category
	}
	return CategoryOperationFailed
}
