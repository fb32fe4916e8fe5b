package mcp

import (
	"context"
	"errors"
	"fmt"

	codiierrors "github.com/oOSomnus/codii/internal/errors"
)

// Custom MCP error codes, following the JSON-RPC reserved range's
// convention of implementation-defined codes below -32000.
const (
	ErrCodeNotIndexed   = -32001
	ErrCodeTimeout      = -32002
	ErrCodeInvalidQuery = -32003

	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Error is an MCP protocol error with a JSON-RPC-style code.
type Error struct {
	Code    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

// MapError converts codii's internal errors into MCP errors the
// client can act on, matching error codes to internal/errors
// categories where one exists.
func MapError(err error) *Error {
	if err == nil {
		return nil
	}

	var ce *codiierrors.Error
	if errors.As(err, &ce) {
		return mapCodiiError(ce)
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &Error{Code: ErrCodeTimeout, Message: "request was cancelled or timed out"}
	default:
		return &Error{Code: ErrCodeInternalError, Message: "internal server error: " + err.Error()}
	}
}

func mapCodiiError(ce *codiierrors.Error) *Error {
	// CodeNotIndexed is a validation-category code, so it is checked
	// before the category switch.
	if ce.Code == codiierrors.CodeNotIndexed {
		return &Error{Code: ErrCodeNotIndexed, Message: ce.Message + ". Call index_codebase first."}
	}
	switch ce.Category {
	case codiierrors.CategoryValidation:
		return &Error{Code: ErrCodeInvalidParams, Message: ce.Message}
	case codiierrors.CategoryCancelled:
		return &Error{Code: ErrCodeTimeout, Message: ce.Message}
	default:
		return &Error{Code: ErrCodeInternalError, Message: ce.Message}
	}
}

// NewInvalidParamsError builds an invalid-params MCP error with a
// custom message.
func NewInvalidParamsError(msg string) *Error {
	return &Error{Code: ErrCodeInvalidParams, Message: msg}
}

// NewMethodNotFoundError builds an unknown-tool MCP error.
func NewMethodNotFoundError(name string) *Error {
	return &Error{Code: ErrCodeMethodNotFound, Message: fmt.Sprintf("tool %q not found", name)}
}
