// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Parameter errors, raised before a simulation starts
	ErrInvalidWindow     = &Error{Code: "INVALID_WINDOW", Message: "invalid moving average windows"}
	ErrInvalidCapital    = &Error{Code: "INVALID_CAPITAL", Message: "initial capital must be positive"}
	ErrInvalidCommission = &Error{Code: "INVALID_COMMISSION", Message: "commission rate must be in [0, 1)"}

	// Input series errors
	ErrEmptySeries       = &Error{Code: "EMPTY_SERIES", Message: "price series is empty"}
	ErrNonMonotonicInput = &Error{Code: "NON_MONOTONIC_INPUT", Message: "timestamps must be strictly increasing"}
	ErrInsufficientData  = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient data for analysis"}

	// Collector errors
	ErrSymbolNotFound = &Error{Code: "SYMBOL_NOT_FOUND", Message: "symbol not found"}
	ErrNoData         = &Error{Code: "NO_DATA", Message: "no data available"}

	// Config errors
	ErrConfigInvalid = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}

	// Storage errors
	ErrStorageFailed = &Error{Code: "STORAGE_FAILED", Message: "result storage failed"}
)
