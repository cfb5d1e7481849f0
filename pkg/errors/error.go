// Package errors provides structured error handling with typed error codes.
//
// Error codes are organized into categories:
//   - General errors (1-99): Unknown and general errors
//   - Validation errors (100-199): Invalid prices, intervals, amounts, short histories
//   - Data/Resource errors (200-299): Price history lookup and query failures
//   - Strategy errors (400-499): Strategy construction and execution errors
//   - Backtest errors (600-699): Trial engine and result accumulation errors
//   - Market data errors (700-799): Market data download and storage errors
//
// Usage:
//
//	// Create a new error
//	err := errors.New(errors.ErrCodeInvalidPrice, "price must be positive")
//
//	// Wrap an existing error
//	err := errors.Wrapf(errors.ErrCodeStrategyRuntimeError, cause, "strategy %q failed in trial %d", name, trial)
//
//	// Check a code anywhere in the chain
//	if errors.HasCodeInChain(err, errors.ErrCodeInvalidPrice) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error represents a structured error with an error code and message.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   nil,
	}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   nil,
	}
}

// Wrap wraps an existing error with a new Error containing the given code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Wrapf wraps an existing error with a new Error containing the given code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode extracts the ErrorCode of the outermost *Error in err's chain.
// Returns ErrCodeUnknown if there is none.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode checks if the outermost *Error has a specific ErrorCode.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// HasCodeInChain checks every *Error in err's chain for the given code.
// The engine wraps strategy failures with its own code, so callers use this
// to find the root cause (for example an invalid price).
func HasCodeInChain(err error, code ErrorCode) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}

		if e.Code == code {
			return true
		}

		err = e.Cause
	}

	return false
}

// InsufficientHistoryError carries the sizes involved when a price history is
// too short for the requested trial window.
type InsufficientHistoryError struct {
	Required int    // Minimum number of trading days required
	Actual   int    // Trading days available
	Symbol   string // Optional: symbol context
}

// NewInsufficientHistoryError creates an *Error with ErrCodeInsufficientHistory
// whose cause is an InsufficientHistoryError.
func NewInsufficientHistoryError(required, actual int, symbol string) *Error {
	return Wrapf(ErrCodeInsufficientHistory,
		&InsufficientHistoryError{Required: required, Actual: actual, Symbol: symbol},
		"cannot draw a %d day window", required)
}

// Error implements the error interface.
func (e *InsufficientHistoryError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("history for %s has %d trading days, need at least %d", e.Symbol, e.Actual, e.Required)
	}

	return fmt.Sprintf("history has %d trading days, need at least %d", e.Actual, e.Required)
}

// IsInsufficientHistoryError checks if err's chain contains an InsufficientHistoryError.
func IsInsufficientHistoryError(err error) bool {
	var historyErr *InsufficientHistoryError

	return errors.As(err, &historyErr)
}
