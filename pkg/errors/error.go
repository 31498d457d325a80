// Package errors provides coded errors shared by the strategy, backtest,
// trading and session layers.
//
// Error codes are grouped by the layer that raises them:
//   - General errors (1-99)
//   - Validation errors (100-199): bad parameters, symbols, date ranges
//   - Data/Resource errors (200-299): missing data, storage and transaction failures
//   - Strategy errors (400-499): unknown kinds, bad parameter sets, runtime faults
//   - Trading errors (500-599): broker failures, insufficient funds or shares
//   - Backtest errors (600-699): configuration and cancellation
//   - Market data errors (700-799): price source fetch and parse failures
//   - Callback errors (800-899)
//   - Session errors (900-999): unknown sessions, name conflicts, closed manager
//
// Usage:
//
//	err := errors.Newf(errors.ErrCodeSessionNotFound, "session %d not found", id)
//	if errors.HasCode(err, errors.ErrCodeSessionNotFound) { ... }
package errors

import (
	"errors"
	"fmt"
)

// Error is a structured error carrying an ErrorCode.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// New creates a new Error with the given code and message.
func New(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates a new Error with the given code and formatted message.
func Newf(code ErrorCode, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps cause with a code and message.
func Wrap(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// Wrapf wraps cause with a code and formatted message.
func Wrapf(code ErrorCode, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Cause)
	}

	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is is errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// GetCode returns the code of the outermost *Error in err's chain,
// or ErrCodeUnknown when there is none.
func GetCode(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}

	return ErrCodeUnknown
}

// HasCode reports whether the outermost *Error in err's chain has code.
func HasCode(err error, code ErrorCode) bool {
	return GetCode(err) == code
}

// ChainHasCode reports whether any *Error in err's chain has code.
func ChainHasCode(err error, code ErrorCode) bool {
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

// InsufficientDataError reports that a rolling window holds fewer
// observations than a calculation requires.
type InsufficientDataError struct {
	Required int
	Actual   int
	Symbol   string
	Message  string
}

// NewInsufficientDataErrorf creates an InsufficientDataError with a formatted message.
func NewInsufficientDataErrorf(required, actual int, symbol, format string, args ...any) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  fmt.Sprintf(format, args...),
	}
}

func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError checks err's chain for an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}
