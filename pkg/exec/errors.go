package exec

import (
	"errors"
	"fmt"
)

// ErrorCode is the wire-level SQLSTATE class of an execution error.
type ErrorCode string

// Error codes surfaced by the executor.
const (
	// Structural errors.
	ErrArrayNotFound  ErrorCode = "22039"
	ErrMemberNotFound ErrorCode = "2203A"
	ErrNumberNotFound ErrorCode = "2203B"
	ErrObjectNotFound ErrorCode = "2203C"

	// Value errors.
	ErrScalarRequired       ErrorCode = "2203F"
	ErrSingletonRequired    ErrorCode = "22038"
	ErrNonNumericItem       ErrorCode = "22036"
	ErrInvalidSubscript     ErrorCode = "22033"
	ErrInvalidDatetimeArg   ErrorCode = "22031"
	ErrDivisionByZero       ErrorCode = "22012"
	ErrNumericOutOfRange    ErrorCode = "22003"
	ErrInvalidParameter     ErrorCode = "22023"
	ErrUndefinedObject      ErrorCode = "42704"
	ErrStatementTooComplex  ErrorCode = "54001"
)

// ErrNull is returned by Exists and Match when the SQL result is NULL
// rather than true or false.
var ErrNull = errors.New("sqljson: result is null")

// Error is a structured execution error carrying its SQLSTATE code.
type Error struct {
	Code    ErrorCode
	Message string
	Detail  string
	Hint    string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (SQLSTATE %s)", e.Message, e.Detail, e.Code)
	}
	return fmt.Sprintf("%s (SQLSTATE %s)", e.Message, e.Code)
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithHint adds hint text to the error.
func (e *Error) WithHint(hint string) *Error {
	e.Hint = hint
	return e
}

// WithCause wraps another error.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

func newError(code ErrorCode, message, detail string) *Error {
	return &Error{Code: code, Message: message, Detail: detail}
}

// CodeOf extracts the ErrorCode from err, or "" when err carries none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
