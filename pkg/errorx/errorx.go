package errorx

import (
	"errors"
	"fmt"
)

// CodeError is an error carrying a business status code.
// It supports %w wrapping and is recognized by errors.Is/errors.As.
type CodeError struct {
	Code  int    // business status code
	Msg   string // human-readable message
	cause error  // wrapped underlying error
}

// Error implements the error interface. When an underlying error is
// present the result is "msg: cause".
func (e *CodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.cause)
	}
	return e.Msg
}

// Unwrap exposes the wrapped cause to errors.Is/errors.As.
func (e *CodeError) Unwrap() error {
	return e.cause
}

// New creates a CodeError with the given code and message.
func New(code int, msg string) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  msg,
	}
}

// Newf creates a CodeError with a formatted message.
func Newf(code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

// Wrap attaches a business code and message to an underlying error.
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   msg,
		cause: err,
	}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return &CodeError{
		Code:  code,
		Msg:   fmt.Sprintf(format, args...),
		cause: err,
	}
}

// GetCode extracts the business code from an error chain, falling back
// to CodeServerBusy for plain errors.
func GetCode(err error) int {
	var codeErr *CodeError
	if errors.As(err, &codeErr) {
		return codeErr.Code
	}
	return CodeServerBusy
}

// Business status codes shared by the client and the stub backend.
const (
	CodeSuccess         = 1000 // success
	CodeInvalidParam    = 1001 // malformed request parameters
	CodeUserExist       = 1002 // user already exists
	CodeUserNotExist    = 1003 // user does not exist
	CodeInvalidPassword = 1004 // wrong password
	CodeServerBusy      = 1005 // generic server-side failure
	CodeUnauthorized    = 1006 // missing/invalid credentials
	CodeNotFound        = 1008 // resource does not exist
)

// Predefined instances, usable both as return values and with errors.Is.
var (
	ErrInvalidParam = New(CodeInvalidParam, "invalid request parameters")
	ErrServerBusy   = New(CodeServerBusy, "server busy")
	ErrUnauthorized = New(CodeUnauthorized, "unauthorized")
)

// IsNotFound reports whether err carries the not-found business code.
func IsNotFound(err error) bool {
	var codeErr *CodeError
	return errors.As(err, &codeErr) && codeErr.Code == CodeNotFound
}

// IsUnauthorized reports whether err carries the unauthorized business code.
func IsUnauthorized(err error) bool {
	var codeErr *CodeError
	return errors.As(err, &codeErr) && codeErr.Code == CodeUnauthorized
}
