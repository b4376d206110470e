package sim

import (
	"errors"
	"fmt"
)

// Code classifies simulation errors.
type Code string

const (
	// CodeConfig marks an invalid map or configuration, surfaced at load time.
	CodeConfig Code = "config"
	// CodeNoPath marks a path search that found no route.
	CodeNoPath Code = "no_path"
	// CodeNoTarget marks a navigation request with no candidate destination.
	CodeNoTarget Code = "no_target"
	// CodeInvalidQuery marks a state query or transition the world cannot answer.
	CodeInvalidQuery Code = "invalid_query"
)

// Error is a classified simulation error.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

// Sentinels for errors.Is checks. Matching is by Code only.
var (
	ErrConfig       = &Error{Code: CodeConfig}
	ErrNoPath       = &Error{Code: CodeNoPath}
	ErrNoTarget     = &Error{Code: CodeNoTarget}
	ErrInvalidQuery = &Error{Code: CodeInvalidQuery}
)

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Code)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is reports whether target is a *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func newError(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func wrapError(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// IsCode reports whether err carries code anywhere in its chain.
func IsCode(err error, code Code) bool {
	var e *Error
	for err != nil {
		if errors.As(err, &e) {
			if e.Code == code {
				return true
			}
			err = e.Cause
			continue
		}
		return false
	}
	return false
}
