package apperror

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeValidation Code = "validation"
	CodeInvariant  Code = "invariant_violation"
	CodeNotFound   Code = "not_found"
	CodeConflict   Code = "conflict"
	CodeInternal   Code = "internal"
)

type Error struct {
	Code    Code
	Message string
	// ID is the offending record id, zero when not applicable.
	ID  uint
	Err error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

func Wrap(err error, code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NotFound(resource string, id uint) *Error {
	return &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with id %d does not exist", resource, id),
		ID:      id,
	}
}

func Invariant(message string, id uint) *Error {
	return &Error{
		Code:    CodeInvariant,
		Message: message,
		ID:      id,
	}
}

func GetCode(err error) Code {
	if err == nil {
		return ""
	}

	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}

	return CodeInternal
}

// GetID returns the offending id carried by err, if any.
func GetID(err error) (uint, bool) {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.ID != 0 {
		return appErr.ID, true
	}
	return 0, false
}
