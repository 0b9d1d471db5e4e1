package errorx

import (
	"errors"
	"fmt"
)

type Error struct {
	Code    Code
	Message string
}

func New(code Code, format string, a ...any) Error {
	return Error{Code: code, Message: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	return e.Message
}

// Is reports whether target is an Error with the same code. The message is not
// compared.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	if !ok {
		return false
	}

	return t.Code == e.Code
}

// CodeOf returns the code of err, or the code of Unknown if err is not an Error.
func CodeOf(err error) Code {
	errx := Error{}
	if errors.As(err, &errx) {
		return errx.Code
	}

	return Unknown.Code
}

func CategoryOf(err error) Category {
	return CodeOf(err).Category()
}

// Retryable is true for errors which may succeed if submitted again later.
func Retryable(err error) bool {
	switch CategoryOf(err) {
	case CategoryTransient, CategoryState:
		return true
	}

	return false
}
