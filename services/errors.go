package services

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindAuthentication
	KindAuthorization
	KindNotFound
	KindValidation
	KindConflict
)

// AppError is returned by every service operation that fails for a reason
// the caller can act on.
type AppError struct {
	Kind    ErrorKind
	Message string
	Err     error
	status  int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) Status() int {
	if e.status != 0 {
		return e.status
	}
	switch e.Kind {
	case KindAuthentication:
		return fiber.StatusUnauthorized
	case KindAuthorization:
		return fiber.StatusForbidden
	case KindNotFound:
		return fiber.StatusNotFound
	case KindValidation:
		return fiber.StatusBadRequest
	case KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// WithStatus overrides the HTTP status derived from the kind.
func (e *AppError) WithStatus(code int) *AppError {
	e.status = code
	return e
}

func NewAuthentication(msg string) *AppError {
	return &AppError{Kind: KindAuthentication, Message: msg}
}

func NewAuthorization(msg string) *AppError {
	return &AppError{Kind: KindAuthorization, Message: msg}
}

func NewNotFound(msg string) *AppError {
	return &AppError{Kind: KindNotFound, Message: msg}
}

func NewValidation(msg string) *AppError {
	return &AppError{Kind: KindValidation, Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{Kind: KindConflict, Message: msg}
}

func NewInternal(msg string, err error) *AppError {
	return &AppError{Kind: KindInternal, Message: msg, Err: err}
}

// IsKind reports whether err is an *AppError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// ErrorResponse maps err to an HTTP status and the message safe to show the
// caller. Anything that is not an *AppError is reported as a 500.
func ErrorResponse(err error) (int, string) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status(), appErr.Message
	}
	return fiber.StatusInternalServerError, "Internal server error"
}
