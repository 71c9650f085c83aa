package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Authentication & Authorization Errors
var (
	ErrMissingToken  = errors.New("missing access token")
	ErrExpiredToken  = errors.New("expired access token")
	ErrInvalidToken  = errors.New("invalid access token")
	ErrWrongPassword = errors.New("wrong password")
	ErrSessionClosed = errors.New("admin session closed")
)

// newUnauthorizedError wraps reason so both errors.Is(err, ErrUnauthorized)
// and errors.Is(err, reason) hold.
func newUnauthorizedError(reason error, details, field string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusUnauthorized,
		err:        fmt.Errorf("%w: %w", ErrUnauthorized, reason),
		Details:    details,
		Field:      field,
	}
}

// Authentication & Authorization Error Constructors
func NewMissingTokenError() *ApiErr {
	return newUnauthorizedError(ErrMissingToken, "Missing access token", "authorization")
}

func NewExpiredTokenError() *ApiErr {
	return newUnauthorizedError(ErrExpiredToken, "Access token has expired", "authorization")
}

func NewInvalidTokenError() *ApiErr {
	return newUnauthorizedError(ErrInvalidToken, "Invalid access token", "authorization")
}

func NewWrongPasswordError() *ApiErr {
	return newUnauthorizedError(ErrWrongPassword, "Incorrect admin password", "password")
}

func NewSessionClosedError() *ApiErr {
	return newUnauthorizedError(ErrSessionClosed, "Admin session has been closed, log in again", "authorization")
}

func IsMissingTokenError(err error) bool {
	return errors.Is(err, ErrMissingToken)
}

func IsExpiredTokenError(err error) bool {
	return errors.Is(err, ErrExpiredToken)
}

func IsInvalidTokenError(err error) bool {
	return errors.Is(err, ErrInvalidToken)
}
