package app

import (
	"errors"
	"fmt"

	"goblog-api/internal/pkg/jwtutil"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrDuplicateEmail     = errors.New("user with this email already exists")
	ErrNotFound           = errors.New("not found")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrPostNotFound       = fmt.Errorf("blog %w", ErrNotFound)
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrForbidden          = errors.New("permission denied")
	ErrUnauthorized       = errors.New("could not validate credentials")

	ErrTokenExpired   = jwtutil.ErrTokenExpired
	ErrTokenMalformed = jwtutil.ErrTokenMalformed
)

// IsAuthFailure reports whether err means the bearer token does not resolve
// to a live user. Callers collapse all of these into one unauthorized answer.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrTokenMalformed) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrUnauthorized)
}

func invalidInput(reason string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, reason)
}
