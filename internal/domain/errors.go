package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")
)

// Verification workflow errors. Each wraps one of the sentinels above so a
// handler that only knows the generic set still picks the right status.
var (
	ErrCodeNotFound = fmt.Errorf("verification code not found: %w", ErrNotFound)
	ErrCodeMismatch = fmt.Errorf("verification code does not match: %w", ErrBadRequest)
	ErrUserNotFound = fmt.Errorf("user not found: %w", ErrNotFound)
)
