package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrInvalidOTP collapses every OTP verification failure (wrong code,
	// expired, attempts exhausted, already consumed) into one sentinel so the
	// transport layer surfaces a single generic message to the caller.
	ErrInvalidOTP = errors.New("invalid or expired OTP")
)
