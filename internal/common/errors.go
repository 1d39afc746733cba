// Package common defines shared constants and sentinel errors used across
// the tradepost server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Validation / request-shape errors.
	ErrorValidation = errors.New("validation error")

	// Credential flow errors.
	ErrEmailExists    = errors.New("email already exists")
	ErrUnknownEmail   = errors.New("email does not exist")
	ErrBadCredentials = errors.New("password incorrect")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")
)
