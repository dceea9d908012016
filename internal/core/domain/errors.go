package domain

import "errors"

// Authentication and authorization failures. ErrInvalidCredentials is shared
// by the unknown-identifier and wrong-password paths so callers cannot probe
// which accounts exist.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrInactiveAccount    = errors.New("inactive account")
	ErrInvalidToken       = errors.New("invalid token")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidRole        = errors.New("invalid role")
)

// ErrUnavailable marks transient persistence/backend failures. It is never
// conflated with an authentication verdict.
var ErrUnavailable = errors.New("service unavailable")
