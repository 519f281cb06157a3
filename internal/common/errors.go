// Package common defines shared constants and sentinel errors used across
// the storage, service and transport layers of secretkeeper. Callers should
// use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")
	ErrorBackend  = errors.New("backend error")

	// Uniqueness violations.
	ErrorDuplicateKey       = errors.New("duplicate key")
	ErrorUsernameTaken      = errors.New("username already exists")
	ErrorTokenAlreadyExists = errors.New("token already exists")

	// Crypto errors.
	ErrorValidation            = errors.New("validation error")
	ErrorAuthenticationFailure = errors.New("authentication failure")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
)
