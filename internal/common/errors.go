// Package common defines shared constants and sentinel errors used across
// client and server layers of gophauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrIdentifierTaken reports that a freshly generated identifier was
	// claimed by another record between the existence check and the insert.
	ErrIdentifierTaken = errors.New("identifier taken")

	// Service-level errors.
	ErrorInternal           = errors.New("internal error")
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorForbidden          = errors.New("forbidden")
	ErrorUnauthenticated    = errors.New("unauthenticated")

	// Validation errors raised by transport adapters.
	ErrorValidation = errors.New("validation error")
)
