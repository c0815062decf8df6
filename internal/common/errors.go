// Package common defines shared constants and sentinel errors used across
// client and server layers of InvoiceKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrInvalidOwner    = errors.New("owner does not exist")
	ErrUserHasInvoices = errors.New("user still owns invoices")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")

	// Credential errors. Deliberately indistinguishable between unknown
	// email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")

	// Startup gate: the database schema is not at the version this binary
	// was built against.
	ErrSchemaVersionMismatch = errors.New("database schema version mismatch")
)
