// Package api contains the client-side API surface for InvoiceKeeper.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) to talk
//     to the InvoiceKeeper backend: Register/Login, Ping, the invoice ledger
//     operations, and presigned URL helpers for document transfer.
//  2. A concrete HTTP implementation (see HTTPClient) that injects the
//     bearer access token on every request, transparently refreshes an
//     expired token pair once before replaying the call, and maps HTTP
//     statuses to sentinel errors.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized. Everything else surfaces
// as an "api error" carrying the server's message.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use; the token pair is guarded by a
// mutex. All operations accept context.Context and honor cancellation.
package api
