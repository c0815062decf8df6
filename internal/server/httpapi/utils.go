// Package httpapi exposes the invoice and user directory operations over
// RPC-style HTTP endpoints (POST /api/users.login, GET /api/invoices.get
// and so on). Handlers translate between JSON payloads and the service
// layer; authorization decisions live in the services, the handlers only
// resolve the caller from the bearer token.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dbelyakov/invoicekeeper/internal/common"
	"github.com/dbelyakov/invoicekeeper/internal/logging"
)

// WriteJSONError writes a JSON error response with the given status code.
func WriteJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// writeJSON writes a JSON response with the given status code and data.
// It sets the Content-Type header to application/json.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// respondError translates a service error into a JSON error response.
// Recognized sentinels keep their message; anything else is logged and
// reported as a plain internal error.
func respondError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		WriteJSONError(w, "internal error", status)
		return
	}
	WriteJSONError(w, err.Error(), status)
}

// statusForError maps the sentinel errors surfaced by the service layer
// onto HTTP status codes. Anything unrecognized is an internal error.
func statusForError(err error) int {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorForbidden):
		return http.StatusForbidden
	case errors.Is(err, common.ErrDuplicateEmail),
		errors.Is(err, common.ErrUserHasInvoices):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalidOwner):
		return http.StatusUnprocessableEntity
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrRefreshTokenExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
