package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/dbelyakov/invoicekeeper/internal/logging"
	"github.com/dbelyakov/invoicekeeper/internal/server/models"
)

// InvoiceServiceInterface defines the methods required from the invoice
// service.
type InvoiceServiceInterface interface {
	NewUploadURL(ctx context.Context) (string, string, error)
	RecordExtraction(ctx context.Context, filePath string, ownerID int64, fields *models.ExtractionResult) (*models.Invoice, error)
	Get(ctx context.Context, invoiceID, actor int64) (*models.Invoice, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Invoice, error)
	ListUnreviewedByOwner(ctx context.Context, ownerID int64) ([]*models.Invoice, error)
	UpdateFields(ctx context.Context, invoiceID int64, changes models.FieldChanges, actor int64) (*models.Invoice, error)
	MarkReviewed(ctx context.Context, invoiceID, actor int64) (*models.Invoice, error)
	ReopenReview(ctx context.Context, invoiceID, actor int64) (*models.Invoice, error)
	Delete(ctx context.Context, invoiceID, actor int64) error
	DocumentURL(ctx context.Context, invoiceID, actor int64) (string, error)
}

type InvoiceHandler struct {
	service InvoiceServiceInterface
	auth    *AuthMiddleware
	logger  logging.Logger
}

func NewInvoiceHandler(service InvoiceServiceInterface, auth *AuthMiddleware, logger logging.Logger) *InvoiceHandler {
	return &InvoiceHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

// Request/Response types
type createInvoiceRequest struct {
	FilePath string `json:"file_path"`
	// Fields carries extraction output supplied by the caller. When the
	// key is absent or null the server runs its own extraction pass.
	Fields map[string]*string `json:"fields"`
}

type updateInvoiceRequest struct {
	ID     int64              `json:"id"`
	Fields map[string]*string `json:"fields"`
}

type invoiceIDRequest struct {
	ID int64 `json:"id"`
}

type invoiceResponse struct {
	ID       int64  `json:"id"`
	FilePath string `json:"file_path"`

	InvoiceNumber   *string `json:"invoice_number"`
	InvoiceDate     *string `json:"invoice_date"`
	VendorName      *string `json:"vendor_name"`
	TrnVatNumber    *string `json:"trn_vat_number"`
	BeforeTaxAmount *string `json:"before_tax_amount"`
	TaxAmount       *string `json:"tax_amount"`
	Total           *string `json:"total"`

	Reviewed bool  `json:"reviewed"`
	OwnerID  int64 `json:"owner_id"`
}

func toInvoiceResponse(inv *models.Invoice) *invoiceResponse {
	return &invoiceResponse{
		ID:              inv.ID,
		FilePath:        inv.FilePath,
		InvoiceNumber:   inv.InvoiceNumber,
		InvoiceDate:     inv.InvoiceDate,
		VendorName:      inv.VendorName,
		TrnVatNumber:    inv.TrnVatNumber,
		BeforeTaxAmount: inv.BeforeTaxAmount,
		TaxAmount:       inv.TaxAmount,
		Total:           inv.Total,
		Reviewed:        inv.Reviewed,
		OwnerID:         inv.OwnerID,
	}
}

func toInvoiceResponses(invoices []*models.Invoice) []*invoiceResponse {
	out := make([]*invoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		out = append(out, toInvoiceResponse(inv))
	}
	return out
}

// fieldChangesFromRequest validates the field names of a sparse correction
// payload. A nil value clears the column, a string value replaces it.
func fieldChangesFromRequest(fields map[string]*string) (models.FieldChanges, error) {
	changes := models.FieldChanges{}
	for name, value := range fields {
		if !models.IsExtractedField(name) {
			return nil, fmt.Errorf("unknown field %q", name)
		}
		changes[models.ExtractedField(name)] = value
	}
	return changes, nil
}

func extractionResultFromChanges(changes models.FieldChanges) *models.ExtractionResult {
	out := &models.ExtractionResult{}
	for field, value := range changes {
		switch field {
		case models.FieldInvoiceNumber:
			out.InvoiceNumber = value
		case models.FieldInvoiceDate:
			out.InvoiceDate = value
		case models.FieldVendorName:
			out.VendorName = value
		case models.FieldTrnVatNumber:
			out.TrnVatNumber = value
		case models.FieldBeforeTaxAmount:
			out.BeforeTaxAmount = value
		case models.FieldTaxAmount:
			out.TaxAmount = value
		case models.FieldTotal:
			out.Total = value
		}
	}
	return out
}

func (h *InvoiceHandler) RegisterRoutes(mux *http.ServeMux) {
	requireAuth := h.auth.RequireAuth

	mux.Handle("/api/invoices.uploadUrl", requireAuth(h.handleUploadURL))
	mux.Handle("/api/invoices.create", requireAuth(h.handleCreate))
	mux.Handle("/api/invoices.list", requireAuth(h.handleList))
	mux.Handle("/api/invoices.get", requireAuth(h.handleGet))
	mux.Handle("/api/invoices.update", requireAuth(h.handleUpdate))
	mux.Handle("/api/invoices.review", requireAuth(h.handleReview))
	mux.Handle("/api/invoices.reopen", requireAuth(h.handleReopen))
	mux.Handle("/api/invoices.delete", requireAuth(h.handleDelete))
	mux.Handle("/api/invoices.documentUrl", requireAuth(h.handleDocumentURL))
}

func (h *InvoiceHandler) handleUploadURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	key, url, err := h.service.NewUploadURL(r.Context())
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"file_path":  key,
		"upload_url": url,
	})
}

func (h *InvoiceHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.FilePath == "" {
		WriteJSONError(w, "Missing file path", http.StatusBadRequest)
		return
	}

	var fields *models.ExtractionResult
	if req.Fields != nil {
		changes, err := fieldChangesFromRequest(req.Fields)
		if err != nil {
			WriteJSONError(w, err.Error(), http.StatusBadRequest)
			return
		}
		fields = extractionResultFromChanges(changes)
	}

	invoice, err := h.service.RecordExtraction(r.Context(), req.FilePath, actor, fields)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"invoice": toInvoiceResponse(invoice),
	})
}

func (h *InvoiceHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	list := h.service.ListByOwner
	if v := r.URL.Query().Get("unreviewed"); v == "1" || v == "true" {
		list = h.service.ListUnreviewedByOwner
	}

	invoices, err := list(r.Context(), actor)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"invoices": toInvoiceResponses(invoices),
	})
}

func (h *InvoiceHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := invoiceIDFromQuery(r)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	invoice, err := h.service.Get(r.Context(), id, actor)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"invoice": toInvoiceResponse(invoice),
	})
}

func (h *InvoiceHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req updateInvoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == 0 {
		WriteJSONError(w, "Missing ID", http.StatusBadRequest)
		return
	}
	if len(req.Fields) == 0 {
		WriteJSONError(w, "Missing fields", http.StatusBadRequest)
		return
	}

	changes, err := fieldChangesFromRequest(req.Fields)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	invoice, err := h.service.UpdateFields(r.Context(), req.ID, changes, actor)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"invoice": toInvoiceResponse(invoice),
	})
}

func (h *InvoiceHandler) handleReview(w http.ResponseWriter, r *http.Request) {
	h.handleSetReviewed(w, r, h.service.MarkReviewed)
}

func (h *InvoiceHandler) handleReopen(w http.ResponseWriter, r *http.Request) {
	h.handleSetReviewed(w, r, h.service.ReopenReview)
}

func (h *InvoiceHandler) handleSetReviewed(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, invoiceID, actor int64) (*models.Invoice, error)) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req invoiceIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == 0 {
		WriteJSONError(w, "Missing ID", http.StatusBadRequest)
		return
	}

	invoice, err := op(r.Context(), req.ID, actor)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"invoice": toInvoiceResponse(invoice),
	})
}

func (h *InvoiceHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req invoiceIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == 0 {
		WriteJSONError(w, "Missing ID", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), req.ID, actor); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

func (h *InvoiceHandler) handleDocumentURL(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	id, err := invoiceIDFromQuery(r)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	url, err := h.service.DocumentURL(r.Context(), id, actor)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"url": url,
	})
}

func invoiceIDFromQuery(r *http.Request) (int64, error) {
	raw := r.URL.Query().Get("id")
	if raw == "" {
		return 0, fmt.Errorf("missing invoice ID")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid invoice ID %q", raw)
	}
	return id, nil
}
