package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/dbelyakov/invoicekeeper/internal/common"
	"github.com/dbelyakov/invoicekeeper/internal/server/models"
)

type fakeInvoiceService struct {
	uploadKey string
	uploadURL string
	uploadErr error

	recordOut       *models.Invoice
	recordErr       error
	recordCalled    bool
	gotRecordPath   string
	gotRecordOwner  int64
	gotRecordFields *models.ExtractionResult

	getOut      *models.Invoice
	getErr      error
	gotGetID    int64
	gotGetActor int64

	listOut          []*models.Invoice
	listErr          error
	unreviewedOut    []*models.Invoice
	gotListOwner     int64
	unreviewedCalled bool

	updateOut        *models.Invoice
	updateErr        error
	updateCalled     bool
	gotUpdateID      int64
	gotUpdateChanges models.FieldChanges
	gotUpdateActor   int64

	reviewOut    *models.Invoice
	reviewErr    error
	gotReviewID  int64
	reopenCalled bool

	deleteErr   error
	gotDeleteID int64

	docURL   string
	docErr   error
	gotDocID int64
}

func (f *fakeInvoiceService) NewUploadURL(ctx context.Context) (string, string, error) {
	if f.uploadErr != nil {
		return "", "", f.uploadErr
	}
	return f.uploadKey, f.uploadURL, nil
}

func (f *fakeInvoiceService) RecordExtraction(ctx context.Context, filePath string, ownerID int64, fields *models.ExtractionResult) (*models.Invoice, error) {
	f.recordCalled = true
	f.gotRecordPath = filePath
	f.gotRecordOwner = ownerID
	f.gotRecordFields = fields
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	return f.recordOut, nil
}

func (f *fakeInvoiceService) Get(ctx context.Context, invoiceID, actor int64) (*models.Invoice, error) {
	f.gotGetID = invoiceID
	f.gotGetActor = actor
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

func (f *fakeInvoiceService) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Invoice, error) {
	f.gotListOwner = ownerID
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listOut, nil
}

func (f *fakeInvoiceService) ListUnreviewedByOwner(ctx context.Context, ownerID int64) ([]*models.Invoice, error) {
	f.unreviewedCalled = true
	f.gotListOwner = ownerID
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.unreviewedOut, nil
}

func (f *fakeInvoiceService) UpdateFields(ctx context.Context, invoiceID int64, changes models.FieldChanges, actor int64) (*models.Invoice, error) {
	f.updateCalled = true
	f.gotUpdateID = invoiceID
	f.gotUpdateChanges = changes
	f.gotUpdateActor = actor
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOut, nil
}

func (f *fakeInvoiceService) MarkReviewed(ctx context.Context, invoiceID, actor int64) (*models.Invoice, error) {
	f.gotReviewID = invoiceID
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	return f.reviewOut, nil
}

func (f *fakeInvoiceService) ReopenReview(ctx context.Context, invoiceID, actor int64) (*models.Invoice, error) {
	f.reopenCalled = true
	f.gotReviewID = invoiceID
	if f.reviewErr != nil {
		return nil, f.reviewErr
	}
	return f.reviewOut, nil
}

func (f *fakeInvoiceService) Delete(ctx context.Context, invoiceID, actor int64) error {
	f.gotDeleteID = invoiceID
	return f.deleteErr
}

func (f *fakeInvoiceService) DocumentURL(ctx context.Context, invoiceID, actor int64) (string, error) {
	f.gotDocID = invoiceID
	if f.docErr != nil {
		return "", f.docErr
	}
	return f.docURL, nil
}

func newInvoiceMux(t *testing.T, svc *fakeInvoiceService) *http.ServeMux {
	t.Helper()
	mux := http.NewServeMux()
	NewInvoiceHandler(svc, NewAuthMiddleware(testSecret), testLogger()).RegisterRoutes(mux)
	return mux
}

func authorized(t *testing.T, req *http.Request, userID int64) *http.Request {
	t.Helper()
	req.Header.Set(common.AuthorizationHeaderName, bearerFor(t, userID))
	return req
}

func TestUploadURL(t *testing.T) {
	svc := &fakeInvoiceService{uploadKey: "users/2025/1/2/abc", uploadURL: "https://upload"}
	mux := newInvoiceMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/invoices.uploadUrl", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodGet, "/api/invoices.uploadUrl", nil), 7))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("GET: expected 405, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodPost, "/api/invoices.uploadUrl", nil), 7))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["file_path"] != "users/2025/1/2/abc" || resp["upload_url"] != "https://upload" {
		t.Fatalf("unexpected response: %v", resp)
	}
}

func TestCreateInvoice_CallerFields(t *testing.T) {
	svc := &fakeInvoiceService{recordOut: &models.Invoice{ID: 101, FilePath: "k", OwnerID: 7}}
	mux := newInvoiceMux(t, svc)

	body := `{"file_path":"k","fields":{"vendor_name":"ACME LLC","total":null}}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodPost, "/api/invoices.create", strings.NewReader(body)), 7))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotRecordPath != "k" || svc.gotRecordOwner != 7 {
		t.Fatalf("path/owner not forwarded: %q %d", svc.gotRecordPath, svc.gotRecordOwner)
	}
	fields := svc.gotRecordFields
	if fields == nil {
		t.Fatal("caller fields must reach the service")
	}
	if fields.VendorName == nil || *fields.VendorName != "ACME LLC" {
		t.Fatalf("vendor not forwarded: %+v", fields)
	}
	if fields.Total != nil || fields.InvoiceNumber != nil {
		t.Fatalf("null and absent fields must stay nil: %+v", fields)
	}
}

func TestCreateInvoice_NoFieldsRunsServerExtraction(t *testing.T) {
	svc := &fakeInvoiceService{recordOut: &models.Invoice{ID: 101}}
	mux := newInvoiceMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodPost, "/api/invoices.create", strings.NewReader(`{"file_path":"k"}`)), 7))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotRecordFields != nil {
		t.Fatalf("absent fields must be passed as nil, got %+v", svc.gotRecordFields)
	}
}

func TestCreateInvoice_Validation(t *testing.T) {
	svc := &fakeInvoiceService{}
	mux := newInvoiceMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodPost, "/api/invoices.create", strings.NewReader(`{"fields":{}}`)), 7))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing file path: expected 400, got %d", rec.Code)
	}

	body := `{"file_path":"k","fields":{"grand_total":"10"}}`
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodPost, "/api/invoices.create", strings.NewReader(body)), 7))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown field: expected 400, got %d", rec.Code)
	}
	if svc.recordCalled {
		t.Fatal("service must not be reached on validation failures")
	}
}

func TestListInvoices(t *testing.T) {
	svc := &fakeInvoiceService{
		listOut:       []*models.Invoice{{ID: 1, OwnerID: 7}, {ID: 2, OwnerID: 7}},
		unreviewedOut: []*models.Invoice{{ID: 2, OwnerID: 7}},
	}
	mux := newInvoiceMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodGet, "/api/invoices.list", nil), 7))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.unreviewedCalled {
		t.Fatal("plain list must not hit the unreviewed query")
	}
	if svc.gotListOwner != 7 {
		t.Fatalf("owner scoping broken: %d", svc.gotListOwner)
	}

	var resp struct {
		Invoices []*invoiceResponse `json:"invoices"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Invoices) != 2 {
		t.Fatalf("unexpected invoices: %+v", resp.Invoices)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodGet, "/api/invoices.list?unreviewed=1", nil), 7))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !svc.unreviewedCalled {
		t.Fatal("unreviewed=1 must hit the unreviewed query")
	}

	resp.Invoices = nil
	decodeBody(t, rec, &resp)
	if len(resp.Invoices) != 1 || resp.Invoices[0].ID != 2 {
		t.Fatalf("unexpected unreviewed invoices: %+v", resp.Invoices)
	}
}

func TestGetInvoice(t *testing.T) {
	svc := &fakeInvoiceService{getOut: &models.Invoice{ID: 10, OwnerID: 7, FilePath: "k"}}
	mux := newInvoiceMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodGet, "/api/invoices.get?id=10", nil), 7))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotGetID != 10 || svc.gotGetActor != 7 {
		t.Fatalf("id/actor not forwarded: %d %d", svc.gotGetID, svc.gotGetActor)
	}

	var resp struct {
		Invoice *invoiceResponse `json:"invoice"`
	}
	decodeBody(t, rec, &resp)
	if resp.Invoice == nil || resp.Invoice.ID != 10 {
		t.Fatalf("unexpected invoice: %+v", resp.Invoice)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodGet, "/api/invoices.get", nil), 7))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing id: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodGet, "/api/invoices.get?id=abc", nil), 7))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad id: expected 400, got %d", rec.Code)
	}

	svc.getErr = common.ErrorNotFound
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodGet, "/api/invoices.get?id=404", nil), 7))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("not found: expected 404, got %d", rec.Code)
	}

	svc.getErr = common.ErrorForbidden
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodGet, "/api/invoices.get?id=10", nil), 2))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("foreign invoice: expected 403, got %d", rec.Code)
	}
}

func TestUpdateInvoice(t *testing.T) {
	svc := &fakeInvoiceService{updateOut: &models.Invoice{ID: 10, OwnerID: 7}}
	mux := newInvoiceMux(t, svc)

	body := `{"id":10,"fields":{"total":"5224.26","invoice_date":null}}`
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodPost, "/api/invoices.update", strings.NewReader(body)), 7))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotUpdateID != 10 || svc.gotUpdateActor != 7 {
		t.Fatalf("id/actor not forwarded: %d %d", svc.gotUpdateID, svc.gotUpdateActor)
	}
	changes := svc.gotUpdateChanges
	if v, ok := changes[models.FieldTotal]; !ok || v == nil || *v != "5224.26" {
		t.Fatalf("total change not forwarded: %+v", changes)
	}
	if v, ok := changes[models.FieldInvoiceDate]; !ok || v != nil {
		t.Fatalf("explicit null must clear the column: %+v", changes)
	}
	if _, ok := changes[models.FieldVendorName]; ok {
		t.Fatalf("absent attributes must not appear in changes: %+v", changes)
	}

	svc.updateCalled = false
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodPost, "/api/invoices.update", strings.NewReader(`{"id":10,"fields":{}}`)), 7))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty fields: expected 400, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodPost, "/api/invoices.update", strings.NewReader(`{"id":10,"fields":{"file_path":"x"}}`)), 7))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("non-correctable field: expected 400, got %d", rec.Code)
	}
	if svc.updateCalled {
		t.Fatal("service must not be reached on validation failures")
	}
}

func TestReviewAndReopen(t *testing.T) {
	svc := &fakeInvoiceService{reviewOut: &models.Invoice{ID: 10, OwnerID: 7, Reviewed: true}}
	mux := newInvoiceMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodPost, "/api/invoices.review", strings.NewReader(`{"id":10}`)), 7))
	if rec.Code != http.StatusOK {
		t.Fatalf("review: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotReviewID != 10 || svc.reopenCalled {
		t.Fatalf("review routed wrong: id=%d reopen=%v", svc.gotReviewID, svc.reopenCalled)
	}

	var resp struct {
		Invoice *invoiceResponse `json:"invoice"`
	}
	decodeBody(t, rec, &resp)
	if resp.Invoice == nil || !resp.Invoice.Reviewed {
		t.Fatalf("unexpected invoice: %+v", resp.Invoice)
	}

	svc.reviewOut = &models.Invoice{ID: 10, OwnerID: 7, Reviewed: false}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodPost, "/api/invoices.reopen", strings.NewReader(`{"id":10}`)), 7))
	if rec.Code != http.StatusOK {
		t.Fatalf("reopen: expected 200, got %d", rec.Code)
	}
	if !svc.reopenCalled {
		t.Fatal("reopen must hit ReopenReview")
	}
}

func TestDeleteInvoice(t *testing.T) {
	svc := &fakeInvoiceService{}
	mux := newInvoiceMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodPost, "/api/invoices.delete", strings.NewReader(`{"id":10}`)), 7))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotDeleteID != 10 {
		t.Fatalf("id not forwarded: %d", svc.gotDeleteID)
	}

	svc.deleteErr = common.ErrorNotFound
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodPost, "/api/invoices.delete", strings.NewReader(`{"id":404}`)), 7))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("not found: expected 404, got %d", rec.Code)
	}
}

func TestDocumentURL(t *testing.T) {
	svc := &fakeInvoiceService{docURL: "https://download"}
	mux := newInvoiceMux(t, svc)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodGet, "/api/invoices.documentUrl?id=10", nil), 7))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotDocID != 10 {
		t.Fatalf("id not forwarded: %d", svc.gotDocID)
	}

	var resp map[string]string
	decodeBody(t, rec, &resp)
	if resp["url"] != "https://download" {
		t.Fatalf("unexpected response: %v", resp)
	}

	svc.docErr = errBoomHTTP{}
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, authorized(t, httptest.NewRequest(http.MethodGet, "/api/invoices.documentUrl?id=10", nil), 7))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected failure: expected 500, got %d", rec.Code)
	}
	resp = nil
	decodeBody(t, rec, &resp)
	if resp["error"] != "internal error" {
		t.Fatalf("internal failures must not leak details: %v", resp)
	}
}

type errBoomHTTP struct{}

func (errBoomHTTP) Error() string { return "boom" }
