package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dbelyakov/invoicekeeper/internal/common"
	"github.com/dbelyakov/invoicekeeper/internal/server/extraction"
	"github.com/dbelyakov/invoicekeeper/internal/server/models"
	"github.com/dbelyakov/invoicekeeper/internal/server/repositories/repomanager"
)

// BlobStore mints presigned URLs for stored invoice documents.
type BlobStore interface {
	GetPresignedPutURL(ctx context.Context) (string, string, error)
	GetPresignedGetURL(ctx context.Context, key string) (string, error)
}

// InvoiceService owns the invoice ledger and its review workflow. Writes are
// gated by an owner-or-admin rule; the privilege check is delegated to the
// user directory.
type InvoiceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	blobstore   BlobStore
	extractor   extraction.Extractor
}

func NewInvoiceService(db *sql.DB, m repomanager.RepositoryManager, store BlobStore, ex extraction.Extractor) *InvoiceService {
	return &InvoiceService{
		db:          db,
		repomanager: m,
		blobstore:   store,
		extractor:   ex,
	}
}

// NewUploadURL mints a fresh storage key and a presigned PUT URL the caller
// uploads the document bytes to. Nothing is recorded in the ledger until
// RecordExtraction is called with the key.
func (s *InvoiceService) NewUploadURL(ctx context.Context) (string, string, error) {
	key, url, err := s.blobstore.GetPresignedPutURL(ctx)
	if err != nil {
		return "", "", fmt.Errorf("error presigning upload: %v", err)
	}
	return key, url, nil
}

// RecordExtraction creates an invoice for an uploaded document. fields may
// cover any subset of the seven extracted attributes; attributes it leaves
// out are stored as NULL. A nil fields runs the configured extractor against
// the stored document instead. The invoice starts unreviewed.
func (s *InvoiceService) RecordExtraction(ctx context.Context, filePath string, ownerID int64, fields *models.ExtractionResult) (*models.Invoice, error) {
	if fields == nil {
		url, err := s.blobstore.GetPresignedGetURL(ctx, filePath)
		if err != nil {
			return nil, fmt.Errorf("error presigning document: %v", err)
		}
		fields, err = s.extractor.Extract(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("error extracting fields: %v", err)
		}
	}

	invoice := &models.Invoice{
		FilePath:        filePath,
		InvoiceNumber:   fields.InvoiceNumber,
		InvoiceDate:     fields.InvoiceDate,
		VendorName:      fields.VendorName,
		TrnVatNumber:    fields.TrnVatNumber,
		BeforeTaxAmount: fields.BeforeTaxAmount,
		TaxAmount:       fields.TaxAmount,
		Total:           fields.Total,
		OwnerID:         ownerID,
	}

	repo := s.repomanager.Invoices(s.db)
	created, err := repo.Create(ctx, invoice)
	if err != nil {
		if errors.Is(err, common.ErrInvalidOwner) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating invoice: %v", err)
	}
	return created, nil
}

// Get returns one invoice, owner-or-admin.
func (s *InvoiceService) Get(ctx context.Context, invoiceID, actor int64) (*models.Invoice, error) {
	return s.authorize(ctx, invoiceID, actor)
}

// ListByOwner returns the owner's invoices in insertion order.
func (s *InvoiceService) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Invoice, error) {
	repo := s.repomanager.Invoices(s.db)
	list, err := repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing invoices: %v", err)
	}
	return list, nil
}

// ListUnreviewedByOwner returns the owner's invoices still awaiting review,
// in insertion order.
func (s *InvoiceService) ListUnreviewedByOwner(ctx context.Context, ownerID int64) ([]*models.Invoice, error) {
	repo := s.repomanager.Invoices(s.db)
	list, err := repo.ListUnreviewedByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing invoices: %v", err)
	}
	return list, nil
}

// UpdateFields corrects extracted values, owner-or-admin. Only the supplied
// attributes change; a nil value clears its column back to NULL. The review
// flag is never touched here.
func (s *InvoiceService) UpdateFields(ctx context.Context, invoiceID int64, changes models.FieldChanges, actor int64) (*models.Invoice, error) {
	if _, err := s.authorize(ctx, invoiceID, actor); err != nil {
		return nil, err
	}

	repo := s.repomanager.Invoices(s.db)
	updated, err := repo.UpdateFields(ctx, invoiceID, changes)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating invoice: %v", err)
	}
	return updated, nil
}

// MarkReviewed latches the invoice as reviewed, owner-or-admin. Repeating
// the call on an already reviewed invoice is a no-op success.
func (s *InvoiceService) MarkReviewed(ctx context.Context, invoiceID, actor int64) (*models.Invoice, error) {
	return s.setReviewed(ctx, invoiceID, actor, true)
}

// ReopenReview moves a reviewed invoice back to unreviewed, owner-or-admin,
// so its fields can be corrected and confirmed again. Idempotent.
func (s *InvoiceService) ReopenReview(ctx context.Context, invoiceID, actor int64) (*models.Invoice, error) {
	return s.setReviewed(ctx, invoiceID, actor, false)
}

// Delete removes an invoice and forgets its ledger entry, owner-or-admin.
// The stored document is left to bucket retention policy.
func (s *InvoiceService) Delete(ctx context.Context, invoiceID, actor int64) error {
	if _, err := s.authorize(ctx, invoiceID, actor); err != nil {
		return err
	}

	repo := s.repomanager.Invoices(s.db)
	if err := repo.Delete(ctx, invoiceID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting invoice: %v", err)
	}
	return nil
}

// DocumentURL mints a presigned GET URL for the invoice's stored document,
// owner-or-admin.
func (s *InvoiceService) DocumentURL(ctx context.Context, invoiceID, actor int64) (string, error) {
	invoice, err := s.authorize(ctx, invoiceID, actor)
	if err != nil {
		return "", err
	}

	url, err := s.blobstore.GetPresignedGetURL(ctx, invoice.FilePath)
	if err != nil {
		return "", fmt.Errorf("error presigning document: %v", err)
	}
	return url, nil
}

func (s *InvoiceService) setReviewed(ctx context.Context, invoiceID, actor int64, reviewed bool) (*models.Invoice, error) {
	if _, err := s.authorize(ctx, invoiceID, actor); err != nil {
		return nil, err
	}

	repo := s.repomanager.Invoices(s.db)
	updated, err := repo.SetReviewed(ctx, invoiceID, reviewed)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating invoice: %v", err)
	}
	return updated, nil
}

// authorize loads the invoice and checks the owner-or-admin rule for actor.
// It returns ErrorNotFound for a missing invoice and ErrorForbidden for an
// actor who is neither the owner nor an admin.
func (s *InvoiceService) authorize(ctx context.Context, invoiceID, actor int64) (*models.Invoice, error) {
	repo := s.repomanager.Invoices(s.db)
	invoice, err := repo.GetByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error getting invoice: %v", err)
	}
	if invoice.OwnerID == actor {
		return invoice, nil
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, actor)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorForbidden
		}
		return nil, fmt.Errorf("error getting user: %v", err)
	}
	if !user.IsAdmin {
		return nil, common.ErrorForbidden
	}
	return invoice, nil
}
