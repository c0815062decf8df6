package invoices

import (
	"context"

	"github.com/dbelyakov/invoicekeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error)
	GetByID(ctx context.Context, id int64) (*models.Invoice, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*models.Invoice, error)
	ListUnreviewedByOwner(ctx context.Context, ownerID int64) ([]*models.Invoice, error)
	UpdateFields(ctx context.Context, id int64, changes models.FieldChanges) (*models.Invoice, error)
	SetReviewed(ctx context.Context, id int64, reviewed bool) (*models.Invoice, error)
	Delete(ctx context.Context, id int64) error
}
