package api

import (
	"context"

	"github.com/dbelyakov/invoicekeeper/internal/client/models"
)

// Client is the API contract the CLI operates against. HTTPClient is the
// shipped implementation; tests substitute fakes.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Register(ctx context.Context, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	Logout()

	NewUploadURL(ctx context.Context) (string, string, error)
	CreateInvoice(ctx context.Context, filePath string, fields map[string]*string) (*models.Invoice, error)
	ListInvoices(ctx context.Context, unreviewedOnly bool) ([]*models.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*models.Invoice, error)
	UpdateInvoice(ctx context.Context, id int64, fields map[string]*string) (*models.Invoice, error)
	MarkReviewed(ctx context.Context, id int64) (*models.Invoice, error)
	ReopenReview(ctx context.Context, id int64) (*models.Invoice, error)
	DeleteInvoice(ctx context.Context, id int64) error
	DocumentURL(ctx context.Context, id int64) (string, error)
}
