// Package invoices provides the PostgreSQL-backed repository for invoice
// records: extraction results, review state and ownership.
//
// Unlike the fixed-shape user queries, invoice corrections touch an
// arbitrary subset of the extracted columns, so this package builds its
// statements with squirrel instead of hand-written SQL.
package invoices

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/dbelyakov/invoicekeeper/internal/common"
	"github.com/dbelyakov/invoicekeeper/internal/dbx"
	"github.com/dbelyakov/invoicekeeper/internal/server/models"
)

// psql is a squirrel StatementBuilder configured for PostgreSQL placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

var invoiceColumns = []string{
	"id", "file_path",
	"invoice_number", "invoice_date", "vendor_name", "trn_vat_number",
	"before_tax_amount", "tax_amount", "total",
	"reviewed", "owner_id",
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(
		&inv.ID, &inv.FilePath,
		&inv.InvoiceNumber, &inv.InvoiceDate, &inv.VendorName, &inv.TrnVatNumber,
		&inv.BeforeTaxAmount, &inv.TaxAmount, &inv.Total,
		&inv.Reviewed, &inv.OwnerID,
	)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

// Create inserts a new invoice row. Extracted fields that are nil are stored
// as NULL, never as empty strings. A dangling owner reference surfaces as
// ErrInvalidOwner via the foreign key.
func (r *PostgresRepository) Create(ctx context.Context, invoice *models.Invoice) (*models.Invoice, error) {
	query, args, err := psql.
		Insert("invoices").
		Columns(
			"file_path",
			"invoice_number", "invoice_date", "vendor_name", "trn_vat_number",
			"before_tax_amount", "tax_amount", "total",
			"reviewed", "owner_id",
		).
		Values(
			invoice.FilePath,
			invoice.InvoiceNumber, invoice.InvoiceDate, invoice.VendorName, invoice.TrnVatNumber,
			invoice.BeforeTaxAmount, invoice.TaxAmount, invoice.Total,
			invoice.Reviewed, invoice.OwnerID,
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&invoice.ID); err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrInvalidOwner
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return invoice, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Invoice, error) {
	query, args, err := psql.
		Select(invoiceColumns...).
		From("invoices").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return inv, nil
}

// ListByOwner returns the owner's invoices in insertion order.
func (r *PostgresRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*models.Invoice, error) {
	return r.list(ctx, sq.Eq{"owner_id": ownerID})
}

// ListUnreviewedByOwner returns the owner's invoices still waiting for
// review, in insertion order.
func (r *PostgresRepository) ListUnreviewedByOwner(ctx context.Context, ownerID int64) ([]*models.Invoice, error) {
	return r.list(ctx, sq.Eq{"owner_id": ownerID, "reviewed": false})
}

func (r *PostgresRepository) list(ctx context.Context, where sq.Eq) ([]*models.Invoice, error) {
	query, args, err := psql.
		Select(invoiceColumns...).
		From("invoices").
		Where(where).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateFields applies a sparse set of corrections in one statement, so two
// concurrent corrections never interleave per column. Columns absent from
// changes keep their value; nil values become NULL. The set of keys must be
// non-empty and is iterated in schema order to keep the statement
// deterministic.
func (r *PostgresRepository) UpdateFields(ctx context.Context, id int64, changes models.FieldChanges) (*models.Invoice, error) {
	if len(changes) == 0 {
		return nil, errors.New("no field changes")
	}

	builder := psql.Update("invoices")
	for _, field := range models.ExtractedFieldNames() {
		if value, ok := changes[field]; ok {
			builder = builder.Set(string(field), value)
		}
	}
	query, args, err := builder.
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(invoiceColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return inv, nil
}

// SetReviewed flips the review latch. Setting the current value again is a
// plain no-op update, which keeps review confirmation idempotent.
func (r *PostgresRepository) SetReviewed(ctx context.Context, id int64, reviewed bool) (*models.Invoice, error) {
	query, args, err := psql.
		Update("invoices").
		Set("reviewed", reviewed).
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(invoiceColumns, ", ")).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	inv, err := scanInvoice(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return inv, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.
		Delete("invoices").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
