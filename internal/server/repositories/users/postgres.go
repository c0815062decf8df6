// Package users provides the PostgreSQL-backed repository for user accounts
// and their audit fields.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dbelyakov/invoicekeeper/internal/common"
	"github.com/dbelyakov/invoicekeeper/internal/dbx"
	"github.com/dbelyakov/invoicekeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.HashedPassword, &user.IsAdmin,
		&user.CreatedBy, &user.CreatedAt,
		&user.UpdatedBy, &user.UpdatedAt,
		&user.LastUpdatedBy, &user.LastUpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Create inserts a new user. Email uniqueness is enforced by the unique
// index, never by a prior existence check, so concurrent inserts of the same
// email cannot both succeed.
func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {

	query :=
		`INSERT INTO users (email, hashed_password, is_admin, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.HashedPassword, user.IsAdmin, user.CreatedBy, user.CreatedAt).Scan(&user.ID)

	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateEmail
		}
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrInvalidOwner
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query :=
		`SELECT id, email, hashed_password, is_admin,
		        created_by, created_at, updated_by, updated_at,
		        last_updated_by, last_updated_at
		 FROM users
		 WHERE id = $1
		 `

	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query :=
		`SELECT id, email, hashed_password, is_admin,
		        created_by, created_at, updated_by, updated_at,
		        last_updated_by, last_updated_at
		 FROM users
		 WHERE email = $1
		 `

	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

// List returns all users in insertion order.
func (r *PostgresRepository) List(ctx context.Context) ([]*models.User, error) {
	query :=
		`SELECT id, email, hashed_password, is_admin,
		        created_by, created_at, updated_by, updated_at,
		        last_updated_by, last_updated_at
		 FROM users
		 ORDER BY id
		 `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites the mutable columns and shifts the previous updater pair
// into last_updated_by/last_updated_at in the same statement. The right-hand
// side of a SET clause reads the pre-update row, so the shift and the
// overwrite are atomic.
func (r *PostgresRepository) Update(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`UPDATE users
		 SET email = $1,
		     hashed_password = $2,
		     is_admin = $3,
		     last_updated_by = updated_by,
		     last_updated_at = updated_at,
		     updated_by = $4,
		     updated_at = $5
		 WHERE id = $6
		 RETURNING id, email, hashed_password, is_admin,
		           created_by, created_at, updated_by, updated_at,
		           last_updated_by, last_updated_at
		 `

	updated, err := scanUser(r.db.QueryRowContext(ctx, query,
		user.Email, user.HashedPassword, user.IsAdmin, user.UpdatedBy, user.UpdatedAt, user.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		if dbx.IsUniqueViolation(err) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return updated, nil
}

// Delete removes a user. Invoices reference their owner with ON DELETE
// RESTRICT, so deleting a user that still owns invoices surfaces
// ErrUserHasInvoices.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return common.ErrUserHasInvoices
		}
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

func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
