// Package refreshtokens provides the PostgreSQL-backed repository for the
// server-side half of the refresh token flow.
package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dbelyakov/invoicekeeper/internal/common"
	"github.com/dbelyakov/invoicekeeper/internal/dbx"
	"github.com/dbelyakov/invoicekeeper/internal/server/models"
)

// timeNow is a seam for tests that need a deterministic expiry.
var timeNow = time.Now

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores token for userID, valid until now+validity.
func (r *PostgresRepository) Create(ctx context.Context, userID int64, token string, validity time.Duration) error {
	query :=
		`INSERT INTO refresh_tokens (user_id, token, expires_at)
		 VALUES ($1, $2, $3)
		 `

	if _, err := r.db.ExecContext(ctx, query, userID, token, timeNow().Add(validity)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Find returns the stored row for the given token string, or
// common.ErrorNotFound when the token is absent.
func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	query :=
		`SELECT id, user_id, expires_at, created_at
		 FROM refresh_tokens
		 WHERE token = $1
		 `

	rt := &models.RefreshToken{Token: token}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&rt.ID, &rt.UserID, &rt.Expires, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rt, nil
}

// Delete revokes a token. Deleting an absent token is not an error.
func (r *PostgresRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE token = $1`, token); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
