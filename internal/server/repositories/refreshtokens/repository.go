// Package refreshtokens persists the opaque refresh tokens backing the
// login session rotation.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dbelyakov/invoicekeeper/internal/server/models"
)

// Repository is the storage contract for refresh tokens.
type Repository interface {
	// Create stores token for userID, expiring validity from now.
	Create(ctx context.Context, userID int64, token string, validity time.Duration) error

	// Find returns the row behind an opaque token string, or
	// common.ErrorNotFound when no such token exists.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete revokes a token. Revoking an absent token is a no-op.
	Delete(ctx context.Context, token string) error
}
