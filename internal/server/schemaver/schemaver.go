// Package schemaver gates service startup on the applied database schema
// revision. The revision is read once at startup and never consulted by
// request handling.
package schemaver

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dbelyakov/invoicekeeper/internal/common"
	"github.com/pressly/goose/v3"
)

// Expected is the schema revision this binary is built against: the highest
// migration number embedded in internal/server/migrations.
const Expected int64 = 3

// gooseVersion is a seam for testing goose.GetDBVersionContext.
var gooseVersion = func(ctx context.Context, db *sql.DB) (int64, error) {
	return goose.GetDBVersionContext(ctx, db)
}

// Current reads the applied schema revision recorded by the migration tool.
func Current(ctx context.Context, db *sql.DB) (int64, error) {
	v, err := gooseVersion(ctx, db)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

// Check compares the applied schema revision with want and returns
// common.ErrSchemaVersionMismatch when they differ.
func Check(ctx context.Context, db *sql.DB, want int64) error {
	got, err := Current(ctx, db)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: have %d, want %d", common.ErrSchemaVersionMismatch, got, want)
	}
	return nil
}
