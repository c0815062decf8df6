package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// openTestDB opens a per-test in-memory database with a minimal invoices
// table. cache=shared keeps the database visible across pool connections.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE invoices (id INTEGER PRIMARY KEY, vendor TEXT NOT NULL, reviewed INTEGER NOT NULL DEFAULT 0)`)
	require.NoError(t, err)
	return db
}

func insertVendor(ctx context.Context, tx DBTX, vendor string) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO invoices(vendor) VALUES (?)`, vendor)
	return err
}

func invoiceCount(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM invoices`).Scan(&n))
	return n
}

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	db := openTestDB(t)

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return insertVendor(ctx, tx, "Careem")
	})
	require.NoError(t, err)
	require.Equal(t, 1, invoiceCount(t, db))
}

func TestWithTx_RollsBackAllStatementsOnError(t *testing.T) {
	db := openTestDB(t)

	errBoom := errors.New("boom")
	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insertVendor(ctx, tx, "Careem"))
		require.NoError(t, insertVendor(ctx, tx, "Talabat"))
		return errBoom
	})
	require.ErrorIs(t, err, errBoom, "fn error must come back unchanged")
	require.Equal(t, 0, invoiceCount(t, db), "no partial writes may survive")
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	db := openTestDB(t)

	defer func() {
		require.NotNil(t, recover(), "panic must propagate")
		require.Equal(t, 0, invoiceCount(t, db))
	}()

	_ = WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		require.NoError(t, insertVendor(ctx, tx, "Careem"))
		panic("kaput")
	})
}

func TestWithTx_BeginErrorOnClosedDB(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Close())

	err := WithTx(context.Background(), db, nil, func(ctx context.Context, tx DBTX) error {
		return nil
	})
	require.Error(t, err)
}

func TestWithTx_BeginErrorOnCancelledContext(t *testing.T) {
	db := openTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithTx(ctx, db, nil, func(ctx context.Context, tx DBTX) error {
		t.Fatal("fn must not run when begin fails")
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
