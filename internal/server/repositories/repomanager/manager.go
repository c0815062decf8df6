package repomanager

import (
	"context"
	"database/sql"

	"github.com/dbelyakov/invoicekeeper/internal/dbx"
	"github.com/dbelyakov/invoicekeeper/internal/server/repositories/invoices"
	"github.com/dbelyakov/invoicekeeper/internal/server/repositories/refreshtokens"
	"github.com/dbelyakov/invoicekeeper/internal/server/repositories/users"
)

// RepositoryManager vends repository implementations bound to a DBTX, so a
// service can run several repositories against the same transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Invoices(db dbx.DBTX) invoices.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
