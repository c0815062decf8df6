// Package server initializes and runs the invoice management server.
// It connects to PostgreSQL, applies schema migrations, verifies the
// applied schema revision, and starts the HTTP API with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/dbelyakov/invoicekeeper/internal/logging"
	"github.com/dbelyakov/invoicekeeper/internal/server/blobstore"
	"github.com/dbelyakov/invoicekeeper/internal/server/config"
	"github.com/dbelyakov/invoicekeeper/internal/server/extraction"
	"github.com/dbelyakov/invoicekeeper/internal/server/httpapi"
	"github.com/dbelyakov/invoicekeeper/internal/server/repositories/repomanager"
	"github.com/dbelyakov/invoicekeeper/internal/server/schemaver"
	"github.com/dbelyakov/invoicekeeper/internal/server/services"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	userService    *services.UserService
	invoiceService *services.InvoiceService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSON(os.Stdout)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	// Refuse to serve against a schema this binary was not built for.
	if err := schemaver.Check(ctx, db, schemaver.Expected); err != nil {
		return nil, err
	}

	store := blobstore.NewS3Store(blobstore.Config{
		Region:       c.S3Region,
		Bucket:       c.S3Bucket,
		RootUser:     c.S3RootUser,
		RootPassword: c.S3RootPassword,
		BaseEndpoint: c.S3BaseEndpoint,
	})

	us := services.NewUserService(db, m, c)
	is := services.NewInvoiceService(db, m, store, &extraction.NopExtractor{})

	return &App{config: c, logger: logger, db: db, userService: us, invoiceService: is}, nil
}

// Run serves the HTTP API until ctx is cancelled or the listener fails,
// then closes the database. Signal handling belongs to the caller.
func (app *App) Run(ctx context.Context) {

	app.logger.Info(ctx, "Starting app...")

	s, err := httpapi.NewServer(app.config.EndpointAddr, app.logger, app.userService, app.invoiceService, app.config.SecretKey)
	if err != nil {
		app.logger.Error(ctx, err.Error())
	} else if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing database", "error", err.Error())
	}
}
