package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dbelyakov/invoicekeeper/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// Server hosts the HTTP API.
type Server struct {
	address   string
	users     UserServiceInterface
	invoices  InvoiceServiceInterface
	logger    logging.Logger
	jwtSecret []byte
}

func NewServer(a string, l logging.Logger, us UserServiceInterface, is InvoiceServiceInterface, secretKey string) (*Server, error) {
	return &Server{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		invoices:  is,
		jwtSecret: []byte(secretKey),
	}, nil
}

// Handler builds the route table. Exposed separately from Run so tests can
// drive the full mux without a listening socket.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	authMiddleware := NewAuthMiddleware(s.jwtSecret)
	NewUserHandler(s.users, authMiddleware, s.logger).RegisterRoutes(mux)
	NewInvoiceHandler(s.invoices, authMiddleware, s.logger).RegisterRoutes(mux)

	mux.HandleFunc("/health", handleHealth)

	return mux
}

func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{Addr: s.address, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
