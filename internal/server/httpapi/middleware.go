package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dbelyakov/invoicekeeper/internal/common"
	"github.com/dbelyakov/invoicekeeper/internal/server/auth"
)

type ctxKey string

const userIDKey ctxKey = "userID"

// AuthMiddleware validates the bearer access tokens minted by the user
// service.
type AuthMiddleware struct {
	jwtSecret []byte
}

func NewAuthMiddleware(jwtSecret []byte) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

// RequireAuth wraps a handler and rejects requests that do not carry a
// valid access token. The authenticated user id is stored in the request
// context, see UserIDFromContext.
func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := m.userIDFromRequest(r)
		if err != nil {
			WriteJSONError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next(w, r.WithContext(ctx))
	}
}

// OptionalUserID resolves the caller when a bearer token is present.
// Requests without an Authorization header get a nil actor; a header
// carrying a bad token is still an error.
func (m *AuthMiddleware) OptionalUserID(r *http.Request) (*int64, error) {
	if r.Header.Get(common.AuthorizationHeaderName) == "" {
		return nil, nil
	}
	userID, err := m.userIDFromRequest(r)
	if err != nil {
		return nil, err
	}
	return &userID, nil
}

func (m *AuthMiddleware) userIDFromRequest(r *http.Request) (int64, error) {
	header := r.Header.Get(common.AuthorizationHeaderName)
	if header == "" {
		return 0, common.ErrorUnauthorized
	}

	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0]+" " != common.BearerSchemePrefix {
		return 0, common.ErrInvalidToken
	}

	return auth.GetUserIDFromToken(parts[1], m.jwtSecret)
}

// UserIDFromContext returns the user id stored by RequireAuth.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(userIDKey).(int64)
	return userID, ok
}
