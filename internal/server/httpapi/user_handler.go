package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dbelyakov/invoicekeeper/internal/logging"
	"github.com/dbelyakov/invoicekeeper/internal/server/auth"
	"github.com/dbelyakov/invoicekeeper/internal/server/models"
	"github.com/dbelyakov/invoicekeeper/internal/server/services"
)

// UserServiceInterface defines the methods required from the user service.
type UserServiceInterface interface {
	Create(ctx context.Context, email, hashedPassword string, isAdmin bool, actor *int64) (*models.User, error)
	Update(ctx context.Context, id int64, changes services.UserChanges, actor int64) (*models.User, error)
	Delete(ctx context.Context, id int64, actor int64) error
	List(ctx context.Context, actor int64) ([]*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

type UserHandler struct {
	service UserServiceInterface
	auth    *AuthMiddleware
	logger  logging.Logger
}

func NewUserHandler(service UserServiceInterface, auth *AuthMiddleware, logger logging.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		auth:    auth,
		logger:  logger,
	}
}

// Request/Response types
type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type updateUserRequest struct {
	ID       int64   `json:"id"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	IsAdmin  *bool   `json:"is_admin"`
}

type deleteUserRequest struct {
	ID int64 `json:"id"`
}

// userResponse is the wire shape of a directory entry. The password hash
// never leaves the server.
type userResponse struct {
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`

	CreatedBy     *int64     `json:"created_by"`
	CreatedAt     *time.Time `json:"created_at"`
	UpdatedBy     *int64     `json:"updated_by"`
	UpdatedAt     *time.Time `json:"updated_at"`
	LastUpdatedBy *int64     `json:"last_updated_by"`
	LastUpdatedAt *time.Time `json:"last_updated_at"`
}

func toUserResponse(u *models.User) *userResponse {
	return &userResponse{
		ID:            u.ID,
		Email:         u.Email,
		IsAdmin:       u.IsAdmin,
		CreatedBy:     u.CreatedBy,
		CreatedAt:     u.CreatedAt,
		UpdatedBy:     u.UpdatedBy,
		UpdatedAt:     u.UpdatedAt,
		LastUpdatedBy: u.LastUpdatedBy,
		LastUpdatedAt: u.LastUpdatedAt,
	}
}

func toUserResponses(users []*models.User) []*userResponse {
	out := make([]*userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func (h *UserHandler) RegisterRoutes(mux *http.ServeMux) {
	// Public routes (no auth required)
	mux.HandleFunc("/api/users.signup", h.handleSignup)
	mux.HandleFunc("/api/users.login", h.handleLogin)
	mux.HandleFunc("/api/users.refresh", h.handleRefresh)

	// Protected routes (auth required)
	mux.Handle("/api/users.list", h.auth.RequireAuth(h.handleList))
	mux.Handle("/api/users.update", h.auth.RequireAuth(h.handleUpdate))
	mux.Handle("/api/users.delete", h.auth.RequireAuth(h.handleDelete))
}

func (h *UserHandler) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Signup is the one route with optional auth: the very first account
	// is created anonymously, every later one needs an admin token.
	actor, err := h.auth.OptionalUserID(r)
	if err != nil {
		WriteJSONError(w, err.Error(), http.StatusUnauthorized)
		return
	}

	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteJSONError(w, "Missing email or password", http.StatusBadRequest)
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	user, err := h.service.Create(r.Context(), req.Email, hashed, req.IsAdmin, actor)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user": toUserResponse(user),
	})
}

func (h *UserHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteJSONError(w, "Missing email or password", http.StatusBadRequest)
		return
	}

	user, pair, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":          toUserResponse(user),
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *UserHandler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RefreshToken == "" {
		WriteJSONError(w, "Missing refresh token", http.StatusBadRequest)
		return
	}

	pair, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *UserHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	users, err := h.service.List(r.Context(), actor)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": toUserResponses(users),
	})
}

func (h *UserHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == 0 {
		WriteJSONError(w, "Missing ID", http.StatusBadRequest)
		return
	}

	changes := services.UserChanges{
		Email:   req.Email,
		IsAdmin: req.IsAdmin,
	}
	if req.Password != nil {
		hashed, err := auth.HashPassword(*req.Password)
		if err != nil {
			respondError(w, r, h.logger, err)
			return
		}
		changes.HashedPassword = &hashed
	}

	user, err := h.service.Update(r.Context(), req.ID, changes, actor)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": toUserResponse(user),
	})
}

func (h *UserHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteJSONError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor, ok := UserIDFromContext(r.Context())
	if !ok {
		WriteJSONError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req deleteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == 0 {
		WriteJSONError(w, "Missing ID", http.StatusBadRequest)
		return
	}

	if err := h.service.Delete(r.Context(), req.ID, actor); err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}
