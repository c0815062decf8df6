// Package services contains server-side business logic. This file implements
// UserService, which owns the user directory (create/update/delete with audit
// metadata), verifies credentials, and issues/refreshes JWTs plus
// server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dbelyakov/invoicekeeper/internal/common"
	"github.com/dbelyakov/invoicekeeper/internal/dbx"
	"github.com/dbelyakov/invoicekeeper/internal/server/auth"
	"github.com/dbelyakov/invoicekeeper/internal/server/config"
	"github.com/dbelyakov/invoicekeeper/internal/server/models"
	"github.com/dbelyakov/invoicekeeper/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserChanges is a sparse update to a directory entry. Nil fields are left
// as they are. HashedPassword arrives already hashed; the directory never
// sees plaintext except in Authenticate.
type UserChanges struct {
	Email          *string
	HashedPassword *string
	IsAdmin        *bool
}

// UserService provides the user directory and authentication operations:
//   - Create/Update/Delete/List: admin-gated directory maintenance with
//     one-deep update history
//   - Authenticate: verify credentials via the bcrypt collaborator
//   - Login: verify credentials and mint tokens
//   - RefreshToken: rotate refresh tokens and mint new access tokens
type UserService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                           db,
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// Create adds a directory entry. While the directory is empty the call is
// open to anyone and the first account is forced to admin with no creating
// actor; afterwards only admins may create users. The password arrives
// already hashed.
func (s *UserService) Create(ctx context.Context, email, hashedPassword string, isAdmin bool, actor *int64) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	count, err := repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting users: %v", err)
	}

	if count == 0 {
		actor = nil
		isAdmin = true
	} else {
		if actor == nil {
			return nil, common.ErrorForbidden
		}
		admin, err := s.IsAdmin(ctx, *actor)
		if err != nil {
			return nil, err
		}
		if !admin {
			return nil, common.ErrorForbidden
		}
	}

	now := time.Now()
	user := &models.User{
		Email:          email,
		HashedPassword: hashedPassword,
		IsAdmin:        isAdmin,
		CreatedBy:      actor,
		CreatedAt:      &now,
	}
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) || errors.Is(err, common.ErrInvalidOwner) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating user: %v", err)
	}
	return u, nil
}

// Update applies the given changes on behalf of actor (admins only) and
// stamps updated_by/updated_at. The repository shifts the previous stamp
// into last_updated_by/last_updated_at in the same statement, so one level
// of update history survives every write.
func (s *UserService) Update(ctx context.Context, id int64, changes UserChanges, actor int64) (*models.User, error) {
	admin, err := s.IsAdmin(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, common.ErrorForbidden
	}

	var updated *models.User
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Users(tx)

		user, err := repoTx.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return err
			}
			return fmt.Errorf("error getting user: %v", err)
		}

		if changes.Email != nil {
			user.Email = *changes.Email
		}
		if changes.HashedPassword != nil {
			user.HashedPassword = *changes.HashedPassword
		}
		if changes.IsAdmin != nil {
			user.IsAdmin = *changes.IsAdmin
		}
		now := time.Now()
		user.UpdatedBy = &actor
		user.UpdatedAt = &now

		updated, err = repoTx.Update(ctx, user)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrDuplicateEmail) {
				return err
			}
			return fmt.Errorf("error updating user: %v", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a directory entry on behalf of actor (admins only). A user
// who still owns invoices cannot be deleted; the call fails with
// ErrUserHasInvoices and nothing changes.
func (s *UserService) Delete(ctx context.Context, id int64, actor int64) error {
	admin, err := s.IsAdmin(ctx, actor)
	if err != nil {
		return err
	}
	if !admin {
		return common.ErrorForbidden
	}

	repo := s.repomanager.Users(s.db)
	if err := repo.Delete(ctx, id); err != nil {
		if errors.Is(err, common.ErrorNotFound) || errors.Is(err, common.ErrUserHasInvoices) {
			return err
		}
		return fmt.Errorf("error deleting user: %v", err)
	}
	return nil
}

// List returns all directory entries in insertion order (admins only).
func (s *UserService) List(ctx context.Context, actor int64) ([]*models.User, error) {
	admin, err := s.IsAdmin(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, common.ErrorForbidden
	}

	repo := s.repomanager.Users(s.db)
	users, err := repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %v", err)
	}
	return users, nil
}

// Authenticate verifies email/password and returns the matching user.
// Unknown email and wrong password both yield ErrInvalidCredentials so the
// response does not reveal whether the account exists.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}
	if !auth.CheckPassword(user.HashedPassword, password) {
		return nil, common.ErrInvalidCredentials
	}
	return user, nil
}

// Login verifies credentials and, on success, returns the user together with
// a fresh TokenPair.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.generateTokenPair(ctx, user.ID, s.db)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh TokenPair. Expired tokens yield ErrRefreshTokenExpired.
func (s *UserService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	repo := s.repomanager.RefreshTokens(s.db)

	token, err := repo.Find(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("error searching refresh token: %v", err)
	}
	if token.Expired(time.Now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var pair *TokenPair
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		if err := repoTx.Delete(ctx, refreshToken); err != nil {
			return fmt.Errorf("error deleting refresh token: %v", err)
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	}); err != nil {
		return nil, err
	}
	return pair, nil
}

// IsAdmin reports whether the given user holds the admin privilege.
func (s *UserService) IsAdmin(ctx context.Context, userID int64) (bool, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, err
		}
		return false, fmt.Errorf("error getting user: %v", err)
	}
	return user.IsAdmin, nil
}

// --- helpers below ---

func (s *UserService) generateAccessToken(userID int64) (string, error) {
	return auth.GenerateToken(userID, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *UserService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *UserService) generateTokenPair(ctx context.Context, userID int64, tx dbx.DBTX) (*TokenPair, error) {
	access, err := s.generateAccessToken(userID)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
