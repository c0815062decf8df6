package auth

import (
	"errors"
	"time"

	"github.com/dbelyakov/invoicekeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims carries the registered JWT claims plus the authenticated user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64
}

// GenerateToken mints an HS256 token for userID that expires after
// validityDuration.
func GenerateToken(userID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(validityDuration)),
		},
		UserID: userID,
	})
	return token.SignedString(secretKey)
}

// GetUserIDFromToken verifies tokenString against secretKey and returns the
// embedded user id. Only HS256 is accepted. Expiry maps to
// common.ErrTokenExpired; any other problem (bad signature, wrong algorithm,
// malformed input) maps to common.ErrInvalidToken.
func GetUserIDFromToken(tokenString string, secretKey []byte) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) { return secretKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, common.ErrTokenExpired
		}
		return 0, common.ErrInvalidToken
	}
	if !token.Valid {
		return 0, common.ErrInvalidToken
	}

	return claims.UserID, nil
}
