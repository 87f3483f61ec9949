// Package auth provides password hashing and JWT session tokens for the
// HTTP API.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/verdict-finance/verdict/internal/common"
)

const defaultIssuer = "verdict"

// Claims are the JWT claims carried by a session token.
type Claims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

// TokenService signs and validates HMAC-SHA256 session tokens.
type TokenService struct {
	secret []byte
	expiry time.Duration
}

// NewTokenService creates a token service. The secret must be non-empty;
// expiry falls back to 24 hours when non-positive.
func NewTokenService(secret string, expiry time.Duration) (*TokenService, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: auth.jwt_secret", common.ErrMissingConfig)
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &TokenService{secret: []byte(secret), expiry: expiry}, nil
}

// Generate creates a signed session token for the given user.
func (s *TokenService) Generate(userID uuid.UUID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    defaultIssuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
		UserID: userID,
		Email:  email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses a session token and returns its claims. Expired,
// malformed, or foreign-issuer tokens return ErrUnauthorized.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrUnauthorized, err)
	}
	if !token.Valid {
		return nil, common.ErrUnauthorized
	}
	if claims.Issuer != defaultIssuer {
		return nil, fmt.Errorf("%w: invalid issuer %q", common.ErrUnauthorized, claims.Issuer)
	}
	return claims, nil
}
