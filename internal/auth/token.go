package auth

import (
	"errors"
	"fmt"

	"storefront/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Claims binds an access token to one stored session.
type Claims struct {
	SessionID string `json:"sid"`
	Email     string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	issuer string
}

func NewTokenManager(secret, issuer string) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("jwt secret cannot be empty")
	}
	return &TokenManager{secret: []byte(secret), issuer: issuer}, nil
}

func (m *TokenManager) Issue(session *domain.Session) (string, error) {
	if !session.Authenticated() || session.ID == "" {
		return "", fmt.Errorf("cannot issue token without a session: %w", domain.ErrValidation)
	}
	claims := Claims{
		SessionID: session.ID,
		Email:     session.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UserID,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies signature, issuer and expiry. Every failure is reported as
// domain.ErrNotAuthenticated.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid access token: %v: %w", err, domain.ErrNotAuthenticated)
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return nil, fmt.Errorf("access token without session: %w", domain.ErrNotAuthenticated)
	}
	return claims, nil
}
