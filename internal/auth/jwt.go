// Package auth issues and validates the HS256 access tokens used by the
// REST API. A token carries the user id as subject and the user's authority
// set as a custom claim, so request handling never touches the database to
// establish identity.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brunovale/catalog-backend/internal/domain"
)

// Identity is the authenticated principal extracted from a valid token.
type Identity struct {
	UserID      int64
	Authorities []string
}

// HasAuthority reports whether the identity carries the given authority.
func (i Identity) HasAuthority(authority string) bool {
	for _, a := range i.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

// JWTManager handles access token generation and validation.
type JWTManager struct {
	secret    []byte
	issuer    string
	accessTTL time.Duration

	now func() time.Time
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, accessTTL time.Duration) *JWTManager {
	return &JWTManager{
		secret:    []byte(secret),
		issuer:    issuer,
		accessTTL: accessTTL,
		now:       time.Now,
	}
}

// accessClaims extends standard JWT claims with the user's authorities.
type accessClaims struct {
	jwt.RegisteredClaims
	Authorities []string `json:"authorities,omitempty"`
}

// GenerateAccessToken creates a signed HS256 JWT with the user id as subject
// and the authority set as a custom claim.
func (m *JWTManager) GenerateAccessToken(userID int64, authorities []string) (string, error) {
	now := m.now()
	claims := accessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Authorities: authorities,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ValidateAccessToken parses and validates an access token. Any parse,
// signature, expiry or issuer failure comes back wrapping
// domain.ErrInvalidToken.
func (m *JWTManager) ValidateAccessToken(tokenString string) (Identity, error) {
	if tokenString == "" {
		return Identity{}, fmt.Errorf("empty token: %w", domain.ErrInvalidToken)
	}

	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return m.now() }))
	if err != nil {
		return Identity{}, fmt.Errorf("parse token: %w", errors.Join(err, domain.ErrInvalidToken))
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || !token.Valid {
		return Identity{}, fmt.Errorf("invalid token claims: %w", domain.ErrInvalidToken)
	}

	if claims.Issuer != m.issuer {
		return Identity{}, fmt.Errorf("issuer %q: %w", claims.Issuer, domain.ErrInvalidToken)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return Identity{}, fmt.Errorf("subject %q: %w", claims.Subject, domain.ErrInvalidToken)
	}

	return Identity{UserID: userID, Authorities: claims.Authorities}, nil
}
