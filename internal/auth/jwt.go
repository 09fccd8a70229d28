// Package auth issues and validates the bearer tokens of API clients.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/heartmarshall/ingrid-backend/pkg/ctxutil"
)

// ErrInvalidRole is returned for tokens whose role is not a client role.
var ErrInvalidRole = errors.New("invalid role")

// JWTManager signs and validates HS256 client tokens. Clients are named
// services (the chat bot, an operator CLI) rather than end users.
type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewJWTManager creates a new JWT manager.
// secret must be at least 32 characters for HS256 security.
func NewJWTManager(secret string, issuer string, ttl time.Duration) *JWTManager {
	return &JWTManager{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// clientClaims extends standard JWT claims with the client's role.
type clientClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// ValidRole reports whether role can be carried by a client token.
func ValidRole(role string) bool {
	return role == ctxutil.RoleService || role == ctxutil.RoleAdmin
}

// GenerateToken creates a signed token with subject as the client name.
func (m *JWTManager) GenerateToken(subject, role string) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("subject is empty")
	}
	if !ValidRole(role) {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}

	now := time.Now()
	claims := clientClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   subject,
			Issuer:    m.issuer,
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Role: role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a client token.
// Returns the subject and role if valid.
func (m *JWTManager) ValidateToken(tokenString string) (string, string, error) {
	if tokenString == "" {
		return "", "", fmt.Errorf("token is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &clientClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(m.issuer), jwt.WithExpirationRequired())
	if err != nil {
		return "", "", fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*clientClaims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("invalid token claims")
	}
	if claims.Subject == "" {
		return "", "", fmt.Errorf("token has no subject")
	}
	if !ValidRole(claims.Role) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRole, claims.Role)
	}

	return claims.Subject, claims.Role, nil
}
