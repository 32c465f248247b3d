// Package auth handles token issuance and verification. Tokens are HS256
// JWTs carrying the caller's identity and role; once verified they resolve
// into a Principal, the single identity type the rest of the server trusts.
package auth

import (
	"time"

	"github.com/civicfix/portal-server/internal/apperr"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles known to the portal.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Principal is an authenticated caller.
type Principal struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  string
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// RequireRole is the single authorization check used by the lifecycle engine
// and the admin-only query operations.
func RequireRole(p Principal, role string) error {
	if p.Role != role {
		return apperr.New(apperr.Authorization, "admin access required")
	}
	return nil
}

// Claims is the JWT payload: registered claims plus the principal fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// GenerateToken signs a token for p valid for ttl.
func GenerateToken(p Principal, secret []byte, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		},
		UserID: p.ID.String(),
		Name:   p.Name,
		Email:  p.Email,
		Role:   p.Role,
	})

	return token.SignedString(secret)
}

// ParseToken verifies tokenString and returns the Principal it carries.
func ParseToken(tokenString string, secret []byte) (Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Principal{}, apperr.Wrap(apperr.Authentication, "invalid or expired token", err)
	}
	if !token.Valid {
		return Principal{}, apperr.New(apperr.Authentication, "invalid or expired token")
	}

	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Principal{}, apperr.Wrap(apperr.Authentication, "malformed token subject", err)
	}

	return Principal{ID: id, Name: claims.Name, Email: claims.Email, Role: claims.Role}, nil
}
