package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ClaimSet is what a token asserts about its holder. Never carries
// the password or its hash.
type ClaimSet struct {
	Subject string
	Email   string
	Role    string
}

// ClaimSetFromIdentity builds the claims for a verified identity
func ClaimSetFromIdentity(identity Identity) ClaimSet {
	return ClaimSet{
		Subject: identity.ID(),
		Email:   identity.Email(),
		Role:    identity.Role(),
	}
}

// AuthClaims is the read side of validated token claims
type AuthClaims interface {
	Subject() string
	UserID() string
	Email() string
	Role() string
	HasRole(role string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// JWTClaims is the concrete implementation of AuthClaims
type JWTClaims struct {
	jwt.RegisteredClaims
	UID       string `json:"_id,omitempty"`
	UserEmail string `json:"email,omitempty"`
	UserRole  string `json:"role,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*JWTClaims)(nil)

// Subject returns the subject claim
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *JWTClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// Email returns the email claim
func (c *JWTClaims) Email() string {
	return c.UserEmail
}

// Role returns the global role
func (c *JWTClaims) Role() string {
	return c.UserRole
}

// HasRole is the single role equality check
func (c *JWTClaims) HasRole(role string) bool {
	return UserRole(c.UserRole).Is(role)
}

// ClaimSet returns the application claims carried by the token
func (c *JWTClaims) ClaimSet() ClaimSet {
	return ClaimSet{
		Subject: c.UserID(),
		Email:   c.UserEmail,
		Role:    c.UserRole,
	}
}

// Expires returns the expiration time
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
