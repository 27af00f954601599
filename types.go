package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Logger is the structured logger used across the package.
// Args are key/value pairs.
type Logger interface {
	Debug(message string, args ...any)
	Info(message string, args ...any)
	Warn(message string, args ...any)
	Error(message string, args ...any)
}

// LoggerProvider hands out named loggers
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// ResolveLogger picks a named logger from provider, falling back to
// logger and finally to the default stdout logger.
func ResolveLogger(name string, provider LoggerProvider, logger Logger) (LoggerProvider, Logger) {
	if provider != nil {
		if named := provider.GetLogger(name); named != nil {
			return provider, named
		}
	}
	if logger == nil {
		logger = defLogger{}
	}
	return provider, logger
}

// Identity holds the attributes of an identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetSigningMethod() string
	GetContextKey() string
	GetTokenExpiration() time.Duration
	GetTokenLookup() string
	GetAuthScheme() string
	GetIssuer() string
}

// IdentityStore is the gateway to durable user records.
// Lookups return ErrIdentityNotFound when nothing matches.
// Insert returns a conflict error tagged with the violated
// field, checked in the order email, fullName, phoneNumber.
type IdentityStore interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByName(ctx context.Context, firstName, lastName string) (*User, error)
	FindByPhone(ctx context.Context, code, number string) (*User, error)
	Insert(ctx context.Context, user *User) (*User, error)
}

// RoleUpdater is implemented by stores that allow administrative
// role changes
type RoleUpdater interface {
	UpdateRole(ctx context.Context, id string, role UserRole) (*User, error)
}

// IdentityProvider ensure we have a store to retrieve auth identity
type IdentityProvider interface {
	VerifyIdentity(ctx context.Context, email, password string) (Identity, error)
	FindIdentityByIdentifier(ctx context.Context, email string) (Identity, error)
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// TokenService issues and validates signed bearer tokens
type TokenService interface {
	Issue(claims ClaimSet, ttl time.Duration) (string, error)
	GenerateForIdentity(identity Identity) (string, error)
	Validate(tokenString string) (*JWTClaims, error)
}

// Authenticator holds methods to deal with authentication
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
	TokenService() TokenService
}

type defLogger struct{}

func (d defLogger) Debug(message string, args ...any) {
	fmt.Println("[DBG] AUTH " + formatKV(message, args...))
}

func (d defLogger) Info(message string, args ...any) {
	fmt.Println("[INF] AUTH " + formatKV(message, args...))
}

func (d defLogger) Warn(message string, args ...any) {
	fmt.Println("[WRN] AUTH " + formatKV(message, args...))
}

func (d defLogger) Error(message string, args ...any) {
	fmt.Println("[ERR] AUTH " + formatKV(message, args...))
}

func formatKV(message string, args ...any) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(message, "\n"))
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			fmt.Fprintf(&b, " %v=%v", args[i], args[i+1])
			continue
		}
		fmt.Fprintf(&b, " %v", args[i])
	}
	return b.String()
}
