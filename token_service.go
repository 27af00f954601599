package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenExpiration is seven weeks
const DefaultTokenExpiration = 7 * 7 * 24 * time.Hour

// TokenServiceImpl implements the TokenService interface using HS256
type TokenServiceImpl struct {
	signingKey      []byte
	tokenExpiration time.Duration
	issuer          string
	logger          Logger
	now             func() time.Time
}

// TokenServiceOption configures a TokenServiceImpl
type TokenServiceOption func(*TokenServiceImpl)

// WithTokenClock overrides the clock used to stamp and check tokens
func WithTokenClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithTokenIssuer sets the iss claim and requires it on validation
func WithTokenIssuer(issuer string) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		ts.issuer = issuer
	}
}

// WithTokenLogger sets the logger
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenService creates a new TokenService instance. The signing
// key is required.
func NewTokenService(signingKey []byte, tokenExpiration time.Duration, opts ...TokenServiceOption) (*TokenServiceImpl, error) {
	if len(signingKey) == 0 {
		return nil, ErrMissingSigningKey
	}

	if tokenExpiration <= 0 {
		tokenExpiration = DefaultTokenExpiration
	}

	ts := &TokenServiceImpl{
		signingKey:      append([]byte(nil), signingKey...),
		tokenExpiration: tokenExpiration,
		logger:          defLogger{},
		now:             time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts, nil
}

// NewTokenServiceFromConfig builds the service from a Config
func NewTokenServiceFromConfig(cfg Config, logger Logger) (*TokenServiceImpl, error) {
	if cfg.GetSigningMethod() != "" && cfg.GetSigningMethod() != jwt.SigningMethodHS256.Alg() {
		return nil, NewInternalError(nil, "unsupported signing method "+cfg.GetSigningMethod())
	}
	return NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		WithTokenIssuer(cfg.GetIssuer()),
		WithTokenLogger(logger),
	)
}

var _ TokenService = (*TokenServiceImpl)(nil)

// Issue signs claims with an expiration of now plus ttl
func (ts *TokenServiceImpl) Issue(claims ClaimSet, ttl time.Duration) (string, error) {
	token, _, err := mintToken(ts, claims, MintOptions{TTL: ttl})
	return token, err
}

// GenerateForIdentity issues a token for identity with the default TTL
func (ts *TokenServiceImpl) GenerateForIdentity(identity Identity) (string, error) {
	if identity == nil {
		return "", NewInternalError(nil, "identity is required")
	}
	return ts.Issue(ClaimSetFromIdentity(identity), ts.tokenExpiration)
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", NewInternalError(nil, "claims must not be nil")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", NewInternalError(err, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string. It does not touch
// the identity store.
func (ts *TokenServiceImpl) Validate(tokenString string) (*JWTClaims, error) {
	if tokenString == "" {
		return nil, tokenError(ErrTokenMissing, nil)
	}

	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ts.now),
		jwt.WithExpirationRequired(),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		return nil, ts.normalizeValidationError(err)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode or validate claims")
		return nil, tokenError(ErrTokenMalformed, nil)
	}

	return claims, nil
}

// TokenExpiration is the default TTL
func (ts *TokenServiceImpl) TokenExpiration() time.Duration {
	return ts.tokenExpiration
}

func (ts *TokenServiceImpl) normalizeValidationError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return tokenError(ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		ts.logger.Debug("TokenService rejected token signature", "error", err)
		return tokenError(ErrTokenBadSignature, err)
	default:
		return tokenError(ErrTokenMalformed, err)
	}
}

func (ts *TokenServiceImpl) tokenDefaults() tokenDefaults {
	return tokenDefaults{
		issuer: ts.issuer,
		ttl:    ts.tokenExpiration,
		now:    ts.now,
	}
}
