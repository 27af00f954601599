package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// MintOptions controls how a token is issued
type MintOptions struct {
	// TTL overrides the default token expiration. Zero uses TokenService defaults.
	TTL time.Duration
	// Issuer overrides the default issuer if provided.
	Issuer string
	// IssuedAt overrides the issuance time. Zero uses the service clock.
	IssuedAt time.Time
}

type tokenDefaults struct {
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

type claimsSigner interface {
	SignClaims(claims *JWTClaims) (string, error)
	tokenDefaults() tokenDefaults
}

// MintToken issues a token for claims and reports when it expires
func MintToken(ts *TokenServiceImpl, claims ClaimSet, opts MintOptions) (string, time.Time, error) {
	if ts == nil {
		return "", time.Time{}, goerrors.New("token service is required", goerrors.CategoryBadInput)
	}
	return mintToken(ts, claims, opts)
}

func mintToken(signer claimsSigner, claims ClaimSet, opts MintOptions) (string, time.Time, error) {
	defaults := signer.tokenDefaults()

	issuer := opts.Issuer
	if issuer == "" {
		issuer = defaults.issuer
	}

	ttl := opts.TTL
	if ttl == 0 {
		ttl = defaults.ttl
	}

	if ttl < 0 {
		return "", time.Time{}, goerrors.New("token TTL must be non-negative", goerrors.CategoryBadInput)
	}

	issuedAt := opts.IssuedAt
	if issuedAt.IsZero() {
		issuedAt = defaults.now()
	}

	expiresAt := issuedAt.Add(ttl)

	jwtClaims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   claims.Subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		UID:       claims.Subject,
		UserEmail: claims.Email,
		UserRole:  claims.Role,
	}

	ensureTokenID(&jwtClaims.RegisteredClaims)

	token, err := signer.SignClaims(jwtClaims)
	if err != nil {
		return "", time.Time{}, err
	}

	return token, expiresAt, nil
}

func ensureTokenID(claims *jwt.RegisteredClaims) {
	if claims.ID == "" {
		claims.ID = uuid.NewString()
	}
}
