package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-attend-auth"
)

type validatorStub struct {
	calls  int
	claims *auth.JWTClaims
	err    error
}

func (v *validatorStub) Validate(tokenString string) (*auth.JWTClaims, error) {
	v.calls++
	return v.claims, v.err
}

func TestMultiTokenValidator_UsesFirstSuccess(t *testing.T) {
	claims := &auth.JWTClaims{}
	primary := &validatorStub{claims: claims}
	secondary := &validatorStub{claims: &auth.JWTClaims{}}

	validator := auth.NewMultiTokenValidator(primary, nil, secondary)

	result, err := validator.Validate("token")
	require.NoError(t, err)
	assert.Same(t, claims, result)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestMultiTokenValidator_FallsBackOnBadSignature(t *testing.T) {
	claims := &auth.JWTClaims{}
	primary := &validatorStub{err: auth.ErrTokenBadSignature.Clone()}
	secondary := &validatorStub{claims: claims}

	result, err := auth.NewMultiTokenValidator(primary, secondary).Validate("token")
	require.NoError(t, err)
	assert.Same(t, claims, result)
	assert.Equal(t, 1, secondary.calls)
}

func TestMultiTokenValidator_StopsOnOtherRejections(t *testing.T) {
	primary := &validatorStub{err: auth.ErrTokenExpired.Clone()}
	secondary := &validatorStub{claims: &auth.JWTClaims{}}

	_, err := auth.NewMultiTokenValidator(primary, secondary).Validate("token")
	require.Error(t, err)
	assert.True(t, auth.IsTokenExpiredError(err))
	assert.Equal(t, 0, secondary.calls)
}

func TestMultiTokenValidator_AllBadSignatures(t *testing.T) {
	primary := &validatorStub{err: auth.ErrTokenBadSignature.Clone()}
	secondary := &validatorStub{err: auth.ErrTokenBadSignature.Clone()}

	_, err := auth.NewMultiTokenValidator(primary, secondary).Validate("token")
	require.Error(t, err)
	assert.True(t, auth.IsBadSignatureError(err))
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestMultiTokenValidator_EmptyValidators(t *testing.T) {
	_, err := auth.NewMultiTokenValidator().Validate("token")
	require.Error(t, err)
	assert.True(t, auth.IsMalformedError(err))
}

func TestMultiTokenValidator_SecretRotation(t *testing.T) {
	oldTokens, err := auth.NewTokenService([]byte("old-secret"), 0)
	require.NoError(t, err)
	newTokens, err := auth.NewTokenService([]byte(testSecret), 0)
	require.NoError(t, err)

	legacy, err := oldTokens.Issue(testClaims(), 0)
	require.NoError(t, err)
	current, err := newTokens.Issue(testClaims(), 0)
	require.NoError(t, err)

	validator := auth.NewMultiTokenValidator(newTokens, oldTokens)

	claims, err := validator.Validate(legacy)
	require.NoError(t, err)
	assert.Equal(t, testClaims().Subject, claims.UserID())

	_, err = validator.Validate(current)
	require.NoError(t, err)

	strangers, err := auth.NewTokenService([]byte("someone-else"), 0)
	require.NoError(t, err)
	foreign, err := strangers.Issue(testClaims(), 0)
	require.NoError(t, err)

	_, err = validator.Validate(foreign)
	assert.True(t, auth.IsBadSignatureError(err))
}

func TestTokenValidatorFunc_Nil(t *testing.T) {
	var fn auth.TokenValidatorFunc
	_, err := fn.Validate("token")
	assert.True(t, auth.IsMalformedError(err))

	fn = func(string) (*auth.JWTClaims, error) { return &auth.JWTClaims{UserRole: "admin"}, nil }
	claims, err := fn.Validate("token")
	require.NoError(t, err)
	assert.True(t, claims.HasRole("admin"))
}
