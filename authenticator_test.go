package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-attend-auth"
)

func newTestAuthenticator(t *testing.T, store *auth.MemoryUsers) (*auth.Auther, *auth.TokenServiceImpl, *recordingSink) {
	t.Helper()
	tokens, err := auth.NewTokenService([]byte(testSecret), 0)
	require.NoError(t, err)

	sink := &recordingSink{}
	auther := auth.NewAuthenticator(auth.NewUserProvider(store), tokens).
		WithLogger(&captureLogger{}).
		WithActivitySink(sink)
	return auther, tokens, sink
}

func TestAuthenticator_LoginSuccess(t *testing.T) {
	store := auth.NewMemoryUsers()
	user := seedUser(t, store, auth.RoleMember)
	auther, tokens, sink := newTestAuthenticator(t, store)

	token, err := auther.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID())
	assert.Equal(t, testEmail, claims.Email())
	assert.Equal(t, "member", claims.Role())
	assert.WithinDuration(t, time.Now().Add(auth.DefaultTokenExpiration), claims.Expires(), time.Minute)

	assert.Same(t, tokens, auther.TokenService())

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, auth.ActivityEventLoginSuccess, events[0].EventType)
	assert.Equal(t, user.ID.String(), events[0].UserID)
}

func TestAuthenticator_LoginOrder(t *testing.T) {
	tests := []struct {
		name     string
		role     auth.UserRole
		email    string
		password string
		check    func(error) bool
		field    string
	}{
		{"missing email", auth.RoleMember, "", testPassword, auth.IsValidationError, auth.FieldFields},
		{"missing password", auth.RoleMember, testEmail, "", auth.IsValidationError, auth.FieldFields},
		{"unknown email", auth.RoleMember, "nobody@test.com", testPassword, auth.IsAuthenticationError, auth.FieldEmail},
		{"wrong password", auth.RoleMember, testEmail, "Wrong12", auth.IsAuthenticationError, auth.FieldPassword},
		{"wrong password beats pending role", auth.RolePending, testEmail, "Wrong12", auth.IsAuthenticationError, auth.FieldPassword},
		{"pending role", auth.RolePending, testEmail, testPassword, auth.IsAuthenticationError, auth.FieldRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := auth.NewMemoryUsers()
			seedUser(t, store, tt.role)
			auther, _, sink := newTestAuthenticator(t, store)

			token, err := auther.Login(context.Background(), tt.email, tt.password)
			require.Error(t, err)
			assert.Empty(t, token)
			assert.True(t, tt.check(err))
			assert.Equal(t, tt.field, auth.ErrorField(err))

			events := sink.Events()
			require.Len(t, events, 1)
			assert.Equal(t, auth.ActivityEventLoginFailure, events[0].EventType)
			assert.Equal(t, tt.field, events[0].Field)
		})
	}
}

func TestAuthenticator_AdminCanLogin(t *testing.T) {
	store := auth.NewMemoryUsers()
	seedUser(t, store, auth.RoleAdmin)
	auther, tokens, _ := newTestAuthenticator(t, store)

	token, err := auther.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.True(t, claims.HasRole("admin"))
}

func TestAuthenticator_TokenFailureIsInternal(t *testing.T) {
	provider := &MockIdentityProvider{}
	identity := MockIdentity{id: "user-1", email: testEmail, role: "member"}
	provider.On("VerifyIdentity", mock.Anything, testEmail, testPassword).Return(identity, nil)

	tokens := &MockTokenService{}
	tokens.On("GenerateForIdentity", identity).Return("", errors.New("signer broken"))

	sink := &recordingSink{}
	auther := auth.NewAuthenticator(provider, tokens).WithLogger(&captureLogger{}).WithActivitySink(sink)

	_, err := auther.Login(context.Background(), testEmail, testPassword)
	require.Error(t, err)
	assert.True(t, auth.IsInternalError(err))

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, "internal", events[0].Field)
}

func TestAuthenticator_ProviderInternalError(t *testing.T) {
	provider := &MockIdentityProvider{}
	provider.On("VerifyIdentity", mock.Anything, testEmail, testPassword).
		Return(nil, auth.NewInternalError(errors.New("db"), "lookup failed"))

	logger := &captureLogger{}
	auther := auth.NewAuthenticator(provider, &MockTokenService{}).WithLogger(logger)

	_, err := auther.Login(context.Background(), testEmail, testPassword)
	require.Error(t, err)
	assert.True(t, auth.IsInternalError(err))

	var logged bool
	for _, call := range logger.Calls() {
		if call.level == "error" {
			logged = true
		}
	}
	assert.True(t, logged)
}

func TestNewAuthenticatorFromConfig(t *testing.T) {
	store := auth.NewMemoryUsers()
	seedUser(t, store, auth.RoleMember)

	auther, err := auth.NewAuthenticatorFromConfig(auth.NewUserProvider(store), staticConfig{method: "HS256"})
	require.NoError(t, err)

	token, err := auther.Login(context.Background(), testEmail, testPassword)
	require.NoError(t, err)

	claims, err := auther.TokenService().Validate(token)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Hour), claims.Expires(), time.Minute)
}
