package auth

import (
	"context"
)

// UserProvider resolves identities from the store and checks credentials
type UserProvider struct {
	store    IdentityStore
	hasher   PasswordAuthenticator
	logger   Logger
	provider LoggerProvider
}

var _ IdentityProvider = (*UserProvider)(nil)

// NewUserProvider will create a new UserProvider
func NewUserProvider(store IdentityStore) *UserProvider {
	loggerProvider, logger := ResolveLogger("auth.user_provider", nil, nil)
	return &UserProvider{
		store:    store,
		hasher:   defaultHasher,
		logger:   logger,
		provider: loggerProvider,
	}
}

func (u *UserProvider) WithLogger(l Logger) *UserProvider {
	u.provider, u.logger = ResolveLogger("auth.user_provider", u.provider, l)
	return u
}

// WithLoggerProvider overrides the logger provider used by the user provider.
func (u *UserProvider) WithLoggerProvider(provider LoggerProvider) *UserProvider {
	u.provider, u.logger = ResolveLogger("auth.user_provider", provider, u.logger)
	return u
}

// WithHasher overrides the password hasher
func (u *UserProvider) WithHasher(hasher PasswordAuthenticator) *UserProvider {
	if hasher != nil {
		u.hasher = hasher
	}
	return u
}

// VerifyIdentity will find the user, compare to the password, and return identity.
// Role policy is left to the caller.
func (u *UserProvider) VerifyIdentity(ctx context.Context, email, password string) (Identity, error) {
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil {
		if IsNotFound(err) {
			return nil, NewAuthenticationError(FieldEmail, MessageUnknownEmail)
		}
		return nil, NewInternalError(err, "failed to retrieve user during verification")
	}

	ok, err := verifyWith(u.hasher, password, user.PasswordHash)
	if err != nil {
		u.logger.Error("password verification failed", "user_id", user.ID.String(), "error", err)
		return nil, NewInternalError(err, "failed to verify password")
	}

	if !ok {
		return nil, NewAuthenticationError(FieldPassword, MessageInvalidPassword)
	}

	return NewIdentityFromUser(user), nil
}

// FindIdentityByIdentifier returns the identity registered with email
func (u *UserProvider) FindIdentityByIdentifier(ctx context.Context, email string) (Identity, error) {
	user, err := u.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return NewIdentityFromUser(user), nil
}
