package auth

import (
	"context"
	"reflect"
)

type Auther struct {
	provider     IdentityProvider
	logger       Logger
	loggerProv   LoggerProvider
	tokenService TokenService
	activitySink ActivitySink
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator that issues tokens with
// tokenService
func NewAuthenticator(provider IdentityProvider, tokenService TokenService) *Auther {
	loggerProvider, logger := ResolveLogger("auth.authenticator", nil, nil)
	return &Auther{
		provider:     provider,
		logger:       logger,
		loggerProv:   loggerProvider,
		tokenService: tokenService,
		activitySink: noopActivitySink{},
	}
}

// NewAuthenticatorFromConfig builds the token service from opts
func NewAuthenticatorFromConfig(provider IdentityProvider, opts Config) (*Auther, error) {
	tokenService, err := NewTokenServiceFromConfig(opts, nil)
	if err != nil {
		return nil, err
	}
	return NewAuthenticator(provider, tokenService), nil
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	s.loggerProv, s.logger = ResolveLogger("auth.authenticator", s.loggerProv, logger)
	return s
}

// WithLoggerProvider overrides the logger provider used by the authenticator.
func (s *Auther) WithLoggerProvider(provider LoggerProvider) *Auther {
	s.loggerProv, s.logger = ResolveLogger("auth.authenticator", provider, s.logger)
	return s
}

// WithActivitySink configures an ActivitySink for emitting auth events.
func (s *Auther) WithActivitySink(sink ActivitySink) *Auther {
	s.activitySink = normalizeActivitySink(sink)
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login checks the credentials and role and returns a signed token.
// No server side session is kept.
func (s *Auther) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		err := NewValidationError(FieldFields, MessageMissingLogin)
		s.emitLoginFailure(ctx, "", err)
		return "", err
	}

	identity, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		if IsInternalError(err) {
			s.logger.Error("Login verify identity error", "error", err)
		} else {
			s.logger.Debug("Login rejected", "field", ErrorField(err))
		}
		s.emitLoginFailure(ctx, "", err)
		return "", err
	}

	if identity == nil || reflect.ValueOf(identity).IsZero() {
		s.logger.Error("Login identity is nil or zero value")
		err := NewAuthenticationError(FieldEmail, MessageUnknownEmail)
		s.emitLoginFailure(ctx, "", err)
		return "", err
	}

	if !UserRole(identity.Role()).CanLogin() {
		err := NewAuthenticationError(FieldRole, MessagePendingRole)
		s.logger.Debug("Login blocked due to role", "user_id", identity.ID(), "role", identity.Role())
		s.emitLoginFailure(ctx, identity.ID(), err)
		return "", err
	}

	token, err := s.tokenService.GenerateForIdentity(identity)
	if err != nil {
		s.logger.Error("Login failed to sign token", "error", err)
		err = NewInternalError(err, "failed to issue token")
		s.emitLoginFailure(ctx, identity.ID(), err)
		return "", err
	}

	emitActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType: ActivityEventLoginSuccess,
		Actor:     ActorRef{ID: identity.ID(), Type: "user"},
		UserID:    identity.ID(),
	})

	return token, nil
}

func (s *Auther) emitLoginFailure(ctx context.Context, userID string, err error) {
	actor := ActorRef{Type: "unknown"}
	if userID != "" {
		actor = ActorRef{ID: userID, Type: "user"}
	}
	field := ErrorField(err)
	if IsInternalError(err) {
		field = "internal"
	}
	emitActivity(ctx, s.activitySink, s.logger, ActivityEvent{
		EventType: ActivityEventLoginFailure,
		Actor:     actor,
		UserID:    userID,
		Field:     field,
	})
}
