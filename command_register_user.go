package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
)

// RegisterUserMessage is a candidate registration. The password is
// never persisted or logged.
type RegisterUserMessage struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	PhoneCode   string `json:"phoneCode"`
	PhoneNumber string `json:"phoneNumber"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

func (e RegisterUserMessage) complete() bool {
	return e.Email != "" &&
		e.Password != "" &&
		e.FirstName != "" &&
		e.LastName != "" &&
		e.PhoneCode != "" &&
		e.PhoneNumber != ""
}

// Redacted is safe to log
func (e RegisterUserMessage) Redacted() map[string]any {
	return map[string]any{
		"email":       e.Email,
		"password":    "[REDACTED]",
		"firstName":   e.FirstName,
		"lastName":    e.LastName,
		"phoneCode":   e.PhoneCode,
		"phoneNumber": e.PhoneNumber,
	}
}

// SignupState is a step of the signup flow
type SignupState int

const (
	SignupValidating SignupState = iota
	SignupCheckingEmail
	SignupCheckingName
	SignupCheckingPhone
	SignupHashing
	SignupPersisting
	SignupDone
	SignupRejected
)

func (s SignupState) String() string {
	switch s {
	case SignupValidating:
		return "validating"
	case SignupCheckingEmail:
		return "checking_email"
	case SignupCheckingName:
		return "checking_name"
	case SignupCheckingPhone:
		return "checking_phone"
	case SignupHashing:
		return "hashing"
	case SignupPersisting:
		return "persisting"
	case SignupDone:
		return "done"
	case SignupRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition exists
func (s SignupState) Terminal() bool {
	return s == SignupDone || s == SignupRejected
}

// RegisterUserHandler runs the signup flow
type RegisterUserHandler struct {
	store        IdentityStore
	hasher       PasswordAuthenticator
	validator    RegistrationValidator
	useHashid    bool
	logger       Logger
	provider     LoggerProvider
	activitySink ActivitySink
}

// NewRegisterUserHandler returns a handler persisting to store
func NewRegisterUserHandler(store IdentityStore) *RegisterUserHandler {
	provider, logger := ResolveLogger("auth.register_user", nil, nil)
	return &RegisterUserHandler{
		store:        store,
		hasher:       defaultHasher,
		logger:       logger,
		provider:     provider,
		activitySink: noopActivitySink{},
	}
}

func (h *RegisterUserHandler) WithLogger(l Logger) *RegisterUserHandler {
	h.provider, h.logger = ResolveLogger("auth.register_user", h.provider, l)
	return h
}

// WithLoggerProvider overrides the logger provider used by the handler.
func (h *RegisterUserHandler) WithLoggerProvider(provider LoggerProvider) *RegisterUserHandler {
	h.provider, h.logger = ResolveLogger("auth.register_user", provider, h.logger)
	return h
}

// WithHasher overrides the password hasher
func (h *RegisterUserHandler) WithHasher(hasher PasswordAuthenticator) *RegisterUserHandler {
	if hasher != nil {
		h.hasher = hasher
	}
	return h
}

// WithValidator overrides the input validator
func (h *RegisterUserHandler) WithValidator(v RegistrationValidator) *RegisterUserHandler {
	h.validator = v
	return h
}

// WithHashid derives user ids from the email address
func (h *RegisterUserHandler) WithHashid(enabled bool) *RegisterUserHandler {
	h.useHashid = enabled
	return h
}

// WithActivitySink configures an ActivitySink for emitting signup events.
func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activitySink = normalizeActivitySink(sink)
	return h
}

// Execute registers the candidate. It never retries and sets no
// deadline of its own.
func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	_, err := h.Register(ctx, event)
	return err
}

// Register runs the flow and returns the created record
func (h *RegisterUserHandler) Register(ctx context.Context, event RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
	}

	run := &signupRun{msg: event, state: SignupValidating}
	for !run.state.Terminal() {
		next := h.step(ctx, run)
		h.logger.Debug("signup transition", "from", run.state.String(), "to", next.String())
		run.state = next
	}

	if run.state == SignupRejected {
		h.emit(ctx, ActivityEventSignupFailure, "", run.err)
		return nil, run.err
	}

	h.emit(ctx, ActivityEventSignupSuccess, run.user.ID.String(), nil)
	return run.user, nil
}

type signupRun struct {
	msg       RegisterUserMessage
	state     SignupState
	firstName string
	lastName  string
	hash      string
	user      *User
	err       error
}

func (r *signupRun) reject(err error) SignupState {
	r.err = err
	return SignupRejected
}

func (h *RegisterUserHandler) step(ctx context.Context, run *signupRun) SignupState {
	switch run.state {
	case SignupValidating:
		if err := h.validator.Validate(run.msg); err != nil {
			return run.reject(err)
		}
		run.firstName = NormalizeName(run.msg.FirstName)
		run.lastName = NormalizeName(run.msg.LastName)
		return SignupCheckingEmail

	case SignupCheckingEmail:
		_, err := h.store.FindByEmail(ctx, run.msg.Email)
		return h.checkAbsent(run, err, FieldEmail, SignupCheckingName)

	case SignupCheckingName:
		_, err := h.store.FindByName(ctx, run.firstName, run.lastName)
		return h.checkAbsent(run, err, FieldFullName, SignupCheckingPhone)

	case SignupCheckingPhone:
		_, err := h.store.FindByPhone(ctx, run.msg.PhoneCode, run.msg.PhoneNumber)
		return h.checkAbsent(run, err, FieldPhoneNumber, SignupHashing)

	case SignupHashing:
		hash, err := h.hasher.HashPassword(run.msg.Password)
		if err != nil {
			h.logger.Error("signup failed to hash password", "error", err)
			return run.reject(NewInternalError(err, "failed to hash password"))
		}
		run.hash = hash
		return SignupPersisting

	case SignupPersisting:
		user := &User{
			Email:        run.msg.Email,
			FirstName:    run.firstName,
			LastName:     run.lastName,
			PhoneCode:    run.msg.PhoneCode,
			PhoneNumber:  run.msg.PhoneNumber,
			PasswordHash: run.hash,
			Role:         RolePending,
		}
		if h.useHashid {
			if id, err := hashid.NewUUID(run.msg.Email); err == nil {
				user.ID = id
			}
		}

		created, err := h.store.Insert(ctx, user)
		if err != nil {
			if IsConflictError(err) {
				return run.reject(err)
			}
			h.logger.Error("signup failed to persist user", "error", err)
			return run.reject(NewInternalError(err, "failed to create user"))
		}
		run.user = created
		return SignupDone
	}

	return run.reject(NewInternalError(nil, "invalid signup state "+run.state.String()))
}

// checkAbsent moves to next when the lookup found nothing
func (h *RegisterUserHandler) checkAbsent(run *signupRun, err error, field string, next SignupState) SignupState {
	switch {
	case err == nil:
		return run.reject(NewConflictError(field))
	case IsNotFound(err):
		return next
	default:
		h.logger.Error("signup lookup failed", "field", field, "error", err)
		return run.reject(NewInternalError(err, "failed to check existing users"))
	}
}

func (h *RegisterUserHandler) emit(ctx context.Context, eventType ActivityEventType, userID string, err error) {
	event := ActivityEvent{
		EventType: eventType,
		Actor:     ActorRef{ID: userID, Type: "user"},
		UserID:    userID,
	}
	if err != nil {
		event.Actor = ActorRef{Type: "anonymous"}
		event.Field = ErrorField(err)
		if IsInternalError(err) {
			event.Field = "internal"
		}
	}
	emitActivity(ctx, h.activitySink, h.logger, event)
}
