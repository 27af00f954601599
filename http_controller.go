package auth

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// RegisterAuthRoutes mounts signup, login and verify on app
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Signup, controller.SignupPost).Name("signup.post")
	app.Post(controller.Routes.Login, controller.LoginPost).Name("login.post")
	app.Get(controller.Routes.Verify, controller.Gate, controller.VerifyGet).Name("verify.get")

	return controller
}

type AuthControllerRoutes struct {
	Signup string
	Login  string
	Verify string
}

type AuthController struct {
	Debug      bool
	Logger     Logger
	ContextKey string
	Routes     *AuthControllerRoutes
	Register   *RegisterUserHandler
	Auther     Authenticator
	Gate       fiber.Handler
}

type AuthControllerOption func(*AuthController) *AuthController

// WithControllerLogger sets the controller logger
func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		if logger != nil {
			ac.Logger = logger
		}
		return ac
	}
}

// WithControllerDebug dumps redacted payloads
func WithControllerDebug(debug bool) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Debug = debug
		return ac
	}
}

// WithRegisterHandler sets the signup flow
func WithRegisterHandler(handler *RegisterUserHandler) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Register = handler
		return ac
	}
}

// WithAuthenticator sets the login flow
func WithAuthenticator(auther Authenticator) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Auther = auther
		return ac
	}
}

// WithGate sets the handler guarding the verify route
func WithGate(gate fiber.Handler) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.Gate = gate
		return ac
	}
}

// WithContextKey sets the locals key the gate stores claims under
func WithContextKey(key string) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		ac.ContextKey = key
		return ac
	}
}

// WithRoutes overrides the route paths
func WithRoutes(routes *AuthControllerRoutes) AuthControllerOption {
	return func(ac *AuthController) *AuthController {
		if routes != nil {
			ac.Routes = routes
		}
		return ac
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:     defLogger{},
		ContextKey: DefaultContextKey,
		Routes: &AuthControllerRoutes{
			Signup: "/signup",
			Login:  "/login",
			Verify: "/verify",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Register == nil {
		panic("Missing RegisterUserHandler in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Gate == nil {
		panic("Missing Gate in auth controller...")
	}

	return c
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks both credentials are present
func (r LoginRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
	if err != nil {
		return NewValidationError(FieldFields, MessageMissingLogin)
	}
	return nil
}

// Redacted is safe to log
func (r LoginRequest) Redacted() map[string]any {
	return map[string]any{
		"email":    r.Email,
		"password": "[REDACTED]",
	}
}

// SignupPost creates a pending user
func (a *AuthController) SignupPost(ctx *fiber.Ctx) error {
	payload := new(RegisterUserMessage)
	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Debug("signup body parse failed", "error", err)
		return ErrorResponse(ctx, a.Logger, NewValidationError(FieldFields, MessageMissingFields))
	}

	if a.Debug {
		a.Logger.Debug("signup request", "payload", print.MaybePrettyJSON(payload.Redacted()))
	}

	if err := a.Register.Execute(ctx.UserContext(), *payload); err != nil {
		return ErrorResponse(ctx, a.Logger, err)
	}

	return ctx.Status(fiber.StatusCreated).Send(nil)
}

// LoginPost exchanges credentials for a bearer token
func (a *AuthController) LoginPost(ctx *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Debug("login body parse failed", "error", err)
		return ErrorResponse(ctx, a.Logger, NewValidationError(FieldFields, MessageMissingLogin))
	}

	if a.Debug {
		a.Logger.Debug("login request", "payload", print.MaybePrettyJSON(payload.Redacted()))
	}

	if err := payload.Validate(); err != nil {
		return ErrorResponse(ctx, a.Logger, err)
	}

	token, err := a.Auther.Login(ctx.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return ErrorResponse(ctx, a.Logger, err)
	}

	return ctx.JSON(fiber.Map{"authToken": token})
}

// VerifyGet echoes the claims of the presented token
func (a *AuthController) VerifyGet(ctx *fiber.Ctx) error {
	claims, ok := GetFiberClaims(ctx, a.ContextKey)
	if !ok {
		return ErrorResponse(ctx, a.Logger, tokenError(ErrTokenMissing, nil))
	}

	return ctx.JSON(fiber.Map{"payload": claims})
}
