package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/goliatone/go-attend-auth/middleware/jwtware"
)

// MessageInternal is the only detail clients see for internal failures
const MessageInternal = "Internal server error"

// RouteAuthenticator builds the bearer token gate for protected routes
type RouteAuthenticator struct {
	cfg          Config
	validator    TokenValidator
	activitySink ActivitySink
	Logger       Logger
	ErrorHandler fiber.ErrorHandler
}

// NewHTTPAuthenticator returns a gate that validates tokens with validator
func NewHTTPAuthenticator(validator TokenValidator, cfg Config) (*RouteAuthenticator, error) {
	if validator == nil {
		return nil, errors.New("token validator is required")
	}

	a := &RouteAuthenticator{
		cfg:          cfg,
		validator:    validator,
		activitySink: noopActivitySink{},
		Logger:       defLogger{},
	}
	a.ErrorHandler = a.defaultAuthErrHandler

	return a, nil
}

// WithActivitySink records token rejections
func (a *RouteAuthenticator) WithActivitySink(sink ActivitySink) *RouteAuthenticator {
	a.activitySink = normalizeActivitySink(sink)
	return a
}

// ProtectedRoute rejects requests without a valid bearer token and
// stores the claims under the configured context key
func (a *RouteAuthenticator) ProtectedRoute(listeners ...ValidationListener) fiber.Handler {
	cfg := jwtware.Config{
		TokenValidator:  JWTWareValidator(a.validator),
		ErrorHandler:    a.ErrorHandler,
		ContextEnricher: ContextEnricherAdapter,
	}

	if a.cfg != nil {
		cfg.AuthScheme = a.cfg.GetAuthScheme()
		cfg.ContextKey = a.cfg.GetContextKey()
		cfg.TokenLookup = a.cfg.GetTokenLookup()
	}

	RegisterValidationListeners(&cfg, listeners...)

	return jwtware.New(cfg)
}

func (a *RouteAuthenticator) defaultAuthErrHandler(c *fiber.Ctx, err error) error {
	err = gateError(err)

	var richErr *goerrors.Error
	if !errors.As(err, &richErr) {
		richErr = tokenError(ErrTokenMalformed, err)
	}

	a.Logger.Info(
		"Authentication error",
		"error", richErr.Message,
		"text_code", richErr.TextCode,
		"path", c.OriginalURL(),
	)

	emitActivity(c.UserContext(), a.activitySink, a.Logger, ActivityEvent{
		EventType: ActivityEventTokenRejected,
		Actor:     ActorRef{Type: "anonymous"},
		Field:     richErr.TextCode,
	})

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"errorCode":    richErr.TextCode,
		"errorMessage": richErr.Message,
	})
}

// ErrorResponse writes the JSON body for a flow error. Internal
// failures are logged in full and reported without detail.
func ErrorResponse(c *fiber.Ctx, logger Logger, err error) error {
	var richErr *goerrors.Error
	if !errors.As(err, &richErr) {
		richErr = NewInternalError(err, MessageInternal)
	}

	switch {
	case IsValidationError(richErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errorMessage": richErr.Message,
		})
	case IsConflictError(richErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errorField":   ErrorField(richErr),
			"errorMessage": richErr.Message,
		})
	case IsAuthenticationError(richErr):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"errorField":   ErrorField(richErr),
			"errorMessage": richErr.Message,
		})
	case IsTokenError(richErr):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"errorCode":    richErr.TextCode,
			"errorMessage": richErr.Message,
		})
	}

	if logger != nil {
		logger.Error(
			"Request failed",
			"error", err,
			"path", c.OriginalURL(),
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"errorMessage": MessageInternal,
	})
}

// FiberErrorHandler is an app level handler that keeps fiber errors
// (404, 405) and hides everything else behind ErrorResponse
func FiberErrorHandler(logger Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"errorMessage": fiberErr.Message,
			})
		}
		return ErrorResponse(c, logger, err)
	}
}
