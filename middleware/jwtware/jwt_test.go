package jwtware_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-attend-auth/middleware/jwtware"
)

var errBadToken = errors.New("bad token")

type testClaims struct {
	sub  string
	role string
}

func (c testClaims) Subject() string          { return c.sub }
func (c testClaims) UserID() string           { return c.sub }
func (c testClaims) Role() string             { return c.role }
func (c testClaims) HasRole(role string) bool { return c.role == role }

// accepts only the literal "good-token"
func stubValidator() jwtware.TokenValidator {
	return jwtware.TokenValidatorFunc(func(token string) (jwtware.AuthClaims, error) {
		if token != "good-token" {
			return nil, errBadToken
		}
		return testClaims{sub: "user-1", role: "member"}, nil
	})
}

type ctxKey struct{}

func newApp(cfg jwtware.Config, seen *error) *fiber.App {
	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = func(c *fiber.Ctx, err error) error {
			*seen = err
			return c.Status(fiber.StatusUnauthorized).SendString(err.Error())
		}
	}
	app := fiber.New()
	app.Get("/protected", jwtware.New(cfg), func(c *fiber.Ctx) error {
		claims, ok := c.Locals("user").(jwtware.AuthClaims)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendString(claims.UserID())
	})
	return app
}

func doGet(t *testing.T, app *fiber.App, target, authorization string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authorization != "" {
		req.Header.Set(fiber.HeaderAuthorization, authorization)
	}
	res, err := app.Test(req)
	require.NoError(t, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return res.StatusCode, string(body)
}

func TestJWTWare_BasicHeaderExtraction(t *testing.T) {
	var seen error
	app := newApp(jwtware.Config{TokenValidator: stubValidator()}, &seen)

	status, body := doGet(t, app, "/protected", "Bearer good-token")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user-1", body)
	assert.NoError(t, seen)
}

func TestJWTWare_MissingHeader(t *testing.T) {
	var seen error
	app := newApp(jwtware.Config{TokenValidator: stubValidator()}, &seen)

	status, _ := doGet(t, app, "/protected", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.ErrorIs(t, seen, jwtware.ErrJWTMissing)
}

func TestJWTWare_MalformedHeader(t *testing.T) {
	cases := map[string]string{
		"wrong scheme":   "Basic good-token",
		"scheme only":    "Bearer",
		"empty token":    "Bearer    ",
		"no separator":   "Bearergood-token",
		"raw token only": "good-token",
	}

	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			var seen error
			app := newApp(jwtware.Config{TokenValidator: stubValidator()}, &seen)

			status, _ := doGet(t, app, "/protected", header)
			assert.Equal(t, fiber.StatusUnauthorized, status)
			assert.ErrorIs(t, seen, jwtware.ErrJWTMalformed)
		})
	}
}

func TestJWTWare_SchemeIsCaseInsensitive(t *testing.T) {
	var seen error
	app := newApp(jwtware.Config{TokenValidator: stubValidator()}, &seen)

	status, _ := doGet(t, app, "/protected", "bearer good-token")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestJWTWare_ValidatorErrorIsForwarded(t *testing.T) {
	var seen error
	app := newApp(jwtware.Config{TokenValidator: stubValidator()}, &seen)

	status, _ := doGet(t, app, "/protected", "Bearer other-token")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.ErrorIs(t, seen, errBadToken)
}

func TestJWTWare_QueryAndCookieLookup(t *testing.T) {
	var seen error
	app := newApp(jwtware.Config{
		TokenValidator: stubValidator(),
		TokenLookup:    "header:Authorization,query:auth_token,cookie:jwt",
	}, &seen)

	status, body := doGet(t, app, "/protected?auth_token=good-token", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "user-1", body)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: "good-token"})
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)
}

func TestJWTWare_MalformedWinsOverMissing(t *testing.T) {
	var seen error
	app := newApp(jwtware.Config{
		TokenValidator: stubValidator(),
		TokenLookup:    "query:auth_token,header:Authorization",
	}, &seen)

	status, _ := doGet(t, app, "/protected", "Token abc")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.ErrorIs(t, seen, jwtware.ErrJWTMalformed)
}

func TestJWTWare_RequiredRole(t *testing.T) {
	var seen error
	app := newApp(jwtware.Config{
		TokenValidator: stubValidator(),
		RequiredRole:   "admin",
	}, &seen)

	status, _ := doGet(t, app, "/protected", "Bearer good-token")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.ErrorIs(t, seen, jwtware.ErrJWTForbidden)
}

func TestJWTWare_DefaultErrorHandler(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", jwtware.New(jwtware.Config{
		TokenValidator: stubValidator(),
		RequiredRole:   "admin",
	}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	res, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, res.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer good-token")
	res, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, res.StatusCode)
}

func TestJWTWare_ValidationListenerCanReject(t *testing.T) {
	listenerErr := errors.New("revoked")
	var seen error
	var calledWith string
	app := newApp(jwtware.Config{
		TokenValidator: stubValidator(),
		ValidationListeners: []jwtware.ValidationListener{
			nil,
			func(c *fiber.Ctx, claims jwtware.AuthClaims) error {
				calledWith = claims.Subject()
				return listenerErr
			},
		},
	}, &seen)

	status, _ := doGet(t, app, "/protected", "Bearer good-token")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.ErrorIs(t, seen, listenerErr)
	assert.Equal(t, "user-1", calledWith)
}

func TestJWTWare_ContextEnricher(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", jwtware.New(jwtware.Config{
		TokenValidator: stubValidator(),
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			return context.WithValue(ctx, ctxKey{}, claims.Role())
		},
	}), func(c *fiber.Ctx) error {
		role, _ := c.UserContext().Value(ctxKey{}).(string)
		return c.SendString(role)
	})

	status, body := doGet(t, app, "/protected", "Bearer good-token")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "member", body)
}

func TestJWTWare_FilterSkips(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", jwtware.New(jwtware.Config{
		TokenValidator: stubValidator(),
		Filter: func(c *fiber.Ctx) bool {
			return c.Query("skip") == "1"
		},
	}), func(c *fiber.Ctx) error {
		return c.SendString("open")
	})

	status, body := doGet(t, app, "/protected?skip=1", "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "open", body)
}

func TestJWTWare_CustomContextKey(t *testing.T) {
	app := fiber.New()
	app.Get("/protected", jwtware.New(jwtware.Config{
		TokenValidator: stubValidator(),
		ContextKey:     "claims",
	}), func(c *fiber.Ctx) error {
		_, ok := c.Locals("claims").(jwtware.AuthClaims)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.SendStatus(fiber.StatusOK)
	})

	status, _ := doGet(t, app, "/protected", "Bearer good-token")
	assert.Equal(t, fiber.StatusOK, status)
}

func TestJWTWare_RequiresValidator(t *testing.T) {
	assert.Panics(t, func() {
		jwtware.New(jwtware.Config{})
	})
}

func TestGetExtractors(t *testing.T) {
	assert.Len(t, jwtware.GetExtractors("header:Authorization"), 1)
	assert.Len(t, jwtware.GetExtractors("header:Authorization, query:t ,cookie:c,param:p"), 4)
	assert.Empty(t, jwtware.GetExtractors("bogus"))
	assert.Empty(t, jwtware.GetExtractors("unknown:x"))
}
