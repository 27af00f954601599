package auth

import (
	"context"
	"errors"

	"github.com/goliatone/go-attend-auth/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// JWTWareValidator adapts a TokenValidator to the gate's validator
// interface. A failed validation never yields a typed nil claims value.
func JWTWareValidator(validator TokenValidator) jwtware.TokenValidator {
	return jwtware.TokenValidatorFunc(func(tokenString string) (jwtware.AuthClaims, error) {
		claims, err := validator.Validate(tokenString)
		if err != nil {
			return nil, err
		}
		if claims == nil {
			return nil, tokenError(ErrTokenMalformed, nil)
		}
		return claims, nil
	})
}

// ContextEnricherAdapter adapts jwtware.AuthClaims to auth.AuthClaims and
// stores the claims in the standard context for downstream handlers.
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(AuthClaims)
	if !ok {
		return c
	}
	return WithClaimsContext(c, authClaims)
}

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}

// gateError maps the gate's extraction errors onto token errors.
// Validator errors are already token errors and pass through.
func gateError(err error) error {
	switch {
	case errors.Is(err, jwtware.ErrJWTMissing):
		return tokenError(ErrTokenMissing, err)
	case errors.Is(err, jwtware.ErrJWTMalformed):
		return tokenError(ErrTokenMalformed, err)
	case IsTokenError(err):
		return err
	default:
		return tokenError(ErrTokenMalformed, err)
	}
}
