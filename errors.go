package auth

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// MetadataField is the metadata key holding the offending input field
const MetadataField = "field"

const (
	TextCodeValidation        = "VALIDATION_FAILED"
	TextCodeConflict          = "UNIQUENESS_CONFLICT"
	TextCodeAuthentication    = "AUTHENTICATION_FAILED"
	TextCodeInternal          = "INTERNAL"
	TextCodeInvalidCreds      = goerrors.TextCodeInvalidCredentials
	TextCodeEmptyPassword     = goerrors.TextCodeEmptyPassword
	TextCodeTokenMissing      = "TOKEN_MISSING"
	TextCodeTokenMalformed    = goerrors.TextCodeTokenMalformed
	TextCodeTokenBadSignature = "TOKEN_BAD_SIGNATURE"
	TextCodeTokenExpired      = goerrors.TextCodeTokenExpired
)

// Field names used to tag rejections
const (
	FieldFields      = "fields"
	FieldEmail       = "email"
	FieldPassword    = "password"
	FieldFirstName   = "firstName"
	FieldLastName    = "lastName"
	FieldFullName    = "fullName"
	FieldPhoneCode   = "phoneCode"
	FieldPhoneNumber = "phoneNumber"
	FieldRole        = "role"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrMismatchedHashAndPassword the password does not match the stored hash
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrNoEmptyString is returned when hashing an empty password
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMissingSigningKey the token service was built without a secret
var ErrMissingSigningKey = errors.New("token signing key is required")

var (
	// ErrTokenMissing no bearer token was presented
	ErrTokenMissing = goerrors.New("authorization token is missing", goerrors.CategoryAuth).
			WithTextCode(TextCodeTokenMissing).
			WithCode(goerrors.CodeUnauthorized)

	// ErrTokenMalformed the token could not be parsed
	ErrTokenMalformed = goerrors.New("authorization token is malformed", goerrors.CategoryAuth).
				WithTextCode(TextCodeTokenMalformed).
				WithCode(goerrors.CodeUnauthorized)

	// ErrTokenBadSignature the token signature does not match
	ErrTokenBadSignature = goerrors.New("authorization token signature is invalid", goerrors.CategoryAuth).
				WithTextCode(TextCodeTokenBadSignature).
				WithCode(goerrors.CodeUnauthorized)

	// ErrTokenExpired the token is past its expiration time
	ErrTokenExpired = goerrors.New("authorization token is expired", goerrors.CategoryAuth).
			WithTextCode(TextCodeTokenExpired).
			WithCode(goerrors.CodeUnauthorized)
)

// NewValidationError is a user fixable input problem
func NewValidationError(field, message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryValidation).
		WithTextCode(TextCodeValidation).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{MetadataField: field})
}

// NewConflictError reports a violated uniqueness invariant for field
func NewConflictError(field string) *goerrors.Error {
	return goerrors.New(conflictMessage(field), goerrors.CategoryConflict).
		WithTextCode(TextCodeConflict).
		WithCode(goerrors.CodeBadRequest).
		WithMetadata(map[string]any{MetadataField: field})
}

func conflictMessage(field string) string {
	switch field {
	case FieldEmail:
		return "A user with that email already exists"
	case FieldFullName:
		return "A user with the same first and last name already exists"
	case FieldPhoneNumber:
		return "A user with that phone number already exists"
	default:
		return "User already exists"
	}
}

// NewAuthenticationError bad credentials or disallowed role
func NewAuthenticationError(field, message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithTextCode(TextCodeAuthentication).
		WithCode(goerrors.CodeUnauthorized).
		WithMetadata(map[string]any{MetadataField: field})
}

// NewInternalError wraps an unexpected store or hasher failure.
// The result is always categorized as internal, even when err is
// already a rich error.
func NewInternalError(err error, message string) *goerrors.Error {
	if err == nil {
		err = errors.New(message)
	}
	return &goerrors.Error{
		Category: goerrors.CategoryInternal,
		Code:     goerrors.CodeInternal,
		TextCode: TextCodeInternal,
		Message:  message,
		Source:   err,
	}
}

// tokenError clones a token sentinel so callers can attach
// metadata without touching the shared value
func tokenError(base *goerrors.Error, cause error) *goerrors.Error {
	clone := base.Clone()
	clone.Source = cause
	return clone
}

// ErrorField returns the field tagged on err, if any
func ErrorField(err error) string {
	var richErr *goerrors.Error
	if !errors.As(err, &richErr) || richErr.Metadata == nil {
		return ""
	}
	field, _ := richErr.Metadata[MetadataField].(string)
	return field
}

// IsValidationError will check for input validation errors
func IsValidationError(err error) bool {
	return hasTextCode(err, TextCodeValidation)
}

// IsConflictError will check for uniqueness conflicts
func IsConflictError(err error) bool {
	return hasTextCode(err, TextCodeConflict)
}

// IsAuthenticationError will check for credential and role rejections
func IsAuthenticationError(err error) bool {
	return hasTextCode(err, TextCodeAuthentication)
}

// IsInternalError will check for unexpected failures
func IsInternalError(err error) bool {
	return hasTextCode(err, TextCodeInternal)
}

// IsTokenError will check for any token rejection reason
func IsTokenError(err error) bool {
	return hasTextCode(err, TextCodeTokenMissing) ||
		hasTextCode(err, TextCodeTokenMalformed) ||
		hasTextCode(err, TextCodeTokenBadSignature) ||
		hasTextCode(err, TextCodeTokenExpired)
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	return hasTextCode(err, TextCodeTokenExpired)
}

// IsMalformedError will check for tokens that could not be parsed
func IsMalformedError(err error) bool {
	return hasTextCode(err, TextCodeTokenMalformed)
}

// IsBadSignatureError will check for tokens signed with another key
func IsBadSignatureError(err error) bool {
	return hasTextCode(err, TextCodeTokenBadSignature)
}

// IsNotFound reports lookups that matched no identity
func IsNotFound(err error) bool {
	return errors.Is(err, ErrIdentityNotFound) || goerrors.IsNotFound(err)
}

// TokenErrorCode returns the text code of a token rejection
func TokenErrorCode(err error) string {
	var richErr *goerrors.Error
	if !errors.As(err, &richErr) {
		return ""
	}
	return richErr.TextCode
}

func hasTextCode(err error, code string) bool {
	var richErr *goerrors.Error
	if !errors.As(err, &richErr) {
		return false
	}
	return richErr.TextCode == code
}
