package auth

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/nyaruka/phonenumbers"
)

const (
	MessageMissingFields   = "All fields must be filled in"
	MessageInvalidName     = "First and last name may only contain letters, spaces and apostrophes, up to 20 characters"
	MessageInvalidEmail    = "Email address has an invalid format"
	MessageWeakPassword    = "Password must have at least 6 characters, a number, a lower-case and an upper-case letter"
	MessageInvalidPhone    = "Phone number must contain only digits, between 4 and 20 of them"
	MessageUnknownCode     = "Phone code is not a known country calling code"
	MessageMissingLogin    = "Email and password are required"
	MessageUnknownEmail    = "No user found with that email address"
	MessageInvalidPassword = "Password is not valid"
	MessagePendingRole     = "User is not allowed into the app yet, ask an admin for access"
)

var (
	nameRegex        = regexp.MustCompile(`^[\p{L}\s']{1,20}$`)
	emailRegex       = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)
	phoneNumberRegex = regexp.MustCompile(`^[0-9]{4,20}$`)
	digitRegex       = regexp.MustCompile(`[0-9]`)
	lowerRegex       = regexp.MustCompile(`[a-z]`)
	upperRegex       = regexp.MustCompile(`[A-Z]`)
)

// phonenumbers reports this region for unassigned calling codes
const unknownRegion = "ZZ"

// RegistrationValidator runs the ordered signup checks.
// The first failing check wins and no I/O is performed.
type RegistrationValidator struct {
	// StrictPhoneCode also requires the phone code to be a known
	// country calling code. It runs last.
	StrictPhoneCode bool
}

type fieldCheck struct {
	field string
	value any
	rules []validation.Rule
}

// Validate returns a validation error tagged with the offending field
func (v RegistrationValidator) Validate(msg RegisterUserMessage) error {
	if !msg.complete() {
		return NewValidationError(FieldFields, MessageMissingFields)
	}

	checks := []fieldCheck{
		{FieldFirstName, msg.FirstName, []validation.Rule{validation.Match(nameRegex).Error(MessageInvalidName)}},
		{FieldLastName, msg.LastName, []validation.Rule{validation.Match(nameRegex).Error(MessageInvalidName)}},
		{FieldEmail, msg.Email, []validation.Rule{validation.Match(emailRegex).Error(MessageInvalidEmail)}},
		{FieldPassword, msg.Password, passwordRules()},
		{FieldPhoneNumber, msg.PhoneNumber, []validation.Rule{validation.Match(phoneNumberRegex).Error(MessageInvalidPhone)}},
	}

	if v.StrictPhoneCode {
		checks = append(checks, fieldCheck{
			FieldPhoneCode, msg.PhoneCode, []validation.Rule{validation.By(knownCallingCode)},
		})
	}

	for _, check := range checks {
		if err := validation.Validate(check.value, check.rules...); err != nil {
			return NewValidationError(check.field, err.Error())
		}
	}

	return nil
}

// ValidateRegistration runs the default checks
func ValidateRegistration(msg RegisterUserMessage) error {
	return RegistrationValidator{}.Validate(msg)
}

// ValidatePasswordStrength checks the password policy on its own
func ValidatePasswordStrength(password string) error {
	if err := validation.Validate(password, passwordRules()...); err != nil {
		return NewValidationError(FieldPassword, err.Error())
	}
	return nil
}

func passwordRules() []validation.Rule {
	return []validation.Rule{
		validation.Required.Error(MessageWeakPassword),
		validation.RuneLength(6, 0).Error(MessageWeakPassword),
		validation.Match(digitRegex).Error(MessageWeakPassword),
		validation.Match(lowerRegex).Error(MessageWeakPassword),
		validation.Match(upperRegex).Error(MessageWeakPassword),
	}
}

func knownCallingCode(value any) error {
	code, _ := value.(string)
	code = strings.TrimPrefix(strings.TrimSpace(code), "+")

	n, err := strconv.Atoi(code)
	if err != nil || n <= 0 {
		return errors.New(MessageUnknownCode)
	}

	if phonenumbers.GetRegionCodeForCountryCode(n) == unknownRegion {
		return errors.New(MessageUnknownCode)
	}
	return nil
}
