package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/goliatone/go-attend-auth"
)

func TestValidateRegistration_Valid(t *testing.T) {
	assert.NoError(t, auth.ValidateRegistration(validSignup()))

	msg := validSignup()
	msg.FirstName = "María José"
	msg.LastName = "O'Neil"
	assert.NoError(t, auth.ValidateRegistration(msg))
}

func TestValidateRegistration_MissingFields(t *testing.T) {
	fields := []func(*auth.RegisterUserMessage){
		func(m *auth.RegisterUserMessage) { m.Email = "" },
		func(m *auth.RegisterUserMessage) { m.Password = "" },
		func(m *auth.RegisterUserMessage) { m.FirstName = "" },
		func(m *auth.RegisterUserMessage) { m.LastName = "" },
		func(m *auth.RegisterUserMessage) { m.PhoneCode = "" },
		func(m *auth.RegisterUserMessage) { m.PhoneNumber = "" },
	}

	for _, clear := range fields {
		msg := validSignup()
		clear(&msg)

		err := auth.ValidateRegistration(msg)
		require.Error(t, err)
		assert.True(t, auth.IsValidationError(err))
		assert.Equal(t, auth.FieldFields, auth.ErrorField(err))
	}
}

func TestValidateRegistration_FieldOrder(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*auth.RegisterUserMessage)
		field  string
	}{
		{
			name:   "first name with digits",
			modify: func(m *auth.RegisterUserMessage) { m.FirstName = "Ana1" },
			field:  auth.FieldFirstName,
		},
		{
			name:   "first name too long",
			modify: func(m *auth.RegisterUserMessage) { m.FirstName = strings.Repeat("a", 21) },
			field:  auth.FieldFirstName,
		},
		{
			name:   "last name with symbols",
			modify: func(m *auth.RegisterUserMessage) { m.LastName = "Lopez!" },
			field:  auth.FieldLastName,
		},
		{
			name:   "invalid email",
			modify: func(m *auth.RegisterUserMessage) { m.Email = "not-an-email" },
			field:  auth.FieldEmail,
		},
		{
			name:   "weak password",
			modify: func(m *auth.RegisterUserMessage) { m.Password = "abcdef" },
			field:  auth.FieldPassword,
		},
		{
			name:   "phone with letters",
			modify: func(m *auth.RegisterUserMessage) { m.PhoneNumber = "555abc" },
			field:  auth.FieldPhoneNumber,
		},
		{
			name:   "phone too short",
			modify: func(m *auth.RegisterUserMessage) { m.PhoneNumber = "123" },
			field:  auth.FieldPhoneNumber,
		},
		{
			name: "first failing check wins",
			modify: func(m *auth.RegisterUserMessage) {
				m.LastName = "Lopez!"
				m.Email = "bad"
				m.Password = "weak"
			},
			field: auth.FieldLastName,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := validSignup()
			tt.modify(&msg)

			err := auth.ValidateRegistration(msg)
			require.Error(t, err)
			assert.True(t, auth.IsValidationError(err))
			assert.Equal(t, tt.field, auth.ErrorField(err))
		})
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"Abcdef1", true},
		{"aB3xyz", true},
		{"abcdef", false},
		{"ABCDEF1", false},
		{"abcdef1", false},
		{"Abcdefg", false},
		{"Ab1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := auth.ValidatePasswordStrength(tt.password)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, auth.FieldPassword, auth.ErrorField(err))
			assert.Contains(t, err.Error(), auth.MessageWeakPassword)
		})
	}
}

func TestRegistrationValidator_StrictPhoneCode(t *testing.T) {
	strict := auth.RegistrationValidator{StrictPhoneCode: true}

	msg := validSignup()
	assert.NoError(t, strict.Validate(msg))

	msg.PhoneCode = "44"
	assert.NoError(t, strict.Validate(msg))

	for _, code := range []string{"+999", "abc", "+0"} {
		msg.PhoneCode = code
		err := strict.Validate(msg)
		require.Error(t, err, code)
		assert.Equal(t, auth.FieldPhoneCode, auth.ErrorField(err))
	}

	msg.PhoneCode = "+999"
	assert.NoError(t, auth.ValidateRegistration(msg), "lenient mode accepts any phone code")
}
