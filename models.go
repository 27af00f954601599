package auth

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID  `bun:"id,pk,type:varchar(36)" json:"id,omitempty"`
	Email         string     `bun:"email,notnull" json:"email,omitempty"`
	FirstName     string     `bun:"first_name,notnull" json:"firstName,omitempty"`
	LastName      string     `bun:"last_name,notnull" json:"lastName,omitempty"`
	PhoneCode     string     `bun:"phone_code,notnull" json:"phoneCode,omitempty"`
	PhoneNumber   string     `bun:"phone_number,notnull" json:"phoneNumber,omitempty"`
	PasswordHash  string     `bun:"password_hash,notnull" json:"-"`
	Role          UserRole   `bun:"user_role,notnull" json:"role,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"createdAt,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updatedAt,omitempty"`
}

// FullName is the normalized first and last name joined by a space
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Clone returns a copy so callers cannot mutate stored records
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.CreatedAt != nil {
		t := *u.CreatedAt
		c.CreatedAt = &t
	}
	if u.UpdatedAt != nil {
		t := *u.UpdatedAt
		c.UpdatedAt = &t
	}
	return &c
}

// NormalizeName collapses whitespace runs into a single space,
// trims the ends and lower-cases the result
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
