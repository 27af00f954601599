package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

// pgUniqueViolation is the postgres SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// Users is the bun backed IdentityStore
type Users interface {
	IdentityStore
	RoleUpdater
	FindByID(ctx context.Context, id string) (*User, error)
	InsertTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
}

type users struct {
	db  *bun.DB
	now func() time.Time
}

var _ Users = (*users)(nil)

type UsersOption func(*users)

// WithUsersClock overrides the clock used for timestamps
func WithUsersClock(now func() time.Time) UsersOption {
	return func(u *users) {
		if now != nil {
			u.now = now
		}
	}
}

// NewUsersRepository returns a Users store on db
func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repoUsers := &users{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repoUsers)
		}
	}
	return repoUsers
}

func (a *users) FindByEmail(ctx context.Context, email string) (*User, error) {
	return a.findOne(ctx, a.db, byEmail(email))
}

func (a *users) FindByName(ctx context.Context, firstName, lastName string) (*User, error) {
	return a.findOne(ctx, a.db, byName(firstName, lastName))
}

func (a *users) FindByPhone(ctx context.Context, code, number string) (*User, error) {
	return a.findOne(ctx, a.db, byPhone(code, number))
}

func (a *users) FindByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrIdentityNotFound
	}
	return a.findOne(ctx, a.db, func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.id = ?", uid.String())
	})
}

func (a *users) Insert(ctx context.Context, user *User) (*User, error) {
	return a.InsertTx(ctx, a.db, user)
}

// InsertTx inserts user on tx. Unique violations come back as a
// conflict error for the first taken key in precedence order.
func (a *users) InsertTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	if user == nil {
		return nil, NewInternalError(nil, "user is required")
	}

	record := user.Clone()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.Role == "" {
		record.Role = RolePending
	}
	if !record.Role.IsValid() {
		return nil, NewValidationError(FieldRole, "unknown role "+record.Role.String())
	}
	now := a.now().UTC()
	record.CreatedAt = &now
	record.UpdatedAt = &now

	if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
		if constraint, ok := uniqueViolation(err); ok {
			return nil, a.resolveConflict(ctx, tx, record, constraint)
		}
		return nil, NewInternalError(err, "failed to insert user")
	}

	return record, nil
}

func (a *users) UpdateRole(ctx context.Context, id string, role UserRole) (*User, error) {
	if !role.IsValid() {
		return nil, NewValidationError(FieldRole, "unknown role "+role.String())
	}

	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	res, err := a.db.NewUpdate().
		Model((*User)(nil)).
		Set("user_role = ?", role).
		Set("updated_at = ?", a.now().UTC()).
		Where("id = ?", uid.String()).
		Exec(ctx)
	if err != nil {
		return nil, NewInternalError(err, "failed to update user role")
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrIdentityNotFound
	}

	return a.FindByID(ctx, uid.String())
}

func (a *users) findOne(ctx context.Context, tx bun.IDB, where func(*bun.SelectQuery) *bun.SelectQuery) (*User, error) {
	record := &User{}
	q := where(tx.NewSelect().Model(record)).Limit(1)
	if err := q.Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrIdentityNotFound
		}
		return nil, NewInternalError(err, "failed to query users")
	}
	return record, nil
}

// resolveConflict finds which key was taken. Lookups run in precedence
// order so a record that violates several keys reports the first.
func (a *users) resolveConflict(ctx context.Context, tx bun.IDB, record *User, constraint string) error {
	checks := []struct {
		field string
		find  func() (*User, error)
	}{
		{FieldEmail, func() (*User, error) { return a.findOne(ctx, tx, byEmail(record.Email)) }},
		{FieldFullName, func() (*User, error) { return a.findOne(ctx, tx, byName(record.FirstName, record.LastName)) }},
		{FieldPhoneNumber, func() (*User, error) { return a.findOne(ctx, tx, byPhone(record.PhoneCode, record.PhoneNumber)) }},
	}

	for _, check := range checks {
		if _, err := check.find(); err == nil {
			return NewConflictError(check.field)
		}
	}

	if field := fieldFromConstraint(constraint); field != "" {
		return NewConflictError(field)
	}

	return NewInternalError(errors.New(constraint), "unresolved unique violation")
}

func byEmail(email string) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.email = ?", email)
	}
}

func byName(first, last string) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.first_name = ?", first).Where("?TableAlias.last_name = ?", last)
	}
}

func byPhone(code, number string) func(*bun.SelectQuery) *bun.SelectQuery {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.phone_code = ?", code).Where("?TableAlias.phone_number = ?", number)
	}
}

// uniqueViolation reports whether err is a unique constraint failure
// and returns the constraint name or driver message
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName, pgErr.Code == pgUniqueViolation
	}

	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return msg, true
	}
	return "", false
}

func fieldFromConstraint(constraint string) string {
	switch {
	case strings.Contains(constraint, "users_email_key"), strings.Contains(constraint, "users.email"):
		return FieldEmail
	case strings.Contains(constraint, "users_full_name_key"), strings.Contains(constraint, "users.first_name"):
		return FieldFullName
	case strings.Contains(constraint, "users_phone_key"), strings.Contains(constraint, "users.phone_code"):
		return FieldPhoneNumber
	}
	return ""
}
