package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryUsers is an in-memory IdentityStore. Inserts are serialized so
// two concurrent signups with the same keys cannot both succeed.
type MemoryUsers struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*User
	byEmail map[string]uuid.UUID
	byName  map[nameKey]uuid.UUID
	byPhone map[phoneKey]uuid.UUID
	now     func() time.Time
}

type nameKey struct{ first, last string }

type phoneKey struct{ code, number string }

// NewMemoryUsers returns an empty store
func NewMemoryUsers() *MemoryUsers {
	return &MemoryUsers{
		byID:    make(map[uuid.UUID]*User),
		byEmail: make(map[string]uuid.UUID),
		byName:  make(map[nameKey]uuid.UUID),
		byPhone: make(map[phoneKey]uuid.UUID),
		now:     time.Now,
	}
}

var (
	_ IdentityStore = (*MemoryUsers)(nil)
	_ RoleUpdater   = (*MemoryUsers)(nil)
)

// FindByEmail returns the user with the exact email
func (m *MemoryUsers) FindByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookup(m.byEmail[email])
}

// FindByName returns the user with the normalized first and last name
func (m *MemoryUsers) FindByName(ctx context.Context, firstName, lastName string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookup(m.byName[nameKey{firstName, lastName}])
}

// FindByPhone returns the user with the phone code and number
func (m *MemoryUsers) FindByPhone(ctx context.Context, code, number string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookup(m.byPhone[phoneKey{code, number}])
}

// FindByID returns the user with id
func (m *MemoryUsers) FindByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrIdentityNotFound
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lookup(uid)
}

// Insert stores a copy of user, or returns a conflict error for the
// first violated key in the order email, fullName, phoneNumber
func (m *MemoryUsers) Insert(ctx context.Context, user *User) (*User, error) {
	if user == nil {
		return nil, NewInternalError(nil, "user is required")
	}

	if err := ctx.Err(); err != nil {
		return nil, NewInternalError(err, "insert cancelled")
	}

	if user.Role != "" && !user.Role.IsValid() {
		return nil, NewValidationError(FieldRole, "unknown role "+user.Role.String())
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	nk := nameKey{user.FirstName, user.LastName}
	pk := phoneKey{user.PhoneCode, user.PhoneNumber}

	if _, ok := m.byEmail[user.Email]; ok {
		return nil, NewConflictError(FieldEmail)
	}
	if _, ok := m.byName[nk]; ok {
		return nil, NewConflictError(FieldFullName)
	}
	if _, ok := m.byPhone[pk]; ok {
		return nil, NewConflictError(FieldPhoneNumber)
	}

	record := user.Clone()
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if _, ok := m.byID[record.ID]; ok {
		return nil, NewInternalError(nil, "duplicate user id")
	}
	if record.Role == "" {
		record.Role = RolePending
	}
	now := m.now()
	record.CreatedAt = &now
	record.UpdatedAt = &now

	m.byID[record.ID] = record
	m.byEmail[record.Email] = record.ID
	m.byName[nk] = record.ID
	m.byPhone[pk] = record.ID

	return record.Clone(), nil
}

// UpdateRole sets the role of user id
func (m *MemoryUsers) UpdateRole(ctx context.Context, id string, role UserRole) (*User, error) {
	if !role.IsValid() {
		return nil, NewValidationError(FieldRole, "unknown role "+role.String())
	}

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrIdentityNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.byID[uid]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	now := m.now()
	record.Role = role
	record.UpdatedAt = &now
	return record.Clone(), nil
}

// Len returns the number of stored users
func (m *MemoryUsers) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

func (m *MemoryUsers) lookup(id uuid.UUID) (*User, error) {
	record, ok := m.byID[id]
	if !ok {
		return nil, ErrIdentityNotFound
	}
	return record.Clone(), nil
}
