package auth

// UserRole is the user's role
type UserRole string

const (
	// RolePending is assigned at signup, login is not allowed
	RolePending UserRole = "pending"
	// RoleMember is an approved attendee
	RoleMember UserRole = "member"
	// RoleAdmin manages events and approves members
	RoleAdmin UserRole = "admin"
)

// IsValid checks if the role is one of the predefined valid roles
func (r UserRole) IsValid() bool {
	switch r {
	case RolePending, RoleMember, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanLogin reports whether the role may be issued a token. Only
// pending is refused; stores never persist an unknown role.
func (r UserRole) CanLogin() bool {
	return r != RolePending
}

// Is is the single role equality check used by the gate
func (r UserRole) Is(role string) bool {
	return string(r) == role
}

func (r UserRole) String() string {
	return string(r)
}

// GetAllRoles returns all predefined roles
func GetAllRoles() []UserRole {
	return []UserRole{
		RolePending,
		RoleMember,
		RoleAdmin,
	}
}

// ParseRole safely parses a string into a UserRole type
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, role.IsValid()
}
