package enums

import "fmt"

// Role gates catalog mutations behind authenticated staff.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

var validRoles = []Role{
	RoleAdmin,
	RoleEditor,
	RoleViewer,
}

// String returns the literal string for the role.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the role is known.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanMutate reports whether the role may change catalog data.
func (r Role) CanMutate() bool {
	return r == RoleAdmin || r == RoleEditor
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
