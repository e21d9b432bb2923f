package domain

// Role is a user's authorization level.
type Role string

// Role constants define the allowed user roles.
const (
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
	RoleUser      Role = "user"
)

// ValidRoles returns the set of valid user roles.
func ValidRoles() []Role {
	return []Role{RoleAdmin, RoleModerator, RoleUser}
}

// IsValidRole checks whether the given role string is a valid user role.
func IsValidRole(role Role) bool {
	for _, r := range ValidRoles() {
		if r == role {
			return true
		}
	}
	return false
}
