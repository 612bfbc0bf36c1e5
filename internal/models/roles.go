package models

// Platform roles. Back-office routes check these.
const (
	RoleUser       = "user"
	RoleSupport    = "support"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// AdminRoles may act on back-office resources.
var AdminRoles = []string{RoleAdmin, RoleSuperAdmin}

// ValidRole reports whether role is one of the platform roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleSupport, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}
