package constants

const (
	Superadmin = "superadmin"
	Admin      = "admin"
	Clerk      = "clerk"
	Viewer     = "viewer"
)

// ValidRoles is the set of allowed DB enum values for user role.
var ValidRoles = []string{Viewer, Clerk, Admin, Superadmin}

// IsValidRole returns true if role is one of the allowed enum values.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
