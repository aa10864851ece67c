package constants

const (
	Admin         = "ADMIN"
	SeniorManager = "SENIOR_MANAGER"
	Manager       = "MANAGER"
)

// ValidRoles is the set of operator roles.
var ValidRoles = []string{Admin, SeniorManager, Manager}

// IsValidRole returns true if role is one of the operator roles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}
