package constants

// PermissionRoles maps each permission to roles allowed to perform it.
var PermissionRoles = map[string][]string{
	ViewProperties:   {Manager, SeniorManager, Admin},
	EditProperties:   {Manager, SeniorManager, Admin},
	UploadImages:     {Manager, SeniorManager, Admin},
	DeleteProperties: {SeniorManager, Admin},
	ImportProperties: {SeniorManager, Admin},
}

// AllowedRole returns true if role is in the list of allowed roles for the permission.
func AllowedRole(permission, role string) bool {
	roles, ok := PermissionRoles[permission]
	if !ok {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
