package middleware

import (
	"github.com/imaijo201-star/real-estate-mg/internal/constants"
	"github.com/imaijo201-star/real-estate-mg/internal/domain"

	"github.com/gofiber/fiber/v2"
)

// AuthorizePermission checks the session operator's role against
// constants.PermissionRoles. An unconfigured permission is a 500; a role
// that is not allowed is a 403.
func AuthorizePermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUser(c)
		if !ok {
			return domain.ErrUnauthenticated
		}
		roles, ok := constants.PermissionRoles[permission]
		if !ok || len(roles) == 0 {
			return fiber.NewError(fiber.StatusInternalServerError, "Permission configuration error")
		}
		if !constants.AllowedRole(permission, user.Role) {
			return domain.ErrForbidden
		}
		return c.Next()
	}
}
