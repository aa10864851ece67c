package middleware

import (
	"github.com/imaijo201-star/real-estate-mg/internal/domain"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// RequireAuth ensures an operator is in the session. Returns 401 with the
// standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := CurrentUser(c); !ok {
			return domain.ErrUnauthenticated
		}
		return c.Next()
	}
}

// CurrentUser returns the session operator, if any.
func CurrentUser(c *fiber.Ctx) (SessionUser, bool) {
	u, _ := c.Locals(userLocal).(*SessionUser)
	if u == nil {
		return SessionUser{}, false
	}
	return *u, true
}
