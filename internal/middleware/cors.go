package middleware

import (
	"strings"

	"github.com/imaijo201-star/real-estate-mg/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const devPasswordHeader = "dev-password"

// CORSConfig controls which browser origins may call the admin API.
// AllowedSuffix matches the host tail (e.g. ".example.co.kr"); DevPassword
// lets a developer call from any origin by sending the dev-password header.
type CORSConfig struct {
	AllowedSuffix string
	DevPassword   string
}

func (cfg CORSConfig) allows(c *fiber.Ctx, origin string) bool {
	if cfg.AllowedSuffix != "" && strings.HasSuffix(strings.ToLower(origin), strings.ToLower(cfg.AllowedSuffix)) {
		return true
	}
	return cfg.DevPassword != "" && c.Get(devPasswordHeader) == cfg.DevPassword
}

func isLoopback(origin string) bool {
	for _, p := range []string{"http://localhost:", "http://127.0.0.1:"} {
		if strings.HasPrefix(origin, p) {
			return true
		}
	}
	return false
}

// CORS echoes allowed origins back with credentials enabled so the session
// cookie travels cross-site. Requests without Origin pass through untouched.
func CORS(cfg CORSConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		origin := c.Get(fiber.HeaderOrigin)
		if origin == "" {
			return c.Next()
		}
		preflight := c.Method() == fiber.MethodOptions
		if preflight && isLoopback(origin) {
			allowOrigin(c, origin)
			return c.SendStatus(fiber.StatusNoContent)
		}
		if !cfg.allows(c, origin) {
			return response.Error(c, "허용되지 않은 출처입니다.", fiber.StatusForbidden, nil)
		}
		allowOrigin(c, origin)
		if preflight {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

func allowOrigin(c *fiber.Ctx, origin string) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, origin)
	c.Set(fiber.HeaderAccessControlAllowCredentials, "true")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type, X-Trace-Id, "+devPasswordHeader)
	c.Set(fiber.HeaderAccessControlAllowMethods, "GET, POST, PUT, DELETE, OPTIONS")
	c.Set(fiber.HeaderVary, fiber.HeaderOrigin)
}
