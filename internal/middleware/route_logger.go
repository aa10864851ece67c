package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// RouteLogger writes one line per request with status, duration and trace
// ID. Static files and scrapes are logged at debug level; failures at warn.
func RouteLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _, _ = StatusFor(err)
		}
		path := c.Path()
		level := zerolog.InfoLevel
		switch {
		case status >= fiber.StatusBadRequest:
			level = zerolog.WarnLevel
		case strings.HasPrefix(path, "/uploads") || path == "/metrics":
			level = zerolog.DebugLevel
		}
		log.WithLevel(level).
			Str("trace_id", GetTraceID(c)).
			Str("method", c.Method()).
			Str("path", path).
			Int("status", status).
			Int64("ms", time.Since(start).Milliseconds()).
			Msg("request")
		return err
	}
}
