package middleware

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const errorLogSize = 50

// StatusFor maps an error to its HTTP status, client message and details.
func StatusFor(err error) (int, string, []string) {
	var (
		verr *domain.ValidationError
		ierr *domain.ImportError
		aerr *domain.AuthError
		nerr *domain.NotFoundError
		ferr *fiber.Error
	)
	switch {
	case errors.As(err, &verr):
		return fiber.StatusBadRequest, verr.Message, verr.Details
	case errors.As(err, &ierr):
		return fiber.StatusBadRequest, ierr.Error(), nil
	case errors.As(err, &aerr):
		if aerr.Forbidden {
			return fiber.StatusForbidden, aerr.Message, nil
		}
		return fiber.StatusUnauthorized, aerr.Message, nil
	case errors.As(err, &nerr):
		return fiber.StatusNotFound, "요청한 항목을 찾을 수 없습니다.", nil
	case errors.As(err, &ferr):
		return ferr.Code, ferr.Message, nil
	}
	return fiber.StatusInternalServerError, "서버 오류가 발생했습니다.", nil
}

// NewErrorHandler returns the global error handler. Server errors are
// logged and, when rdb is set, pushed to the health error log.
func NewErrorHandler(rdb *redis.Client) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code, message, details := StatusFor(err)
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("trace_id", GetTraceID(c)).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
			if rdb != nil {
				entry, _ := json.Marshal(map[string]interface{}{
					"time":     time.Now(),
					"method":   c.Method(),
					"path":     c.OriginalURL(),
					"message":  err.Error(),
					"trace_id": GetTraceID(c),
				})
				ctx := c.UserContext()
				rdb.LPush(ctx, KeyErrorLog, entry)
				rdb.LTrim(ctx, KeyErrorLog, 0, errorLogSize-1)
			}
		}
		return response.Error(c, message, code, details)
	}
}
