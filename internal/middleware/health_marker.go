package middleware

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Redis keys for the traffic counters read by the health report.
const (
	KeyReqTotal  = "health:global:req_total"
	KeyReqErrors = "health:global:req_errors"
	KeyResTime   = "health:global:res_time_total"
	KeyResCount  = "health:global:res_count"
	KeyStartTime = "health:global:start_time"
	KeyLastReq   = "health:global:last_request"
	KeyErrorLog  = "health:global:error_log"
)

var untrackedPrefixes = []string{"/health", "/metrics", "/uploads", "/favicon"}

func tracked(path string) bool {
	if path == "/" {
		return false
	}
	for _, p := range untrackedPrefixes {
		if strings.HasPrefix(path, p) {
			return false
		}
	}
	return true
}

type lastRequest struct {
	Time   time.Time `json:"time"`
	IP     string    `json:"ip"`
	Method string    `json:"method"`
	Path   string    `json:"path"`
}

// HealthMarker counts API traffic in Redis for /health/json. Counter
// writes are pipelined once the request finishes; Redis failures never
// fail the request.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rdb == nil || !tracked(c.Path()) {
			return c.Next()
		}
		start := time.Now()
		last, _ := json.Marshal(lastRequest{Time: start, IP: c.IP(), Method: c.Method(), Path: c.OriginalURL()})

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			status, _, _ = StatusFor(err)
		}
		_, perr := rdb.Pipelined(c.UserContext(), func(pipe redis.Pipeliner) error {
			pipe.Set(c.UserContext(), KeyLastReq, last, 0)
			pipe.Incr(c.UserContext(), KeyReqTotal)
			pipe.Incr(c.UserContext(), KeyResCount)
			pipe.IncrByFloat(c.UserContext(), KeyResTime, float64(time.Since(start).Milliseconds()))
			if status >= fiber.StatusInternalServerError {
				pipe.Incr(c.UserContext(), KeyReqErrors)
			}
			return nil
		})
		if perr != nil {
			log.Debug().Err(perr).Msg("health: failed to record traffic")
		}
		return err
	}
}
