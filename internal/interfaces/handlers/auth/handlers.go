package auth

import (
	authsvc "github.com/imaijo201-star/real-estate-mg/internal/application/auth"
	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/middleware"
	"github.com/imaijo201-star/real-estate-mg/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const userSessionsPrefix = "user_sessions:"

// Handlers holds dependencies for auth endpoints.
type Handlers struct {
	UserFinder authsvc.UserFinder
	Rdb        *redis.Client
	Config     middleware.SessionConfig
}

func userBody(u *domain.User) fiber.Map {
	return fiber.Map{
		"id":       u.ID.String(),
		"username": u.Username,
		"name":     u.Name,
		"email":    u.Email,
		"role":     u.Role,
	}
}

// Login POST /api/v1/auth/login: authenticate, start a fresh session,
// track it under user_sessions:<id> and set the cookie.
func (h *Handlers) Login(c *fiber.Ctx) error {
	if h.UserFinder == nil {
		return response.Error(c, "서버 오류가 발생했습니다.", fiber.StatusInternalServerError, nil)
	}
	var req authsvc.LoginInput
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, authsvc.ErrCredentialsRequired.Error(), fiber.StatusBadRequest, nil)
	}

	user, err := h.UserFinder.FindByUsernameAndPassword(c.UserContext(), req.Username, req.Password)
	if err != nil {
		switch err {
		case authsvc.ErrCredentialsRequired:
			return response.Error(c, err.Error(), fiber.StatusBadRequest, nil)
		case authsvc.ErrInvalidCredentials:
			log.Info().Str("username", req.Username).Msg("auth: login rejected")
			return response.Error(c, err.Error(), fiber.StatusUnauthorized, nil)
		default:
			log.Error().Err(err).Msg("auth: login lookup failed")
			return response.Error(c, "서버 오류가 발생했습니다.", fiber.StatusInternalServerError, nil)
		}
	}

	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionUser(c, middleware.SessionUser{
		UserID:   user.ID.String(),
		Username: user.Username,
		Name:     user.Name,
		Email:    user.Email,
		Role:     user.Role,
	})

	if err := h.Rdb.SAdd(c.UserContext(), userSessionsPrefix+user.ID.String(), sessionID).Err(); err != nil {
		log.Error().Err(err).Msg("auth: failed to track session")
		return response.Error(c, "서버 오류가 발생했습니다.", fiber.StatusInternalServerError, nil)
	}

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.Value = "s:" + sessionID
	c.Cookie(&cookie)

	return response.Success(c, "로그인되었습니다.", fiber.Map{"user": userBody(user)})
}

// Me GET /api/v1/auth/me: the session operator, reloaded from the database.
func (h *Handlers) Me(c *fiber.Ctx) error {
	sessionUser, ok := middleware.CurrentUser(c)
	if !ok || h.UserFinder == nil {
		return response.Unauthorized(c, authsvc.ErrNotAuthenticated.Error())
	}
	user, err := h.UserFinder.FindByID(c.UserContext(), sessionUser.ID())
	if err != nil {
		if err != authsvc.ErrNotAuthenticated {
			log.Error().Err(err).Msg("auth: failed to load session user")
			return response.Error(c, "서버 오류가 발생했습니다.", fiber.StatusInternalServerError, nil)
		}
		return response.Unauthorized(c, err.Error())
	}
	return response.Data(c, userBody(user))
}

// Logout DELETE /api/v1/auth/logout: drop the session and clear the cookie.
func (h *Handlers) Logout(c *fiber.Ctx) error {
	sessionID := middleware.GetSessionID(c)
	ctx := c.UserContext()

	if sessionID != "" {
		if user, ok := middleware.CurrentUser(c); ok {
			_ = h.Rdb.SRem(ctx, userSessionsPrefix+user.UserID, sessionID).Err()
		}
		_ = h.Rdb.Del(ctx, middleware.SessionRedisPrefix+sessionID).Err()
	}

	middleware.DestroySession(c)

	cookie := middleware.SessionCookieConfig(h.Config)
	cookie.MaxAge = -1
	c.Cookie(&cookie)

	return response.Success(c, "로그아웃되었습니다.", nil)
}
