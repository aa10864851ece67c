package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	authsvc "github.com/imaijo201-star/real-estate-mg/internal/application/auth"
	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/middleware"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUserFinder for tests: returns configured user or error.
type fakeUserFinder struct {
	user *domain.User
	err  error
}

func (f *fakeUserFinder) FindByUsernameAndPassword(ctx context.Context, username, password string) (*domain.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if username == "" || password == "" {
		return nil, authsvc.ErrCredentialsRequired
	}
	if f.user != nil && f.user.Username == username && password == "password123" {
		return f.user, nil
	}
	return nil, authsvc.ErrInvalidCredentials
}

func (f *fakeUserFinder) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if f.user != nil && f.user.ID == id {
		return f.user, nil
	}
	return nil, authsvc.ErrNotAuthenticated
}

func setupAuthHandlers(t *testing.T, finder authsvc.UserFinder) (*Handlers, *redis.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	h := &Handlers{
		UserFinder: finder,
		Rdb:        rdb,
		Config:     middleware.SessionConfig{},
	}
	return h, rdb
}

func newApp(h *Handlers, rdb *redis.Client) *fiber.App {
	app := fiber.New()
	app.Use(middleware.SessionWithClient(rdb))
	app.Post("/login", h.Login)
	app.Get("/me", h.Me)
	app.Delete("/logout", h.Logout)
	return app
}

func login(t *testing.T, app *fiber.App, username, password string) *loginResult {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	b, _ := io.ReadAll(resp.Body)
	out := map[string]interface{}{}
	_ = json.Unmarshal(b, &out)
	return &loginResult{status: resp.StatusCode, body: out, cookies: resp.Header.Values("Set-Cookie")}
}

type loginResult struct {
	status  int
	body    map[string]interface{}
	cookies []string
}

func testUser() *domain.User {
	return &domain.User{ID: uuid.New(), Username: "admin", Name: "관리자", Email: "admin@example.com", Role: "ADMIN"}
}

func TestLogin_EmptyBody(t *testing.T) {
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{user: testUser()})
	app := newApp(h, rdb)

	req := httptest.NewRequest("POST", "/login", nil)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestLogin_MissingCredentials(t *testing.T) {
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{})
	res := login(t, newApp(h, rdb), "admin", "")
	assert.Equal(t, fiber.StatusBadRequest, res.status)
	assert.Equal(t, authsvc.ErrCredentialsRequired.Error(), res.body["error"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{user: testUser()})
	app := newApp(h, rdb)

	assert.Equal(t, fiber.StatusUnauthorized, login(t, app, "admin", "wrong").status)
	assert.Equal(t, fiber.StatusUnauthorized, login(t, app, "nobody", "password123").status)
}

func TestLogin_Success(t *testing.T) {
	u := testUser()
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{user: u})

	res := login(t, newApp(h, rdb), "admin", "password123")
	assert.Equal(t, fiber.StatusOK, res.status)
	assert.Equal(t, true, res.body["success"])
	user, _ := res.body["user"].(map[string]interface{})
	require.NotNil(t, user)
	assert.Equal(t, "admin", user["username"])
	assert.Equal(t, "ADMIN", user["role"])

	require.NotEmpty(t, res.cookies)
	assert.Contains(t, res.cookies[0], middleware.SessionCookieName+"=s:")

	members, err := rdb.SMembers(context.Background(), userSessionsPrefix+u.ID.String()).Result()
	require.NoError(t, err)
	require.Len(t, members, 1)
	exists, err := rdb.Exists(context.Background(), middleware.SessionRedisPrefix+members[0]).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)
}

func TestLogin_NilUserFinder(t *testing.T) {
	h, rdb := setupAuthHandlers(t, nil)
	res := login(t, newApp(h, rdb), "admin", "pass")
	assert.Equal(t, fiber.StatusInternalServerError, res.status)
}

func TestMe_NoSession(t *testing.T) {
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{})
	app := newApp(h, rdb)

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLoginMeLogout_RoundTrip(t *testing.T) {
	u := testUser()
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{user: u})
	app := newApp(h, rdb)

	res := login(t, app, "admin", "password123")
	require.Equal(t, fiber.StatusOK, res.status)
	cookie := strings.SplitN(res.cookies[0], ";", 2)[0]

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", cookie)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	data, _ := out["data"].(map[string]interface{})
	assert.Equal(t, "admin@example.com", data["email"])

	req = httptest.NewRequest("DELETE", "/logout", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Values("Set-Cookie"))

	keys, err := rdb.Keys(context.Background(), middleware.SessionRedisPrefix+"*").Result()
	require.NoError(t, err)
	assert.Empty(t, keys)

	req = httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", cookie)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestMe_DeletedUser(t *testing.T) {
	h, _ := setupAuthHandlers(t, &fakeUserFinder{})
	app := fiber.New()
	app.Get("/me", func(c *fiber.Ctx) error {
		middleware.SetSessionUser(c, middleware.SessionUser{UserID: uuid.New().String(), Username: "gone"})
		return h.Me(c)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestLogout_NoSession(t *testing.T) {
	h, rdb := setupAuthHandlers(t, &fakeUserFinder{})
	app := newApp(h, rdb)

	resp, err := app.Test(httptest.NewRequest("DELETE", "/logout", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Values("Set-Cookie"))
}
