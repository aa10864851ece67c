package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/imaijo201-star/real-estate-mg/internal/application/users"
	"github.com/imaijo201-star/real-estate-mg/internal/config"
	"github.com/imaijo201-star/real-estate-mg/internal/pkg/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	db := testutil.NewDB(t)
	_, err = (&users.Service{DB: db}).SeedOperators(context.Background(), users.DefaultPassword)
	require.NoError(t, err)

	return NewApp(Deps{
		Config: &config.Config{Env: "test", HealthAdminKey: "k"},
		DB:     db,
		Rdb:    rdb,
		Store:  testutil.NewStore(t),
	})
}

func loginAs(t *testing.T, app *fiber.App, username string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": users.DefaultPassword})
	req := httptest.NewRequest("POST", "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)
	cookies := resp.Header.Values("Set-Cookie")
	require.NotEmpty(t, cookies)
	return strings.SplitN(cookies[0], ";", 2)[0]
}

func do(t *testing.T, app *fiber.App, req *http.Request, cookie string) *http.Response {
	t.Helper()
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestProperties_RequireSession(t *testing.T) {
	app := setupApp(t)

	resp := do(t, app, httptest.NewRequest("GET", "/api/v1/properties", nil), "")
	assert.Equal(t, 401, resp.StatusCode)

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, false, out["success"])
	assert.NotEmpty(t, out["error"])
}

func TestPropertyLifecycle(t *testing.T) {
	app := setupApp(t)
	manager := loginAs(t, app, "manager")

	form := url.Values{
		"title":         {"역삼 오피스텔"},
		"tradeType":     {"JEONSE"},
		"deposit":       {"25000"},
		"address":       {"서울시 강남구 역삼동"},
		"exclusiveArea": {"24.5"},
		"propertyType":  {"OFFICETEL"},
	}
	req := httptest.NewRequest("POST", "/api/v1/properties", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := do(t, app, req, manager)
	require.Equal(t, 201, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest("GET", "/api/v1/properties?q="+url.QueryEscape("역삼"), nil), manager)
	assert.Equal(t, 200, resp.StatusCode)
	var list struct {
		Data struct {
			Total int `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	assert.Equal(t, 1, list.Data.Total)

	resp = do(t, app, httptest.NewRequest("GET", "/api/v1/properties/stats", nil), manager)
	assert.Equal(t, 200, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest("DELETE", "/api/v1/properties/1", nil), manager)
	assert.Equal(t, 403, resp.StatusCode)

	admin := loginAs(t, app, "admin")
	resp = do(t, app, httptest.NewRequest("DELETE", "/api/v1/properties/1", nil), admin)
	assert.Equal(t, 200, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest("GET", "/api/v1/properties/1", nil), admin)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestImport_ManagerForbidden(t *testing.T) {
	app := setupApp(t)
	manager := loginAs(t, app, "manager")

	resp := do(t, app, httptest.NewRequest("POST", "/api/v1/properties/import", nil), manager)
	assert.Equal(t, 403, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	app := setupApp(t)

	resp := do(t, app, httptest.NewRequest("GET", "/health/json", nil), "")
	assert.Equal(t, 200, resp.StatusCode)

	resp = do(t, app, httptest.NewRequest("GET", "/metrics", nil), "")
	assert.Equal(t, 200, resp.StatusCode)
	b, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(b), "http_requests_in_flight")
}
