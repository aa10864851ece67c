package properties

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/imaijo201-star/real-estate-mg/internal/application/bulk"
	"github.com/imaijo201-star/real-estate-mg/internal/application/images"
	propsvc "github.com/imaijo201-star/real-estate-mg/internal/application/properties"
	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/middleware"
	"github.com/imaijo201-star/real-estate-mg/internal/pkg/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

func setupPropertiesTest(t *testing.T, loggedIn bool) (*fiber.App, *gorm.DB) {
	db := testutil.NewDB(t)
	imgs := &images.Service{DB: db, Store: testutil.NewStore(t)}
	svc := &propsvc.Service{DB: db, Images: imgs}
	h := &Handlers{Service: svc, Bulk: &bulk.Service{DB: db, Properties: svc}}
	owner := testutil.CreateUser(t, db, "manager")

	app := fiber.New(fiber.Config{ErrorHandler: middleware.NewErrorHandler(nil)})
	if loggedIn {
		app.Use(func(c *fiber.Ctx) error {
			middleware.SetSessionUser(c, middleware.SessionUser{UserID: owner.ID.String(), Username: owner.Username, Role: owner.Role})
			return c.Next()
		})
	}
	app.Get("/properties", h.List)
	app.Get("/properties/stats", h.Stats)
	app.Get("/properties/export", h.Export)
	app.Get("/properties/template", h.Template)
	app.Post("/properties/import", h.Import)
	app.Get("/properties/:id", h.Get)
	app.Post("/properties", h.Create)
	app.Put("/properties/:id", h.Update)
	app.Delete("/properties/:id", h.Delete)
	return app, db
}

func postForm(t *testing.T, app *fiber.App, method, target string, form url.Values) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

func validForm() url.Values {
	return url.Values{
		"title":         {"상가 1층"},
		"tradeType":     {"MONTHLY"},
		"deposit":       {"5,000"},
		"monthlyRent":   {"250"},
		"address":       {"서울시 마포구"},
		"exclusiveArea": {"33.3"},
		"propertyType":  {"COMMERCIAL"},
		"hasElevator":   {"true"},
		"premiumFee":    {"3000"},
		"isOperating":   {"true"},
		"officeName":    {"마포부동산"},
		"agentPhone":    {"02-123-4567"},
		"availableFrom": {"2026-11-01"},
	}
}

func TestCreate_Success(t *testing.T) {
	app, db := setupPropertiesTest(t, true)

	resp := postForm(t, app, "POST", "/properties", validForm())
	assert.Equal(t, 201, resp.StatusCode)
	result := decode(t, resp)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, float64(1), result["propertyId"])

	var p domain.Property
	require.NoError(t, db.Preload("Commercial").Preload("Agent").First(&p, 1).Error)
	assert.Equal(t, "상가 1층", p.Title)
	require.NotNil(t, p.Deposit)
	assert.Equal(t, int64(5000), *p.Deposit)
	assert.True(t, p.HasElevator)
	assert.Equal(t, 1, p.Rooms)
	require.NotNil(t, p.Commercial)
	assert.True(t, p.Commercial.IsOperating)
	require.NotNil(t, p.Agent)
	assert.Equal(t, "마포부동산", p.Agent.OfficeName)
}

func TestCreate_IgnoresStatusAndRoundsNumbers(t *testing.T) {
	app, db := setupPropertiesTest(t, true)
	form := validForm()
	form.Set("status", "SOLD")
	form.Set("monthlyRent", "250.6")
	form.Set("floor", "2.5")

	resp := postForm(t, app, "POST", "/properties", form)
	require.Equal(t, 201, resp.StatusCode)

	var p domain.Property
	require.NoError(t, db.First(&p, 1).Error)
	assert.Equal(t, domain.StatusAvailable, p.Status)
	require.NotNil(t, p.MonthlyRent)
	assert.Equal(t, int64(251), *p.MonthlyRent)
	require.NotNil(t, p.Floor)
	assert.Equal(t, 3, *p.Floor)
}

func TestCreate_Unauthenticated(t *testing.T) {
	app, _ := setupPropertiesTest(t, false)

	resp := postForm(t, app, "POST", "/properties", validForm())
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, false, decode(t, resp)["success"])
}

func TestCreate_InvalidForm(t *testing.T) {
	cases := map[string]func(url.Values){
		"missing title": func(f url.Values) { f.Del("title") },
		"bad number":    func(f url.Values) { f.Set("deposit", "많음") },
		"bad date":      func(f url.Values) { f.Set("availableFrom", "11/01/2026") },
		"zero area":     func(f url.Values) { f.Set("exclusiveArea", "0") },
		"bad image id":  func(f url.Values) { f["imageUrls"] = []string{"/x.jpg"}; f["imageIds"] = []string{"abc"} },
		"infinite area": func(f url.Values) { f.Set("exclusiveArea", "Inf") },
		"NaN area":      func(f url.Values) { f.Set("exclusiveArea", "NaN") },
		"NaN deposit":   func(f url.Values) { f.Set("deposit", "NaN") },
		"huge deposit":  func(f url.Values) { f.Set("deposit", "1e30") },
		"huge floor":    func(f url.Values) { f.Set("floor", "1e12") },
		"foreign image": func(f url.Values) { f["imageUrls"] = []string{"/uploads/properties/99/x.jpg"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			app, db := setupPropertiesTest(t, true)
			form := validForm()
			mutate(form)

			resp := postForm(t, app, "POST", "/properties", form)
			assert.Equal(t, 400, resp.StatusCode)
			result := decode(t, resp)
			assert.Equal(t, false, result["success"])
			assert.NotEmpty(t, result["error"])

			var n int64
			db.Model(&domain.Property{}).Count(&n)
			assert.Zero(t, n)
		})
	}
}

func TestGetUpdateDelete(t *testing.T) {
	app, _ := setupPropertiesTest(t, true)
	require.Equal(t, 201, postForm(t, app, "POST", "/properties", validForm()).StatusCode)

	form := validForm()
	form.Set("title", "상가 2층")
	form.Set("status", "RESERVED")
	resp := postForm(t, app, "PUT", "/properties/1", form)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err := app.Test(httptest.NewRequest("GET", "/properties/1", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	data := decode(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, "상가 2층", data["title"])
	assert.Equal(t, "RESERVED", data["status"])

	resp, err = app.Test(httptest.NewRequest("DELETE", "/properties/1", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/properties/1", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestGet_InvalidID(t *testing.T) {
	app, _ := setupPropertiesTest(t, true)

	resp, err := app.Test(httptest.NewRequest("GET", "/properties/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestList_Filters(t *testing.T) {
	app, _ := setupPropertiesTest(t, true)
	require.Equal(t, 201, postForm(t, app, "POST", "/properties", validForm()).StatusCode)
	other := validForm()
	other.Set("title", "망원 빌라")
	other.Set("propertyType", "VILLA")
	require.Equal(t, 201, postForm(t, app, "POST", "/properties", other).StatusCode)

	resp, err := app.Test(httptest.NewRequest("GET", "/properties?propertyType=VILLA", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	data := decode(t, resp)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	items := data["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "망원 빌라", items[0].(map[string]interface{})["title"])
}

func TestTemplate_Download(t *testing.T) {
	app, _ := setupPropertiesTest(t, true)

	resp, err := app.Test(httptest.NewRequest("GET", "/properties/template", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, xlsxContentType, resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), url.PathEscape(bulk.TemplateName))
}

func TestImport_Multipart(t *testing.T) {
	app, db := setupPropertiesTest(t, true)

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"제목", "주소", "전용면적"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"역삼 오피스텔", "서울시 강남구", 24}))
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "list.xlsx")
	require.NoError(t, err)
	_, err = part.Write(xlsx.Bytes())
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/properties/import", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	result := decode(t, resp)
	assert.Equal(t, true, result["success"])
	assert.Equal(t, float64(1), result["count"])

	var n int64
	db.Model(&domain.Property{}).Count(&n)
	assert.Equal(t, int64(1), n)
}

func TestImport_MissingFile(t *testing.T) {
	app, _ := setupPropertiesTest(t, true)

	req := httptest.NewRequest("POST", "/properties/import", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
