package properties

import (
	"bytes"
	"fmt"
	"net/url"
	"strconv"

	"github.com/imaijo201-star/real-estate-mg/internal/application/bulk"
	propsvc "github.com/imaijo201-star/real-estate-mg/internal/application/properties"
	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/middleware"
	"github.com/imaijo201-star/real-estate-mg/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handlers struct {
	Service *propsvc.Service
	Bulk    *bulk.Service
}

func propertyID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.Invalid("id", "잘못된 매물 ID입니다.")
	}
	return uint(id), nil
}

func filterFrom(c *fiber.Ctx) propsvc.Filter {
	return propsvc.Filter{
		Query:        c.Query("q"),
		PropertyType: domain.PropertyType(c.Query("propertyType")),
		Status:       domain.Status(c.Query("status")),
	}
}

// GET /api/v1/properties?q=&propertyType=&status=&page=
func (h *Handlers) List(c *fiber.Ctx) error {
	page, err := h.Service.List(c.UserContext(), filterFrom(c), c.QueryInt("page", 1))
	if err != nil {
		return err
	}
	return response.Data(c, page)
}

// GET /api/v1/properties/stats
func (h *Handlers) Stats(c *fiber.Ctx) error {
	stats, err := h.Service.AggregateStats(c.UserContext())
	if err != nil {
		return err
	}
	return response.Data(c, stats)
}

// GET /api/v1/properties/:id
func (h *Handlers) Get(c *fiber.Ctx) error {
	id, err := propertyID(c)
	if err != nil {
		return err
	}
	p, err := h.Service.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return response.Data(c, p)
}

// POST /api/v1/properties: 201 with { success, propertyId, message }
func (h *Handlers) Create(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	in, err := parseInput(c)
	if err != nil {
		return err
	}
	p, err := h.Service.Create(c.UserContext(), in, user.ID())
	if err != nil {
		return err
	}
	return response.SuccessCreated(c, "매물이 등록되었습니다.", fiber.Map{"propertyId": p.ID})
}

// PUT /api/v1/properties/:id
func (h *Handlers) Update(c *fiber.Ctx) error {
	id, err := propertyID(c)
	if err != nil {
		return err
	}
	in, err := parseInput(c)
	if err != nil {
		return err
	}
	if _, err := h.Service.Update(c.UserContext(), id, in); err != nil {
		return err
	}
	return response.Success(c, "매물이 수정되었습니다.", nil)
}

// DELETE /api/v1/properties/:id
func (h *Handlers) Delete(c *fiber.Ctx) error {
	id, err := propertyID(c)
	if err != nil {
		return err
	}
	if err := h.Service.Delete(c.UserContext(), id); err != nil {
		return err
	}
	return response.Success(c, "매물이 삭제되었습니다.", nil)
}

func sendWorkbook(c *fiber.Ctx, name string, buf *bytes.Buffer) error {
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(name)))
	return c.Send(buf.Bytes())
}

// GET /api/v1/properties/export: same filters as List
func (h *Handlers) Export(c *fiber.Ctx) error {
	buf, err := h.Bulk.ExportAll(c.UserContext(), filterFrom(c))
	if err != nil {
		return err
	}
	return sendWorkbook(c, h.Bulk.ExportName(), buf)
}

// GET /api/v1/properties/template
func (h *Handlers) Template(c *fiber.Ctx) error {
	buf, err := bulk.DownloadTemplate()
	if err != nil {
		return err
	}
	return sendWorkbook(c, bulk.TemplateName, buf)
}

// POST /api/v1/properties/import: multipart "file"
func (h *Handlers) Import(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return domain.Invalid("file", "파일이 없습니다.")
	}
	file, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	res, err := h.Bulk.ImportFromSpreadsheet(c.UserContext(), file, user.ID())
	if err != nil {
		return err
	}
	msg := fmt.Sprintf("%d개의 매물이 등록되었습니다.", res.Count)
	if res.Skipped > 0 {
		msg = fmt.Sprintf("%d개의 매물이 등록되었습니다. (중복 %d건 제외)", res.Count, res.Skipped)
	}
	return response.Success(c, msg, fiber.Map{"count": res.Count, "skipped": res.Skipped})
}
