package uploads

import (
	"fmt"
	"strconv"

	"github.com/imaijo201-star/real-estate-mg/internal/application/images"
	"github.com/imaijo201-star/real-estate-mg/internal/domain"
	"github.com/imaijo201-star/real-estate-mg/internal/middleware"
	"github.com/imaijo201-star/real-estate-mg/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// Handlers bundles image upload and delete handlers with the service.
type Handlers struct {
	Service *images.Service
}

// Upload POST /api/v1/upload: multipart "files"; { success, urls, message }
func (h *Handlers) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return domain.Invalid("files", "업로드할 파일이 없습니다.")
	}
	headers := form.File["files"]

	uploads := make([]images.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return fmt.Errorf("open upload %s: %w", fh.Filename, err)
		}
		defer f.Close()
		uploads = append(uploads, images.Upload{
			Name:        fh.Filename,
			ContentType: fh.Header.Get(fiber.HeaderContentType),
			Size:        fh.Size,
			Content:     f,
		})
	}

	urls, err := h.Service.StageUpload(c.UserContext(), uploads)
	if err != nil {
		return err
	}
	return response.Success(c, fmt.Sprintf("%d개의 파일이 업로드되었습니다.", len(urls)), fiber.Map{"urls": urls})
}

// DeleteImage DELETE /api/v1/images/:id: owner of the property only
func (h *Handlers) DeleteImage(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return domain.ErrUnauthenticated
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return domain.Invalid("id", "잘못된 이미지 ID입니다.")
	}
	if err := h.Service.DeleteOne(c.UserContext(), uint(id), user.ID()); err != nil {
		return err
	}
	return response.Success(c, "이미지가 삭제되었습니다.", nil)
}
