package response

import (
	"github.com/gofiber/fiber/v2"
)

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// DataBody is the standardized read JSON shape.
type DataBody struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// Success sends 200 with {success:true, message} plus any extra fields,
// e.g. propertyId or urls.
func Success(c *fiber.Ctx, message string, fields fiber.Map) error {
	return c.Status(fiber.StatusOK).JSON(body(message, fields))
}

// SuccessCreated is Success with 201 Created.
func SuccessCreated(c *fiber.Ctx, message string, fields fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(body(message, fields))
}

func body(message string, fields fiber.Map) fiber.Map {
	out := fiber.Map{"success": true}
	if message != "" {
		out["message"] = message
	}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

// Data sends 200 with {success:true, data}.
func Data(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusOK).JSON(DataBody{Success: true, Data: data})
}

// Error sends a response with the standard error format.
func Error(c *fiber.Ctx, message string, statusCode int, details []string) error {
	return c.Status(statusCode).JSON(ErrorBody{
		Success: false,
		Error:   message,
		Details: details,
	})
}

// Unauthorized sends 401 with the same shape as other errors.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}
