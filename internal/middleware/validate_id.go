package middleware

import (
	"fmt"

	"eshop/internal/models"
	"eshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ValidateObjectID rejects requests whose path parameter is not a well-formed id.
func ValidateObjectID(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !models.IsValidID(c.Params(param)) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   string(services.KindValidation),
				"message": fmt.Sprintf("invalid %s", param),
			})
		}
		return c.Next()
	}
}
