package middleware

import (
	"strings"

	"eshop/internal/services"

	"github.com/gofiber/fiber/v2"
)

const requesterKey = "requester"

// AuthRequired is a Fiber middleware to check for a valid JWT token.
// The verified caller is stored for handlers as a services.Requester.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
			return unauthorized(c, "Authorization header format must be 'Bearer <token>'")
		}

		claims, err := authService.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		c.Locals(requesterKey, claims.Requester())
		return c.Next()
	}
}

// RequesterFrom returns the caller stored by AuthRequired.
func RequesterFrom(c *fiber.Ctx) (services.Requester, bool) {
	r, ok := c.Locals(requesterKey).(services.Requester)
	return r, ok
}

func unauthorized(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   string(services.KindUnauthorized),
		"message": msg,
	})
}
