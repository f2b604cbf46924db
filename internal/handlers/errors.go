package handlers

import (
	"eshop/internal/services"

	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var statusByKind = map[services.Kind]int{
	services.KindValidation:   fiber.StatusBadRequest,
	services.KindUnauthorized: fiber.StatusUnauthorized,
	services.KindForbidden:    fiber.StatusForbidden,
	services.KindNotFound:     fiber.StatusNotFound,
	services.KindPersistence:  fiber.StatusInternalServerError,
}

const internalErrorMessage = "internal error, please try again later"

// respondError writes the JSON error body for err.
func respondError(c *fiber.Ctx, logger *zap.Logger, err error) error {
	kind := services.KindOf(err)
	status := statusByKind[kind]

	body := fiber.Map{"error": string(kind)}
	var svcErr *services.Error
	switch {
	case kind == services.KindPersistence:
		logger.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		body["message"] = internalErrorMessage
	case errors.As(err, &svcErr):
		body["message"] = svcErr.Message
		if len(svcErr.Fields) > 0 {
			body["errors"] = svcErr.Fields
		}
	default:
		body["message"] = err.Error()
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler maps errors escaping handlers, fiber's own included, to the
// JSON error body.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			kind := services.KindValidation
			switch fe.Code {
			case fiber.StatusUnauthorized:
				kind = services.KindUnauthorized
			case fiber.StatusForbidden:
				kind = services.KindForbidden
			case fiber.StatusNotFound, fiber.StatusMethodNotAllowed:
				kind = services.KindNotFound
			}
			if fe.Code >= fiber.StatusInternalServerError {
				logger.Error("Request failed", zap.String("path", c.Path()), zap.Error(err))
				return c.Status(fe.Code).JSON(fiber.Map{
					"error":   string(services.KindPersistence),
					"message": internalErrorMessage,
				})
			}
			return c.Status(fe.Code).JSON(fiber.Map{"error": string(kind), "message": fe.Message})
		}
		return respondError(c, logger, err)
	}
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   string(services.KindValidation),
		"message": msg,
	})
}
