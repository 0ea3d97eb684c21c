package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// ErrorHandler обрабатывает ошибки Fiber и AppError, отвечая JSON
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c fiber.Ctx, err error) error {
		var appErr *AppError
		if errors.As(err, &appErr) {
			if appErr.Status >= fiber.StatusInternalServerError {
				log.Error("ошибка обработки запроса",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			}
			return c.Status(appErr.Status).JSON(fiber.Map{
				"error": appErr.Message,
				"code":  appErr.Code,
			})
		}

		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		} else {
			log.Error("необработанная ошибка",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}
