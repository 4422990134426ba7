package serverutils

import (
	"errors"
	"log"

	"chatbot-router-be/internal/dto"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware converts every error escaping a handler into the
// uniform JSON error body. Fiber errors keep their status code; anything
// else becomes a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error:   "Validation failed",
				Details: validationErr.Error(),
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(dto.ErrorResponse{
				Error: fiberErr.Message,
			})
		}

		log.Printf("[ERROR] %s %s: %v", ctx.Method(), ctx.Path(), err)
		return ctx.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error:   "Internal server error",
			Details: err.Error(),
		})
	}
}
