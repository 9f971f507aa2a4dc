package serverutils

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"doc-assistant-be/pkg/rag/retrieve"
)

// ErrorHandlerMiddleware converts errors bubbled up from controllers into
// the standard JSON envelope. Known domain errors keep their own status
// codes; everything else is a 500.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		if errors.Is(err, retrieve.ErrGroundingUnavailable) {
			return ctx.Status(fiber.StatusServiceUnavailable).
				JSON(ErrorResponse(fiber.StatusServiceUnavailable, "Documentation search is temporarily unavailable"))
		}

		return ctx.Status(fiber.StatusInternalServerError).
			JSON(ErrorResponse(fiber.StatusInternalServerError, err.Error()))
	}
}
