package serverutils

import (
	"errors"

	"ai-mailroom-be/internal/ledger"
	"ai-mailroom-be/pkg/llm"
	"ai-mailroom-be/pkg/rag/retrieval"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware maps domain sentinel errors to HTTP statuses at the
// boundary. Caller errors become 4xx; backend unavailability becomes 503.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &fiberErr):
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		case errors.Is(err, ledger.ErrUnknownProduct):
			return ctx.Status(fiber.StatusNotFound).JSON(ErrorResponse(err.Error()))
		case errors.Is(err, ledger.ErrInvalidQuantity):
			return ctx.Status(fiber.StatusBadRequest).JSON(ErrorResponse(err.Error()))
		case errors.Is(err, retrieval.ErrUnavailable), errors.Is(err, llm.ErrGenerationUnavailable):
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse(err.Error()))
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse(err.Error()))
		}
	}
}
