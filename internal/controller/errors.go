package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"koma/internal/model"
	"koma/internal/service"
	"koma/pkg/shogi"
)

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrGameNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, shogi.ErrIllegalMove), errors.Is(err, shogi.ErrIllegalDrop):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, shogi.ErrGameOver),
		errors.Is(err, model.ErrNotYourTurn),
		errors.Is(err, model.ErrNotAITurn):
		return fiber.StatusConflict
	case errors.Is(err, shogi.ErrNoLegalMoves):
		return fiber.StatusConflict
	default:
		return fiber.StatusBadRequest
	}
}

func sendError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(fiber.Map{
		"error": err.Error(),
	})
}
