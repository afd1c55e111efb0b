package server

import (
	"errors"

	"socialmesh/internal/models"
	"socialmesh/internal/service"

	"github.com/gofiber/fiber/v2"
)

// respondError maps coordinator errors to HTTP responses.
func respondError(c *fiber.Ctx, err error) error {
	if models.IsValidationError(err) {
		return models.RespondWithError(c, fiber.StatusBadRequest, err)
	}

	var storeErr *service.StoreError
	if errors.As(err, &storeErr) {
		return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewStoreError(err))
	}

	return models.RespondWithError(c, fiber.StatusInternalServerError, models.NewInternalError(err))
}

func invalidBody(c *fiber.Ctx) error {
	return models.RespondWithError(c, fiber.StatusBadRequest,
		models.NewValidationError("Invalid request body"))
}
