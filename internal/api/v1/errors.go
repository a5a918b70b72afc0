package apiv1

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/CleanCity/internal/pkg/apperrors"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func fail(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(ErrorResponse{Error: code, Message: message})
}

// respondError maps domain errors onto HTTP status codes.
func respondError(c *fiber.Ctx, err error) error {
	var (
		illegal   *apperrors.IllegalTransitionError
		forbidden *apperrors.ForbiddenTransitionError
		capacity  *apperrors.CapacityExceededError
		schedule  *apperrors.ScheduleConflictError
		conflict  *apperrors.ConflictError
		invalid   *apperrors.InvalidZoneError
		verrs     validator.ValidationErrors
	)
	switch {
	case errors.Is(err, apperrors.ErrValidation), errors.As(err, &verrs), errors.As(err, &invalid):
		return fail(c, fiber.StatusBadRequest, "validation_failed", err.Error())
	case errors.As(err, &forbidden):
		return fail(c, fiber.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		return fail(c, fiber.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &illegal):
		return fail(c, fiber.StatusConflict, "illegal_transition", err.Error())
	case errors.As(err, &capacity):
		return fail(c, fiber.StatusConflict, "capacity_exceeded", err.Error())
	case errors.As(err, &schedule):
		return fail(c, fiber.StatusConflict, "schedule_conflict", err.Error())
	case errors.As(err, &conflict):
		return fail(c, fiber.StatusConflict, "conflict", err.Error())
	}
	log.Errorf("[API] %s %s failed: %v", c.Method(), c.Path(), err)
	return fail(c, fiber.StatusInternalServerError, "internal_server_error", "internal server error")
}
