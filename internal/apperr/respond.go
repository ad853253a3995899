package apperr

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Status maps an error to the HTTP status a handler should answer with.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, ErrInsufficientStock),
		errors.Is(err, ErrUnsupportedPaymentMethod):
		return fiber.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, ErrExternalService):
		return fiber.StatusBadGateway
	case errors.Is(err, ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, ErrUnauthorized):
		return fiber.StatusUnauthorized
	default:
		return fiber.StatusInternalServerError
	}
}

// Respond writes {"message": ...} for err. Unclassified errors are reported
// as a generic internal error and external failures hide their cause.
func Respond(c *fiber.Ctx, err error) error {
	status := Status(err)
	msg := err.Error()
	switch status {
	case fiber.StatusInternalServerError:
		msg = "internal server error"
	case fiber.StatusBadGateway:
		msg = "upstream service unavailable"
	}
	if status >= fiber.StatusInternalServerError {
		// surfaced to the request logger
		c.Locals("error", err)
	}
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// BadRequest is the shortcut handlers use for body/param parsing failures.
func BadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": msg})
}
