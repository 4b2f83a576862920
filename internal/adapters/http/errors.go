package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/parcelarea/internal/core/domain"
	"github.com/samirrijal/parcelarea/internal/core/usecases"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, unresolved_reference, internal_error, ...
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errUnresolvedReference returns a 422 error naming the missing point.
func errUnresolvedReference(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusUnprocessableEntity, "unresolved_reference", msg)
}

// errUnavailable returns a 503 error.
func errUnavailable(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusServiceUnavailable, "service_unavailable", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// writeServiceError maps errors from the boundary service onto the envelope.
func writeServiceError(c *fiber.Ctx, err error) error {
	var unresolved *domain.UnresolvedReferenceError
	switch {
	case errors.As(err, &unresolved):
		return errUnresolvedReference(c, err.Error())
	case domain.IsValidation(err):
		return errBadRequest(c, err.Error())
	case errors.Is(err, usecases.ErrRendererUnavailable), errors.Is(err, usecases.ErrQueueUnavailable):
		return errUnavailable(c, err.Error())
	default:
		return errInternal(c, err.Error())
	}
}
