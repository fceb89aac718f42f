package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/radiodial/internal/core/domain"
)

// APIError is a structured error response for requests rejected before
// they reach the directory.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, internal_error
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

// HTTPStatus maps an envelope status to the HTTP status used to serve it.
func HTTPStatus(s domain.Status) int {
	switch s {
	case domain.StatusSuccess:
		return fiber.StatusOK
	case domain.StatusInvalidResponse:
		return fiber.StatusBadRequest
	case domain.StatusParseError, domain.StatusNetworkError, domain.StatusServerError:
		return fiber.StatusBadGateway
	case domain.StatusTimeout:
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}

// respond renders an envelope as JSON with its mapped HTTP status.
func respond[T any](c *fiber.Ctx, r domain.Response[T]) error {
	return c.Status(HTTPStatus(r.Status)).JSON(r)
}

// constError is a comparable error usable as a constant.
type constError string

func (e constError) Error() string { return string(e) }

const (
	errRequired      constError = "is required"
	errNotANumber    constError = "must be a number"
	errOutOfRange    constError = "out of range"
	errCountNotInt   constError = "count must be an integer"
	errCountTooLarge constError = "count must be at most 200"
	errDisconnected  constError = "disconnected"
)
