package utils

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v3"
)

// APIError is the JSON error envelope returned for any failure that
// escapes a handler.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorHandler is the app-level fiber error handler. Handlers respond
// inline for expected failures; anything that bubbles up here is either
// a router error (404, 405) or a genuine fault. Internal error text is
// logged server-side and never echoed to the client.
func ErrorHandler(c fiber.Ctx, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return c.Status(apiErr.StatusCode).JSON(apiErr)
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(&APIError{
			Code:    "REQUEST_ERROR",
			Message: fiberErr.Message,
		})
	}

	log.Printf("unhandled error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(&APIError{
		Code:    "INTERNAL_ERROR",
		Message: "An internal error occurred",
	})
}
