package response

import (
	"errors"

	"armory-backend/internal/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// SuccessBody is the standardized success JSON shape.
type SuccessBody struct {
	Status   string      `json:"status"`
	Message  string      `json:"message"`
	Data     interface{} `json:"data"`
	Metadata interface{} `json:"metadata,omitempty"`
}

// ErrorBody is the standardized error JSON shape.
type ErrorBody struct {
	Status string      `json:"status"`
	Error  ErrorDetail `json:"error"`
}

// ErrorDetail is the nested error object.
type ErrorDetail struct {
	Message    string      `json:"message"`
	StatusCode int         `json:"statusCode"`
	Details    interface{} `json:"details,omitempty"`
}

const statusSuccess = "success"
const statusError = "error"

// Success sends a 200 OK response with the standard success format.
func Success(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(fiber.StatusOK).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// SuccessCreated sends a 201 Created response with the standard success format.
func SuccessCreated(c *fiber.Ctx, message string, data interface{}, metadata interface{}) error {
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	return c.Status(fiber.StatusCreated).JSON(SuccessBody{
		Status:   statusSuccess,
		Message:  message,
		Data:     data,
		Metadata: metadata,
	})
}

// Error sends a response with the standard error format.
func Error(c *fiber.Ctx, message string, statusCode int, details interface{}) error {
	if details == nil {
		details = map[string]interface{}{}
	}
	return c.Status(statusCode).JSON(ErrorBody{
		Status: statusError,
		Error: ErrorDetail{
			Message:    message,
			StatusCode: statusCode,
			Details:    details,
		},
	})
}

// Unauthorized sends 401 with the same shape as other errors.
func Unauthorized(c *fiber.Ctx, message string) error {
	return Error(c, message, fiber.StatusUnauthorized, nil)
}

// FromError maps a service error to the standard error format. Validation
// failures carry the violated field in details; invariant violations are
// reported without internal detail.
func FromError(c *fiber.Ctx, err error) error {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		details := map[string]interface{}{}
		if ve.Field != "" {
			details["field"] = ve.Field
		}
		return Error(c, ve.Error(), fiber.StatusBadRequest, details)
	}
	var ae *apperr.AuthorizationError
	if errors.As(err, &ae) {
		return Error(c, ae.Error(), fiber.StatusForbidden, nil)
	}
	if errors.Is(err, apperr.ErrConcurrentModification) {
		return Error(c, err.Error(), fiber.StatusConflict, nil)
	}
	if errors.Is(err, apperr.ErrNotFound) {
		return Error(c, "Record not found", fiber.StatusNotFound, nil)
	}
	if apperr.IsInvariant(err) {
		return Error(c, "Internal data inconsistency", fiber.StatusInternalServerError, nil)
	}
	return Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
