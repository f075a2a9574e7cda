package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error         string `json:"error"`
	Code          string `json:"code,omitempty"`
	Details       string `json:"details,omitempty"`
	SetupRequired bool   `json:"setup_required,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    "VALIDATION_ERROR",
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
	}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
		Err:     err,
	}
}

// ErrSetupRequired marks failures caused by a backend that has not been set
// up yet (missing relations, unexposed schema). Callers route these to a
// guided-setup state instead of showing them as data errors.
var ErrSetupRequired = errors.New("backend setup required")

// setupPatterns is the ordered list of lowered-substring rules that decide
// whether a backend error is a deployment-state signal. Evaluated top to
// bottom against the lowered error text; first match wins.
var setupPatterns = []struct {
	substr string
	reason string
}{
	{"does not exist", "missing relation"},
	{"no such table", "missing relation"},
	{"undefined table", "missing relation"},
	{"permission denied for schema", "schema not exposed"},
	{"schema must be one of", "schema not exposed"},
	{"invalid schema", "schema not exposed"},
}

// ClassifySetup inspects err and, when its text matches one of the setup
// patterns, returns an error wrapping both the original and
// ErrSetupRequired. Otherwise err is returned unchanged.
func ClassifySetup(err error) error {
	if err == nil {
		return nil
	}
	text := strings.ToLower(err.Error())
	for _, p := range setupPatterns {
		if strings.Contains(text, p.substr) {
			return fmt.Errorf("%w (%s): %w", ErrSetupRequired, p.reason, err)
		}
	}
	return err
}

// IsSetupError reports whether err was classified as a setup error.
func IsSetupError(err error) bool {
	return errors.Is(err, ErrSetupRequired)
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	if IsSetupError(err) {
		response = ErrorResponse{
			Error:         "Backend is not set up yet",
			Code:          "SETUP_REQUIRED",
			Details:       err.Error(),
			SetupRequired: true,
		}
		return c.Status(fiber.StatusServiceUnavailable).JSON(response)
	}

	if appErr, ok := err.(*AppError); ok {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
