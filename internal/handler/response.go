package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope every endpoint answers with. Errors carries
// per-field messages when a payload fails validation.
type APIResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// Success writes data with status, defaulting to 200.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{Status: "success", Message: message, Data: data})
}

// Error writes an error envelope, defaulting to 500.
func Error(c echo.Context, status int, message string) error {
	return Invalid(c, status, message, nil)
}

// Invalid writes an error envelope listing the offending fields.
func Invalid(c echo.Context, status int, message string, fields map[string]string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	if len(fields) == 0 {
		fields = nil
	}
	return c.JSON(status, APIResponse{Status: "error", Message: message, Errors: fields})
}
