package middleware

import (
	"errors"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Context keys used to store authentication metadata.
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserEmail = "user_email"
	ContextKeyUserRole  = "user_role"
	ContextKeyRequestID = "request_id"
	ContextKeyError     = "request_error"
)

// RoleAdmin is the account role short name granted every administrative route.
const RoleAdmin = "admin"

// ErrUnauthenticated is returned when no valid subject was stored by JWT.
var ErrUnauthenticated = errors.New("unauthenticated request")

// UserIDFromContext returns the authenticated subject as a UUID.
func UserIDFromContext(c echo.Context) (uuid.UUID, error) {
	raw, ok := c.Get(ContextKeyUserID).(string)
	if !ok || raw == "" {
		return uuid.Nil, ErrUnauthenticated
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrUnauthenticated
	}
	return id, nil
}

// RoleFromContext returns the authenticated role short name, if any.
func RoleFromContext(c echo.Context) string {
	role, _ := c.Get(ContextKeyUserRole).(string)
	return role
}

// IsAdmin reports whether the authenticated caller holds the admin role.
func IsAdmin(c echo.Context) bool {
	return RoleFromContext(c) == RoleAdmin
}

// RecordError attaches the cause of a handled failure so Logging reports it.
func RecordError(c echo.Context, err error) {
	c.Set(ContextKeyError, err)
}

// abort writes the shared error envelope without reaching the handler.
func abort(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"status": "error", "message": message})
}
