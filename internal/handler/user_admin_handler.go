package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/middleware"
)

// UserAdministration is the user management behaviour exposed to admins.
type UserAdministration interface {
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	CreateUser(ctx context.Context, actor uuid.UUID, req dto.CreateUserRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, actor uuid.UUID, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actor uuid.UUID, id string) error
}

// UserAdminHandler exposes administrative user management endpoints.
type UserAdminHandler struct {
	users UserAdministration
}

// NewUserAdminHandler constructs a handler instance.
func NewUserAdminHandler(users UserAdministration) *UserAdminHandler {
	return &UserAdminHandler{users: users}
}

// List returns all users.
func (h *UserAdminHandler) List(c echo.Context) error {
	records, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return respond(c, err, "failed to list users")
	}
	return Success(c, http.StatusOK, "users retrieved", records)
}

// Create provisions a new user.
func (h *UserAdminHandler) Create(c echo.Context) error {
	actor, err := middleware.UserIDFromContext(c)
	if err != nil {
		return respond(c, err, "")
	}
	var req dto.CreateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, err, "")
	}

	user, err := h.users.CreateUser(c.Request().Context(), actor, req)
	if err != nil {
		return respond(c, err, "failed to create user")
	}
	return Success(c, http.StatusCreated, "user created", user)
}

// Update modifies an existing user.
func (h *UserAdminHandler) Update(c echo.Context) error {
	actor, err := middleware.UserIDFromContext(c)
	if err != nil {
		return respond(c, err, "")
	}
	var req dto.UpdateUserRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, err, "")
	}

	user, err := h.users.UpdateUser(c.Request().Context(), actor, c.Param("id"), req)
	if err != nil {
		return respond(c, err, "failed to update user")
	}
	return Success(c, http.StatusOK, "user updated", user)
}

// Delete removes a user.
func (h *UserAdminHandler) Delete(c echo.Context) error {
	actor, err := middleware.UserIDFromContext(c)
	if err != nil {
		return respond(c, err, "")
	}

	if err := h.users.DeleteUser(c.Request().Context(), actor, c.Param("id")); err != nil {
		return respond(c, err, "failed to delete user")
	}
	return Success(c, http.StatusOK, "user deleted", nil)
}
