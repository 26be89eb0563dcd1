package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/middleware"
	"github.com/octobees/itinerary-maker/api/internal/service"
)

// ContactNumberService manages company phone numbers.
type ContactNumberService interface {
	ListForCompany(ctx context.Context, companyID uuid.UUID) ([]entity.CompanyContactNumber, error)
	AddNumber(ctx context.Context, actor, companyID uuid.UUID, req dto.CreateContactNumberRequest) (*entity.CompanyContactNumber, error)
	DeleteNumber(ctx context.Context, actor, id uuid.UUID) error
}

// SocialMediaService manages user social profiles.
type SocialMediaService interface {
	ListForUser(ctx context.Context, caller service.Caller, userID uuid.UUID) ([]entity.UserSocialMedia, error)
	AddProfile(ctx context.Context, caller service.Caller, userID uuid.UUID, req dto.CreateSocialMediaRequest) (*entity.UserSocialMedia, error)
	DeleteProfile(ctx context.Context, caller service.Caller, id uuid.UUID) error
}

// AccountRoleService manages authorization roles.
type AccountRoleService interface {
	ListRoles(ctx context.Context) ([]entity.AccountRole, error)
	CreateRole(ctx context.Context, actor uuid.UUID, req dto.CreateAccountRoleRequest) (*entity.AccountRole, error)
	DeleteRole(ctx context.Context, actor, id uuid.UUID) error
}

// DirectoryHandler serves the contact number, social profile and account role
// records that hang off companies and users.
type DirectoryHandler struct {
	numbers  ContactNumberService
	profiles SocialMediaService
	roles    AccountRoleService
}

// NewDirectoryHandler constructs a handler instance.
func NewDirectoryHandler(numbers ContactNumberService, profiles SocialMediaService, roles AccountRoleService) *DirectoryHandler {
	return &DirectoryHandler{numbers: numbers, profiles: profiles, roles: roles}
}

// ListContactNumbers handles GET /companies/:id/contact-numbers.
func (h *DirectoryHandler) ListContactNumbers(c echo.Context) error {
	companyID, err := pathUUID(c, "id")
	if err != nil {
		return respond(c, err, "")
	}
	numbers, err := h.numbers.ListForCompany(c.Request().Context(), companyID)
	if err != nil {
		return respond(c, err, "failed to list contact numbers")
	}
	return Success(c, http.StatusOK, "contact numbers retrieved", numbers)
}

// AddContactNumber handles POST /companies/:id/contact-numbers.
func (h *DirectoryHandler) AddContactNumber(c echo.Context) error {
	actor, err := middleware.UserIDFromContext(c)
	if err != nil {
		return respond(c, err, "")
	}
	companyID, err := pathUUID(c, "id")
	if err != nil {
		return respond(c, err, "")
	}
	var req dto.CreateContactNumberRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, err, "")
	}

	number, err := h.numbers.AddNumber(c.Request().Context(), actor, companyID, req)
	if err != nil {
		return respond(c, err, "failed to add contact number")
	}
	return Success(c, http.StatusCreated, "contact number added", number)
}

// DeleteContactNumber handles DELETE /contact-numbers/:id.
func (h *DirectoryHandler) DeleteContactNumber(c echo.Context) error {
	actor, err := middleware.UserIDFromContext(c)
	if err != nil {
		return respond(c, err, "")
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respond(c, err, "")
	}
	if err := h.numbers.DeleteNumber(c.Request().Context(), actor, id); err != nil {
		return respond(c, err, "failed to delete contact number")
	}
	return Success(c, http.StatusOK, "contact number deleted", nil)
}

// ListSocialMedia handles GET /users/:id/social-media.
func (h *DirectoryHandler) ListSocialMedia(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return respond(c, err, "")
	}
	userID, err := pathUUID(c, "id")
	if err != nil {
		return respond(c, err, "")
	}
	profiles, err := h.profiles.ListForUser(c.Request().Context(), who, userID)
	if err != nil {
		return respond(c, err, "failed to list social media")
	}
	return Success(c, http.StatusOK, "social media retrieved", profiles)
}

// AddSocialMedia handles POST /users/:id/social-media.
func (h *DirectoryHandler) AddSocialMedia(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return respond(c, err, "")
	}
	userID, err := pathUUID(c, "id")
	if err != nil {
		return respond(c, err, "")
	}
	var req dto.CreateSocialMediaRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, err, "")
	}

	profile, err := h.profiles.AddProfile(c.Request().Context(), who, userID, req)
	if err != nil {
		return respond(c, err, "failed to add social media")
	}
	return Success(c, http.StatusCreated, "social media added", profile)
}

// DeleteSocialMedia handles DELETE /social-media/:id.
func (h *DirectoryHandler) DeleteSocialMedia(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return respond(c, err, "")
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respond(c, err, "")
	}
	if err := h.profiles.DeleteProfile(c.Request().Context(), who, id); err != nil {
		return respond(c, err, "failed to delete social media")
	}
	return Success(c, http.StatusOK, "social media deleted", nil)
}

// ListAccountRoles handles GET /account-roles.
func (h *DirectoryHandler) ListAccountRoles(c echo.Context) error {
	roles, err := h.roles.ListRoles(c.Request().Context())
	if err != nil {
		return respond(c, err, "failed to list account roles")
	}
	return Success(c, http.StatusOK, "account roles retrieved", roles)
}

// CreateAccountRole handles POST /admin/account-roles.
func (h *DirectoryHandler) CreateAccountRole(c echo.Context) error {
	actor, err := middleware.UserIDFromContext(c)
	if err != nil {
		return respond(c, err, "")
	}
	var req dto.CreateAccountRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, err, "")
	}

	role, err := h.roles.CreateRole(c.Request().Context(), actor, req)
	if err != nil {
		return respond(c, err, "failed to create account role")
	}
	return Success(c, http.StatusCreated, "account role created", role)
}

// DeleteAccountRole handles DELETE /admin/account-roles/:id.
func (h *DirectoryHandler) DeleteAccountRole(c echo.Context) error {
	actor, err := middleware.UserIDFromContext(c)
	if err != nil {
		return respond(c, err, "")
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respond(c, err, "")
	}
	if err := h.roles.DeleteRole(c.Request().Context(), actor, id); err != nil {
		return respond(c, err, "failed to delete account role")
	}
	return Success(c, http.StatusOK, "account role deleted", nil)
}
