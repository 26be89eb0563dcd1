package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/itinerary-maker/api/internal/dto"
)

const tokenType = "Bearer"

// Authenticator exchanges credentials for an access token.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Registrar creates self-service accounts.
type Registrar interface {
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error)
}

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	auth  Authenticator
	users Registrar
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(auth Authenticator, users Registrar) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

// Register handles POST /auth/register requests.
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, err, "")
	}

	ctx := c.Request().Context()
	user, err := h.users.Register(ctx, req)
	if err != nil {
		return respond(c, err, "unable to register user")
	}

	token, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		return respond(c, err, "unable to authenticate")
	}

	return Success(c, http.StatusCreated, "registration successful", dto.RegisterResponse{
		User:        *user,
		AccessToken: token,
		TokenType:   tokenType,
	})
}

// Login handles POST /auth/login requests.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, err, "")
	}

	token, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return respond(c, err, "unable to authenticate")
	}

	return Success(c, http.StatusOK, "login successful", dto.LoginResponse{AccessToken: token, TokenType: tokenType})
}
