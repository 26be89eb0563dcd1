package service

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/itinerary-maker/api/internal/auth"
	"github.com/octobees/itinerary-maker/api/internal/repository"
)

// AuthService coordinates credential validation and token issuance.
type AuthService struct {
	users repository.UsersRepository
	roles repository.AccountRolesRepository
	jwt   *auth.JWTManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UsersRepository, roles repository.AccountRolesRepository, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{users: users, roles: roles, jwt: jwtManager}
}

// Login validates credentials and returns a JWT carrying the role short name.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return "", invalidf("email and password must not be empty")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	role := ""
	if user.AccountRoleID != nil {
		r, err := s.roles.FindByID(ctx, *user.AccountRoleID)
		switch {
		case err == nil:
			role = r.ShortName
		case !errors.Is(err, repository.ErrAccountRoleNotFound):
			return "", err
		}
	}

	return s.jwt.GenerateToken(user.ID.String(), user.Email, role)
}
