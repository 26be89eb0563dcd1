package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/repository"
)

// DefaultRoleShortName is assigned to users created without an explicit role.
const DefaultRoleShortName = "user"

const minPasswordLength = 8

// UserService encapsulates account registration and administrative operations for users.
type UserService struct {
	repo       repository.UsersRepository
	roles      repository.AccountRolesRepository
	normalizer *ContactNormalizer
	now        func() time.Time
}

// NewUserService builds a new UserService instance.
func NewUserService(repo repository.UsersRepository, roles repository.AccountRolesRepository, normalizer *ContactNormalizer) *UserService {
	if normalizer == nil {
		normalizer = NewContactNormalizer("")
	}
	return &UserService{repo: repo, roles: roles, normalizer: normalizer, now: time.Now}
}

// ListUsers returns all live users as DTOs.
func (s *UserService) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	roles, err := s.roles.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(roles))
	for _, r := range roles {
		names[r.ID] = r.ShortName
	}

	responses := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		role := ""
		if u.AccountRoleID != nil {
			role = names[*u.AccountRoleID]
		}
		responses = append(responses, toUserResponse(u, role))
	}
	return responses, nil
}

// Register creates a self-service account with the default role.
func (s *UserService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.UserResponse, error) {
	return s.create(ctx, nil, req.Email, req.Password, req.FirstName, req.LastName, "")
}

// CreateUser creates a new user with the supplied role on behalf of actor.
func (s *UserService) CreateUser(ctx context.Context, actor uuid.UUID, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	ref := entity.UnresolvedActor(actor)
	return s.create(ctx, &ref, req.Email, req.Password, req.FirstName, req.LastName, req.Role)
}

func (s *UserService) create(ctx context.Context, actor *entity.ActorRef, email, password, firstName, lastName, roleName string) (*dto.UserResponse, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, invalidf("email and password are required")
	}
	normalized, err := s.normalizer.Email(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, invalidf("password must be at least %d characters", minPasswordLength)
	}

	role, err := s.resolveRole(ctx, roleName)
	if err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var roleID *uuid.UUID
	short := ""
	if role != nil {
		roleID = &role.ID
		short = role.ShortName
	}
	user := entity.NewUser(normalized, string(hashed), roleID, actor, s.now())
	user.FirstName = strings.TrimSpace(firstName)
	user.LastName = strings.TrimSpace(lastName)

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	resp := toUserResponse(user, short)
	return &resp, nil
}

// resolveRole maps a short name to a role. An empty name selects the default
// role when it exists, and no role otherwise.
func (s *UserService) resolveRole(ctx context.Context, shortName string) (*entity.AccountRole, error) {
	shortName = strings.TrimSpace(shortName)
	if shortName == "" {
		role, err := s.roles.FindByShortName(ctx, DefaultRoleShortName)
		if errors.Is(err, repository.ErrAccountRoleNotFound) {
			return nil, nil
		}
		return role, err
	}
	role, err := s.roles.FindByShortName(ctx, shortName)
	if errors.Is(err, repository.ErrAccountRoleNotFound) {
		return nil, invalidf("unknown role %q", shortName)
	}
	return role, err
}

// UpdateUser mutates selected user fields.
func (s *UserService) UpdateUser(ctx context.Context, actor uuid.UUID, id string, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return nil, invalidf("invalid user id")
	}

	var overrides entity.UserOverrides
	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			return nil, invalidf("email cannot be empty")
		}
		email, err := s.normalizer.Email(*req.Email)
		if err != nil {
			return nil, err
		}
		overrides.Email = &email
	}
	if req.Password != nil {
		if strings.TrimSpace(*req.Password) == "" {
			return nil, invalidf("password cannot be empty")
		}
		if len(*req.Password) < minPasswordLength {
			return nil, invalidf("password must be at least %d characters", minPasswordLength)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		pwd := string(hashed)
		overrides.PasswordHash = &pwd
	}
	overrides.FirstName = trimmed(req.FirstName)
	overrides.LastName = trimmed(req.LastName)

	var role *entity.AccountRole
	if req.Role != nil {
		if strings.TrimSpace(*req.Role) == "" {
			return nil, invalidf("role cannot be empty")
		}
		if role, err = s.resolveRole(ctx, *req.Role); err != nil {
			return nil, err
		}
		overrides.AccountRoleID = &role.ID
	}

	current, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user := current.With(overrides)
	user.Metadata = user.Touch(entity.UnresolvedActor(actor), s.now())

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}

	short := ""
	if role != nil {
		short = role.ShortName
	} else if user.AccountRoleID != nil {
		if r, err := s.roles.FindByID(ctx, *user.AccountRoleID); err == nil {
			short = r.ShortName
		}
	}
	resp := toUserResponse(user, short)
	return &resp, nil
}

// DeleteUser soft deletes a user by id.
func (s *UserService) DeleteUser(ctx context.Context, actor uuid.UUID, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return invalidf("invalid user id")
	}
	return s.repo.SoftDelete(ctx, userID, actor, s.now().UTC())
}

func toUserResponse(u entity.User, role string) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      role,
	}
}
