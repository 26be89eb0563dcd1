package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/itinerary-maker/api/internal/cache"
	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/repository"
)

// AccountRolesService manages authorization roles.
type AccountRolesService struct {
	repo  repository.AccountRolesRepository
	cache cache.Cache
	now   func() time.Time
}

// NewAccountRolesService builds the service. The cache may be nil.
func NewAccountRolesService(repo repository.AccountRolesRepository, c cache.Cache) *AccountRolesService {
	return &AccountRolesService{repo: repo, cache: c, now: time.Now}
}

// ListRoles returns live roles, heaviest first.
func (s *AccountRolesService) ListRoles(ctx context.Context) ([]entity.AccountRole, error) {
	return s.repo.List(ctx)
}

// CreateRole stores a new role.
func (s *AccountRolesService) CreateRole(ctx context.Context, actor uuid.UUID, req dto.CreateAccountRoleRequest) (*entity.AccountRole, error) {
	fullName := strings.TrimSpace(req.FullName)
	shortName := strings.ToLower(strings.TrimSpace(req.ShortName))
	if fullName == "" || shortName == "" {
		return nil, invalidf("full_name and short_name are required")
	}
	if req.Weight < 0 {
		return nil, invalidf("weight must not be negative")
	}

	role := entity.NewAccountRole(fullName, shortName, req.Weight, entity.UnresolvedActor(actor), s.now())
	if err := s.repo.Create(ctx, role); err != nil {
		return nil, err
	}
	return &role, nil
}

// DeleteRole soft deletes a role and drops its cached delegations.
func (s *AccountRolesService) DeleteRole(ctx context.Context, actor, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id, actor, s.now().UTC()); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, delegationCacheKey(id))
	}
	return nil
}
