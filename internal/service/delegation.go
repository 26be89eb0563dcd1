package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/octobees/itinerary-maker/api/internal/cache"
	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/repository"
)

const defaultDelegationTTL = 5 * time.Minute

func delegationCacheKey(roleID uuid.UUID) string {
	return "delegations:" + roleID.String()
}

// DelegationOptions tunes DelegationService. Zero values are usable.
type DelegationOptions struct {
	Cache cache.Cache
	TTL   time.Duration
	// Roles at or above this weight see every value. Zero disables the shortcut.
	FullWeight int
	Logger     *zap.Logger
}

// DelegationService answers which filter values a user may choose from.
type DelegationService struct {
	users      repository.UsersRepository
	roles      repository.AccountRolesRepository
	lookups    repository.LookupsRepository
	cache      cache.Cache
	ttl        time.Duration
	fullWeight int
	logger     *zap.Logger
}

// NewDelegationService wires the lookup.
func NewDelegationService(users repository.UsersRepository, roles repository.AccountRolesRepository, lookups repository.LookupsRepository, opts DelegationOptions) *DelegationService {
	if opts.TTL <= 0 {
		opts.TTL = defaultDelegationTTL
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &DelegationService{
		users:      users,
		roles:      roles,
		lookups:    lookups,
		cache:      opts.Cache,
		ttl:        opts.TTL,
		fullWeight: opts.FullWeight,
		logger:     opts.Logger,
	}
}

// Lookup returns the delegated options of userID per dimension, or nil when
// no delegation data exists for the user. A dimension that cannot be read
// degrades to an empty list and the others are still returned.
func (s *DelegationService) Lookup(ctx context.Context, userID uuid.UUID) (*dto.Delegations, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			delegationLookups.WithLabelValues("none").Inc()
			return nil, nil
		}
		return nil, err
	}
	if user.AccountRoleID == nil {
		delegationLookups.WithLabelValues("none").Inc()
		return nil, nil
	}

	role, err := s.roles.FindByID(ctx, *user.AccountRoleID)
	if err != nil {
		if errors.Is(err, repository.ErrAccountRoleNotFound) {
			delegationLookups.WithLabelValues("none").Inc()
			return nil, nil
		}
		return nil, err
	}

	key := delegationCacheKey(role.ID)
	if s.cache != nil {
		var cached dto.Delegations
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			delegationLookups.WithLabelValues("cache").Inc()
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.logger.Debug("delegation cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	out := &dto.Delegations{}
	degraded := false
	total := 0
	for _, dim := range entity.Dimensions {
		values, err := s.values(ctx, role, dim)
		if err != nil {
			degraded = true
			delegationDimensionFailures.WithLabelValues(string(dim)).Inc()
			s.logger.Warn("delegation dimension unavailable",
				zap.String("dimension", string(dim)),
				zap.String("account_role_id", role.ID.String()),
				zap.Error(err),
			)
			out.Set(dim, []dto.Option{})
			continue
		}
		options := make([]dto.Option, 0, len(values))
		for _, v := range values {
			options = append(options, dto.Option{Value: v.ID, Label: v.Label})
		}
		total += len(options)
		out.Set(dim, options)
	}

	if total == 0 && !degraded {
		delegationLookups.WithLabelValues("none").Inc()
		return nil, nil
	}
	delegationLookups.WithLabelValues("store").Inc()

	if s.cache != nil && !degraded {
		if err := s.cache.SetJSON(ctx, key, out, s.ttl); err != nil {
			s.logger.Debug("delegation cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

func (s *DelegationService) values(ctx context.Context, role *entity.AccountRole, dim entity.Dimension) ([]entity.LookupValue, error) {
	if s.fullWeight > 0 && role.Weight >= s.fullWeight {
		return s.lookups.ListValues(ctx, dim)
	}
	return s.lookups.ListDelegatedValues(ctx, role.ID, dim)
}
