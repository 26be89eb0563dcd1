package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/repository"
)

// ContactNumbersService manages the phone numbers attached to companies.
type ContactNumbersService struct {
	numbers    repository.ContactNumbersRepository
	companies  repository.CompaniesRepository
	normalizer *ContactNormalizer
	now        func() time.Time
}

// NewContactNumbersService builds the service.
func NewContactNumbersService(numbers repository.ContactNumbersRepository, companies repository.CompaniesRepository, normalizer *ContactNormalizer) *ContactNumbersService {
	if normalizer == nil {
		normalizer = NewContactNormalizer("")
	}
	return &ContactNumbersService{numbers: numbers, companies: companies, normalizer: normalizer, now: time.Now}
}

// ListForCompany returns the live numbers of a company, primary first.
func (s *ContactNumbersService) ListForCompany(ctx context.Context, companyID uuid.UUID) ([]entity.CompanyContactNumber, error) {
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		return nil, err
	}
	return s.numbers.ListByCompany(ctx, companyID)
}

// AddNumber normalizes and attaches a number to companyID and any other listed
// companies. The type is inferred when omitted. The first number of a company
// becomes its primary; a new primary demotes the previous one.
func (s *ContactNumbersService) AddNumber(ctx context.Context, actor, companyID uuid.UUID, req dto.CreateContactNumberRequest) (*entity.CompanyContactNumber, error) {
	if _, err := s.companies.FindByID(ctx, companyID); err != nil {
		return nil, err
	}

	e164, inferred, err := s.normalizer.Phone(req.Number)
	if err != nil {
		return nil, err
	}
	kind := inferred
	if strings.TrimSpace(req.Type) != "" {
		if kind, err = entity.ParseContactNumberType(req.Type); err != nil {
			return nil, invalidf("%v", err)
		}
	}

	companyIDs := []uuid.UUID{companyID}
	seen := map[uuid.UUID]struct{}{companyID: {}}
	for _, raw := range req.OtherCompanyIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return nil, invalidf("invalid company id %q", raw)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		if _, err := s.companies.FindByID(ctx, id); err != nil {
			return nil, fmt.Errorf("attach company %s: %w", id, err)
		}
		seen[id] = struct{}{}
		companyIDs = append(companyIDs, id)
	}

	existing, err := s.numbers.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ref := entity.UnresolvedActor(actor)
	primary := req.IsPrimary || len(existing) == 0
	number := entity.NewCompanyContactNumber(e164, companyIDs, kind, ref, now).With(entity.ContactNumberOverrides{
		IsPrimary:  &primary,
		IsVerified: &req.IsVerified,
	})

	// The previous primary is only demoted once the new number exists.
	if err := s.numbers.Create(ctx, number); err != nil {
		return nil, err
	}

	if primary {
		demoted := false
		for _, other := range existing {
			if !other.IsPrimary || other.ID == number.ID {
				continue
			}
			other = other.With(entity.ContactNumberOverrides{IsPrimary: &demoted})
			other.Metadata = other.Touch(ref, now)
			if err := s.numbers.Update(ctx, other); err != nil {
				return nil, fmt.Errorf("demote contact number %s: %w", other.ID, err)
			}
		}
	}
	return &number, nil
}

// DeleteNumber soft deletes a contact number.
func (s *ContactNumbersService) DeleteNumber(ctx context.Context, actor, id uuid.UUID) error {
	return s.numbers.SoftDelete(ctx, id, actor, s.now().UTC())
}
