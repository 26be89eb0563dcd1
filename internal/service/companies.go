package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/repository"
)

// CompaniesService exposes read/write operations for the company directory.
type CompaniesService struct {
	repo   repository.CompaniesRepository
	actors *ActorResolver
	now    func() time.Time
}

// UploadSummary reports how many rows were inserted or updated during import.
type UploadSummary struct {
	Inserted int `json:"inserted"`
	Updated  int `json:"updated"`
	Total    int `json:"total"`
}

// NewCompaniesService creates a new instance of CompaniesService.
func NewCompaniesService(repo repository.CompaniesRepository, actors *ActorResolver) *CompaniesService {
	return &CompaniesService{repo: repo, actors: actors, now: time.Now}
}

// ListCompanies returns companies respecting pagination defaults.
func (s *CompaniesService) ListCompanies(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = 20
	}
	if filter.PerPage > 100 {
		filter.PerPage = 100
	}
	filter.Q = strings.TrimSpace(filter.Q)
	return s.repo.List(ctx, filter)
}

// GetCompany returns a live company. With expandActors the metadata actors
// carry their user records.
func (s *CompaniesService) GetCompany(ctx context.Context, id uuid.UUID, expandActors bool) (*entity.Company, error) {
	company, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if expandActors && s.actors != nil {
		meta, err := s.actors.Resolve(ctx, company.Metadata)
		if err != nil {
			return nil, err
		}
		out := company.With(entity.CompanyOverrides{})
		out.Metadata = meta
		return &out, nil
	}
	return company, nil
}

// CreateCompany stores a new company on behalf of actor.
func (s *CompaniesService) CreateCompany(ctx context.Context, actor uuid.UUID, req dto.CreateCompanyRequest) (*entity.Company, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, invalidf("name is required")
	}

	company := entity.NewCompany(name, entity.Classification{
		StateID:            strings.TrimSpace(req.StateID),
		BusinessModelID:    strings.TrimSpace(req.BusinessModelID),
		CategoryID:         strings.TrimSpace(req.CategoryID),
		SubcategoryID:      strings.TrimSpace(req.SubcategoryID),
		AnnualSalesRangeID: strings.TrimSpace(req.AnnualSalesRangeID),
	}, entity.UnresolvedActor(actor), s.now())
	company = company.With(entity.CompanyOverrides{
		Address: normalizeString(req.Address),
		Website: normalizeString(req.Website),
	})

	if err := s.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return &company, nil
}

// UpdateCompany applies the provided fields and bumps the update stamp.
func (s *CompaniesService) UpdateCompany(ctx context.Context, actor, id uuid.UUID, req dto.UpdateCompanyRequest) (*entity.Company, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	overrides := entity.CompanyOverrides{
		StateID:            trimmed(req.StateID),
		BusinessModelID:    trimmed(req.BusinessModelID),
		CategoryID:         trimmed(req.CategoryID),
		SubcategoryID:      trimmed(req.SubcategoryID),
		AnnualSalesRangeID: trimmed(req.AnnualSalesRangeID),
		Address:            trimmed(req.Address),
		Website:            trimmed(req.Website),
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, invalidf("name cannot be empty")
		}
		overrides.Name = &name
	}

	updated := current.With(overrides)
	updated.Metadata = updated.Touch(entity.UnresolvedActor(actor), s.now())
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCompany soft deletes a company.
func (s *CompaniesService) DeleteCompany(ctx context.Context, actor, id uuid.UUID) error {
	return s.repo.SoftDelete(ctx, id, actor, s.now().UTC())
}

// ImportCompaniesCSV ingests companies data from a CSV reader.
func (s *CompaniesService) ImportCompaniesCSV(ctx context.Context, actor uuid.UUID, r io.Reader) (UploadSummary, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return UploadSummary{}, invalidf("csv file is empty")
		}
		return UploadSummary{}, fmt.Errorf("read csv header: %w", err)
	}

	indexMap, valErr := buildHeaderIndex(header)
	if valErr != nil {
		return UploadSummary{}, valErr
	}

	var records []repository.BulkUpsertCompanyInput
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return UploadSummary{}, fmt.Errorf("read csv row: %w", err)
		}

		name := column(row, indexMap, "name")
		if name == "" {
			continue
		}

		records = append(records, repository.BulkUpsertCompanyInput{
			Name:    name,
			Address: normalizeString(ptr(column(row, indexMap, "address"))),
			Website: normalizeString(ptr(column(row, indexMap, "website"))),
			Classification: entity.Classification{
				StateID:            column(row, indexMap, "state_id"),
				BusinessModelID:    column(row, indexMap, "business_model_id"),
				CategoryID:         column(row, indexMap, "category_id"),
				SubcategoryID:      column(row, indexMap, "subcategory_id"),
				AnnualSalesRangeID: column(row, indexMap, "annual_sales_range_id"),
			},
		})
	}
	if len(records) == 0 {
		return UploadSummary{}, invalidf("csv file has no company rows")
	}

	result, err := s.repo.BulkUpsertCompanies(ctx, actor, records)
	if err != nil {
		return UploadSummary{}, err
	}

	return UploadSummary{
		Inserted: result.Inserted,
		Updated:  result.Updated,
		Total:    result.Total,
	}, nil
}

var requiredCSVHeaders = []string{"name", "state_id", "business_model_id", "category_id", "subcategory_id", "annual_sales_range_id"}

func buildHeaderIndex(header []string) (map[string]int, error) {
	index := make(map[string]int)
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	missing := make([]string, 0)
	for _, required := range requiredCSVHeaders {
		if _, ok := index[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, invalidf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return index, nil
}

// column returns the trimmed cell for name, or "" when the column or cell is absent.
func column(row []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func normalizeString(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	return &v
}

func ptr(v string) *string { return &v }
