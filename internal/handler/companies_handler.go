package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/middleware"
)

// CompanyService is the company catalogue behaviour the handlers rely on.
type CompanyService interface {
	ListCompanies(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error)
	GetCompany(ctx context.Context, id uuid.UUID, expandActors bool) (*entity.Company, error)
	CreateCompany(ctx context.Context, actor uuid.UUID, req dto.CreateCompanyRequest) (*entity.Company, error)
	UpdateCompany(ctx context.Context, actor, id uuid.UUID, req dto.UpdateCompanyRequest) (*entity.Company, error)
	DeleteCompany(ctx context.Context, actor, id uuid.UUID) error
}

// CompaniesHandler exposes company catalogue endpoints.
type CompaniesHandler struct {
	service CompanyService
}

// NewCompaniesHandler creates a new handler instance.
func NewCompaniesHandler(service CompanyService) *CompaniesHandler {
	return &CompaniesHandler{service: service}
}

// List handles GET /companies requests. Each dimension accepts repeated or
// comma separated ids, e.g. ?states=a,b&categories=c.
func (h *CompaniesHandler) List(c echo.Context) error {
	filter := dto.ListFilter{
		Q: strings.TrimSpace(c.QueryParam("q")),
		Selection: entity.Selection{
			States:            queryList(c, "states"),
			BusinessModels:    queryList(c, "business_models"),
			Categories:        queryList(c, "categories"),
			Subcategories:     queryList(c, "subcategories"),
			AnnualSalesRanges: queryList(c, "annual_sales_ranges"),
		},
		Page:    parseIntDefault(c.QueryParam("page"), 1),
		PerPage: parseIntDefault(c.QueryParam("per_page"), 20),
	}

	companies, err := h.service.ListCompanies(c.Request().Context(), filter)
	if err != nil {
		return respond(c, err, "failed to list companies")
	}

	return Success(c, http.StatusOK, "companies retrieved", companies)
}

// Get handles GET /companies/:id. ?expand=actors resolves audit users.
func (h *CompaniesHandler) Get(c echo.Context) error {
	id, err := pathUUID(c, "id")
	if err != nil {
		return respond(c, err, "")
	}

	company, err := h.service.GetCompany(c.Request().Context(), id, c.QueryParam("expand") == "actors")
	if err != nil {
		return respond(c, err, "failed to load company")
	}
	return Success(c, http.StatusOK, "company retrieved", company)
}

// Create handles POST /companies.
func (h *CompaniesHandler) Create(c echo.Context) error {
	actor, err := middleware.UserIDFromContext(c)
	if err != nil {
		return respond(c, err, "")
	}
	var req dto.CreateCompanyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, err, "")
	}

	company, err := h.service.CreateCompany(c.Request().Context(), actor, req)
	if err != nil {
		return respond(c, err, "failed to create company")
	}
	return Success(c, http.StatusCreated, "company created", company)
}

// Update handles PATCH /companies/:id.
func (h *CompaniesHandler) Update(c echo.Context) error {
	actor, err := middleware.UserIDFromContext(c)
	if err != nil {
		return respond(c, err, "")
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respond(c, err, "")
	}
	var req dto.UpdateCompanyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, err, "")
	}

	company, err := h.service.UpdateCompany(c.Request().Context(), actor, id, req)
	if err != nil {
		return respond(c, err, "failed to update company")
	}
	return Success(c, http.StatusOK, "company updated", company)
}

// Delete handles DELETE /companies/:id.
func (h *CompaniesHandler) Delete(c echo.Context) error {
	actor, err := middleware.UserIDFromContext(c)
	if err != nil {
		return respond(c, err, "")
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respond(c, err, "")
	}

	if err := h.service.DeleteCompany(c.Request().Context(), actor, id); err != nil {
		return respond(c, err, "failed to delete company")
	}
	return Success(c, http.StatusOK, "company deleted", nil)
}

func queryList(c echo.Context, name string) []string {
	var out []string
	for _, raw := range c.QueryParams()[name] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
