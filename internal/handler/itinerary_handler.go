package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/middleware"
	"github.com/octobees/itinerary-maker/api/internal/service"
	"github.com/octobees/itinerary-maker/api/internal/storage"
)

// DelegationLookup resolves the filter values a user may choose from.
type DelegationLookup interface {
	Lookup(ctx context.Context, userID uuid.UUID) (*dto.Delegations, error)
}

// GenerationJobs starts background generations and reports on them.
type GenerationJobs interface {
	service.GenerationStarter
	Get(id, owner uuid.UUID) (*service.GenerationJob, error)
}

// ItineraryReader serves saved itineraries and their workbooks.
type ItineraryReader interface {
	Get(ctx context.Context, id uuid.UUID) (*entity.Itinerary, error)
	ExportURL(ctx context.Context, actor, id uuid.UUID) (string, error)
	OpenExport(ctx context.Context, actor, id uuid.UUID) (storage.Info, io.ReadCloser, error)
}

// ItineraryHandler drives the filter form workflow.
type ItineraryHandler struct {
	delegations DelegationLookup
	jobs        GenerationJobs
	itineraries ItineraryReader
	logger      *zap.Logger
}

// NewItineraryHandler constructs a handler instance.
func NewItineraryHandler(delegations DelegationLookup, jobs GenerationJobs, itineraries ItineraryReader) *ItineraryHandler {
	return &ItineraryHandler{delegations: delegations, jobs: jobs, itineraries: itineraries, logger: zap.NewNop()}
}

// WithLogger sets the logger used for degraded delegation lookups.
func (h *ItineraryHandler) WithLogger(logger *zap.Logger) *ItineraryHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

// formDelegations never fails: a lookup error renders empty controls.
func (h *ItineraryHandler) formDelegations(c echo.Context, userID uuid.UUID) *dto.Delegations {
	delegations, err := h.delegations.Lookup(c.Request().Context(), userID)
	if err != nil {
		h.logger.Warn("delegation lookup failed, rendering empty controls",
			zap.String("request_id", middleware.RequestIDFromContext(c)),
			zap.String("user_id", userID.String()),
			zap.Error(err),
		)
		return nil
	}
	return delegations
}

// Delegations handles GET /itinerary/delegations. The data is null when the
// user has no delegations.
func (h *ItineraryHandler) Delegations(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return respond(c, err, "")
	}
	delegations, err := h.delegations.Lookup(c.Request().Context(), who.ID)
	if err != nil {
		return respond(c, err, "failed to load delegations")
	}
	return Success(c, http.StatusOK, "delegations retrieved", delegations)
}

// Form handles GET /itinerary/form and renders the empty filter form.
func (h *ItineraryHandler) Form(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return respond(c, err, "")
	}
	form := service.NewFilterForm(h.formDelegations(c, who.ID), who.ID, nil)
	return Success(c, http.StatusOK, "filter form rendered", form.Render())
}

// Submit handles POST /itineraries. Only the sets present in the payload are
// applied; the job runs in the background and is polled via JobStatus.
func (h *ItineraryHandler) Submit(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return respond(c, err, "")
	}
	var req dto.SubmitItineraryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return respond(c, err, "")
	}

	ctx := c.Request().Context()
	form := service.NewFilterForm(h.formDelegations(c, who.ID), who.ID, h.jobs)
	if req.States != nil {
		form.OnStatesChange(req.States)
	}
	if req.BusinessModels != nil {
		form.OnBusinessModelsChange(req.BusinessModels)
	}
	if req.Categories != nil {
		form.OnCategoriesChange(req.Categories)
	}
	if req.Subcategories != nil {
		form.OnSubcategoriesChange(req.Subcategories)
	}
	if req.AnnualSalesRanges != nil {
		form.OnAnnualSalesRangesChange(req.AnnualSalesRanges)
	}

	stage := form.Stage()
	job, err := form.Submit(ctx, req.Name, func(next dto.Stage) { stage = next })
	if err != nil {
		return respond(c, err, "failed to start itinerary generation")
	}

	return Success(c, http.StatusAccepted, "itinerary generation started", dto.SubmitItineraryResponse{
		Stage:  stage,
		JobID:  job.ID.String(),
		Status: string(job.Status()),
	})
}

// JobStatus handles GET /itineraries/jobs/:id.
func (h *ItineraryHandler) JobStatus(c echo.Context) error {
	who, err := caller(c)
	if err != nil {
		return respond(c, err, "")
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return respond(c, err, "")
	}
	job, err := h.jobs.Get(id, who.ID)
	if err != nil {
		return respond(c, err, "failed to load job")
	}
	return Success(c, http.StatusOK, "job retrieved", job.Snapshot())
}

// Get handles GET /itineraries/:id. Only the creator or an admin may read it.
func (h *ItineraryHandler) Get(c echo.Context) error {
	_, itinerary, err := h.load(c)
	if err != nil {
		return respond(c, err, "failed to load itinerary")
	}
	return Success(c, http.StatusOK, "itinerary retrieved", itinerary)
}

// Export handles GET /itineraries/:id/export. It returns a signed link when the
// blob store supports one and streams the workbook otherwise, or when
// ?download=1 is given.
func (h *ItineraryHandler) Export(c echo.Context) error {
	who, itinerary, err := h.load(c)
	if err != nil {
		return respond(c, err, "failed to load itinerary")
	}

	ctx := c.Request().Context()
	if c.QueryParam("download") != "1" {
		url, err := h.itineraries.ExportURL(ctx, who.ID, itinerary.ID)
		switch {
		case err == nil:
			return Success(c, http.StatusOK, "export ready", dto.ExportResponse{URL: url})
		case !errors.Is(err, storage.ErrUnsupported):
			return respond(c, err, "failed to export itinerary")
		}
	}

	info, body, err := h.itineraries.OpenExport(ctx, who.ID, itinerary.ID)
	if err != nil {
		return respond(c, err, "failed to export itinerary")
	}
	defer body.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "itinerary-"+itinerary.ID.String()+".xlsx"))
	return c.Stream(http.StatusOK, info.ContentType, body)
}

func (h *ItineraryHandler) load(c echo.Context) (service.Caller, *entity.Itinerary, error) {
	who, err := caller(c)
	if err != nil {
		return who, nil, err
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		return who, nil, err
	}
	itinerary, err := h.itineraries.Get(c.Request().Context(), id)
	if err != nil {
		return who, nil, err
	}
	if !who.IsAdmin && itinerary.AddedBy.ID() != who.ID {
		return who, nil, service.ErrForbidden
	}
	return who, itinerary, nil
}
