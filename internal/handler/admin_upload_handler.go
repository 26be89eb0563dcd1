package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/octobees/itinerary-maker/api/internal/middleware"
	"github.com/octobees/itinerary-maker/api/internal/service"
)

// CompanyImporter ingests company rows from CSV.
type CompanyImporter interface {
	ImportCompaniesCSV(ctx context.Context, actor uuid.UUID, r io.Reader) (service.UploadSummary, error)
}

// AdminUploadHandler handles CSV ingestion for administrators.
type AdminUploadHandler struct {
	importer CompanyImporter
}

// NewAdminUploadHandler wires a handler backed by the companies service.
func NewAdminUploadHandler(importer CompanyImporter) *AdminUploadHandler {
	return &AdminUploadHandler{importer: importer}
}

// UploadCSV handles POST /admin/upload-csv requests.
func (h *AdminUploadHandler) UploadCSV(c echo.Context) error {
	actor, err := middleware.UserIDFromContext(c)
	if err != nil {
		return respond(c, err, "")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.importer.ImportCompaniesCSV(c.Request().Context(), actor, file)
	if err != nil {
		return respond(c, err, "failed to process csv")
	}

	return Success(c, http.StatusOK, "companies CSV processed", summary)
}
