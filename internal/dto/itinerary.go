package dto

import (
	"time"

	"github.com/octobees/itinerary-maker/api/internal/entity"
)

// Stage identifies where the user is in the itinerary workflow.
type Stage string

const (
	StageSelectFilters   Stage = "SELECT_FILTERS"
	StageGenerateAndSave Stage = "GENERATE_AND_SAVE"
)

// Option is one selectable value of a filter control.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Delegations lists the filter values the current user may choose from.
type Delegations struct {
	DelegatedStates            []Option `json:"delegatedStates"`
	DelegatedBusinessModels    []Option `json:"delegatedBusinessModels"`
	DelegatedCategories        []Option `json:"delegatedCategories"`
	DelegatedSubcategories     []Option `json:"delegatedSubcategories"`
	DelegatedAnnualSalesRanges []Option `json:"delegatedAnnualSalesRanges"`
}

// For returns the options delegated for a dimension. It is safe on a nil receiver.
func (d *Delegations) For(dim entity.Dimension) []Option {
	if d == nil {
		return nil
	}
	switch dim {
	case entity.DimensionState:
		return d.DelegatedStates
	case entity.DimensionBusinessModel:
		return d.DelegatedBusinessModels
	case entity.DimensionCategory:
		return d.DelegatedCategories
	case entity.DimensionSubcategory:
		return d.DelegatedSubcategories
	case entity.DimensionAnnualSalesRange:
		return d.DelegatedAnnualSalesRanges
	default:
		return nil
	}
}

// Set replaces the options of a dimension.
func (d *Delegations) Set(dim entity.Dimension, options []Option) {
	switch dim {
	case entity.DimensionState:
		d.DelegatedStates = options
	case entity.DimensionBusinessModel:
		d.DelegatedBusinessModels = options
	case entity.DimensionCategory:
		d.DelegatedCategories = options
	case entity.DimensionSubcategory:
		d.DelegatedSubcategories = options
	case entity.DimensionAnnualSalesRange:
		d.DelegatedAnnualSalesRanges = options
	}
}

// FormControl describes one multi-select control of the filter form.
type FormControl struct {
	Title     string   `json:"title"`
	Dimension string   `json:"dimension"`
	IsMulti   bool     `json:"is_multi"`
	Options   []Option `json:"options"`
	Selected  []string `json:"selected"`
}

// FilterFormResponse is the rendered filter form.
type FilterFormResponse struct {
	Stage    Stage         `json:"stage"`
	Controls []FormControl `json:"controls"`
}

// SubmitItineraryRequest carries the five selection sets. A null set means
// the control was never touched.
type SubmitItineraryRequest struct {
	Name              string   `json:"name,omitempty" validate:"max=255"`
	States            []string `json:"states"`
	BusinessModels    []string `json:"business_models"`
	Categories        []string `json:"categories"`
	Subcategories     []string `json:"subcategories"`
	AnnualSalesRanges []string `json:"annual_sales_ranges"`
}

// SubmitItineraryResponse reports the stage reached and the background job to poll.
type SubmitItineraryResponse struct {
	Stage  Stage  `json:"stage"`
	JobID  string `json:"job_id"`
	Status string `json:"status"`
}

// JobStatusResponse reports the progress of an itinerary generation job.
type JobStatusResponse struct {
	JobID       string     `json:"job_id"`
	Stage       Stage      `json:"stage"`
	Status      string     `json:"status"`
	ItineraryID *string    `json:"itinerary_id,omitempty"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// ExportResponse points at a downloadable itinerary workbook.
type ExportResponse struct {
	URL string `json:"url"`
}
