package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
)

// ErrFormAlreadySubmitted is returned when a form is submitted twice.
var ErrFormAlreadySubmitted = errors.New("filter form already submitted")

var dimensionTitles = map[entity.Dimension]string{
	entity.DimensionState:            "States",
	entity.DimensionBusinessModel:    "Business Model",
	entity.DimensionCategory:         "Category",
	entity.DimensionSubcategory:      "Subcategory",
	entity.DimensionAnnualSalesRange: "Annual Sales Range",
}

// GenerationStarter launches itinerary generation without waiting for it.
type GenerationStarter interface {
	Start(ctx context.Context, owner uuid.UUID, name string, selection entity.Selection) (*GenerationJob, error)
}

// FilterForm holds the five selection sets of one user while they pick filters.
// Each set is replaced only by its own change handler.
type FilterForm struct {
	mu          sync.Mutex
	delegations *dto.Delegations
	owner       uuid.UUID
	starter     GenerationStarter
	stage       dto.Stage
	selection   entity.Selection
	submitted   bool
}

// NewFilterForm builds a form for owner. Nil delegations render empty controls.
func NewFilterForm(delegations *dto.Delegations, owner uuid.UUID, starter GenerationStarter) *FilterForm {
	return &FilterForm{
		delegations: delegations,
		owner:       owner,
		starter:     starter,
		stage:       dto.StageSelectFilters,
	}
}

// Stage returns the workflow stage the form is in.
func (f *FilterForm) Stage() dto.Stage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stage
}

// Controls returns one multi-select control per dimension in display order.
func (f *FilterForm) Controls() []dto.FormControl {
	f.mu.Lock()
	defer f.mu.Unlock()

	controls := make([]dto.FormControl, 0, len(entity.Dimensions))
	for _, d := range entity.Dimensions {
		options := append([]dto.Option{}, f.delegations.For(d)...)
		selected := append([]string{}, f.selection.Values(d)...)
		controls = append(controls, dto.FormControl{
			Title:     dimensionTitles[d],
			Dimension: string(d),
			IsMulti:   true,
			Options:   options,
			Selected:  selected,
		})
	}
	return controls
}

// Render returns the controls with the current stage.
func (f *FilterForm) Render() dto.FilterFormResponse {
	return dto.FilterFormResponse{Stage: f.Stage(), Controls: f.Controls()}
}

// OnStatesChange replaces the selected states.
func (f *FilterForm) OnStatesChange(values []string) { f.set(entity.DimensionState, values) }

// OnBusinessModelsChange replaces the selected business models.
func (f *FilterForm) OnBusinessModelsChange(values []string) {
	f.set(entity.DimensionBusinessModel, values)
}

// OnCategoriesChange replaces the selected categories.
func (f *FilterForm) OnCategoriesChange(values []string) { f.set(entity.DimensionCategory, values) }

// OnSubcategoriesChange replaces the selected subcategories.
func (f *FilterForm) OnSubcategoriesChange(values []string) {
	f.set(entity.DimensionSubcategory, values)
}

// OnAnnualSalesRangesChange replaces the selected annual sales ranges.
func (f *FilterForm) OnAnnualSalesRangesChange(values []string) {
	f.set(entity.DimensionAnnualSalesRange, values)
}

// OnChange dispatches a change event by dimension.
func (f *FilterForm) OnChange(d entity.Dimension, values []string) error {
	if _, ok := dimensionTitles[d]; !ok {
		return fmt.Errorf("unknown dimension %q", d)
	}
	f.set(d, values)
	return nil
}

// Selection returns a copy of the current sets. Untouched sets are nil.
func (f *FilterForm) Selection() entity.Selection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneSelection(f.selection)
}

func (f *FilterForm) set(d entity.Dimension, values []string) {
	values = cloneSet(values)
	f.mu.Lock()
	defer f.mu.Unlock()
	switch d {
	case entity.DimensionState:
		f.selection.States = values
	case entity.DimensionBusinessModel:
		f.selection.BusinessModels = values
	case entity.DimensionCategory:
		f.selection.Categories = values
	case entity.DimensionSubcategory:
		f.selection.Subcategories = values
	case entity.DimensionAnnualSalesRange:
		f.selection.AnnualSalesRanges = values
	}
}

// Submit consumes the selection. advance is called with GENERATE_AND_SAVE
// before generation is started, and generation runs in the background.
func (f *FilterForm) Submit(ctx context.Context, name string, advance func(dto.Stage)) (*GenerationJob, error) {
	if f.starter == nil {
		return nil, errors.New("filter form has no generator")
	}

	f.mu.Lock()
	if f.submitted {
		f.mu.Unlock()
		return nil, ErrFormAlreadySubmitted
	}
	f.submitted = true
	f.stage = dto.StageGenerateAndSave
	selection := cloneSelection(f.selection)
	f.mu.Unlock()

	if advance != nil {
		advance(dto.StageGenerateAndSave)
	}
	return f.starter.Start(ctx, f.owner, name, selection)
}

func cloneSet(values []string) []string {
	if values == nil {
		return nil
	}
	return append([]string{}, values...)
}

func cloneSelection(s entity.Selection) entity.Selection {
	return entity.Selection{
		States:            cloneSet(s.States),
		BusinessModels:    cloneSet(s.BusinessModels),
		Categories:        cloneSet(s.Categories),
		Subcategories:     cloneSet(s.Subcategories),
		AnnualSalesRanges: cloneSet(s.AnnualSalesRanges),
	}
}
