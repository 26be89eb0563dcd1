package entity

import (
	"time"

	"github.com/google/uuid"
)

// Selection holds the chosen value ids per dimension. A nil or empty set places
// no constraint on its dimension.
type Selection struct {
	States            []string `json:"states"`
	BusinessModels    []string `json:"business_models"`
	Categories        []string `json:"categories"`
	Subcategories     []string `json:"subcategories"`
	AnnualSalesRanges []string `json:"annual_sales_ranges"`
}

// Values returns the selected ids for a dimension.
func (s Selection) Values(d Dimension) []string {
	switch d {
	case DimensionState:
		return s.States
	case DimensionBusinessModel:
		return s.BusinessModels
	case DimensionCategory:
		return s.Categories
	case DimensionSubcategory:
		return s.Subcategories
	case DimensionAnnualSalesRange:
		return s.AnnualSalesRanges
	default:
		return nil
	}
}

// IsEmpty reports whether no dimension is constrained.
func (s Selection) IsEmpty() bool {
	for _, d := range Dimensions {
		if len(s.Values(d)) > 0 {
			return false
		}
	}
	return true
}

// ItineraryStop is a company snapshot taken when the itinerary was generated.
type ItineraryStop struct {
	Position     int       `json:"position"`
	CompanyID    uuid.UUID `json:"company_id"`
	CompanyName  string    `json:"company_name"`
	Address      *string   `json:"address,omitempty"`
	Website      *string   `json:"website,omitempty"`
	PrimaryPhone *string   `json:"primary_phone,omitempty"`
}

// Itinerary is the saved outcome of filtering companies.
type Itinerary struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Selection Selection       `json:"selection"`
	Stops     []ItineraryStop `json:"stops"`
	ExportKey *string         `json:"export_key,omitempty"`
	Metadata
}

// NewItinerary builds an itinerary with creation metadata.
func NewItinerary(name string, selection Selection, stops []ItineraryStop, actor ActorRef, now time.Time) Itinerary {
	if stops == nil {
		stops = []ItineraryStop{}
	}
	return Itinerary{
		ID:        uuid.New(),
		Name:      name,
		Selection: selection,
		Stops:     stops,
		Metadata:  NewMetadata(actor, now),
	}
}

// CompanyIDs lists the companies on the itinerary in stop order.
func (it Itinerary) CompanyIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(it.Stops))
	for _, stop := range it.Stops {
		ids = append(ids, stop.CompanyID)
	}
	return ids
}

// ItineraryOverrides lists fields to replace; nil keeps the current value.
type ItineraryOverrides struct {
	Name      *string
	ExportKey *string
	Metadata  MetadataOverrides
}

// With returns a copy with the overrides applied.
func (it Itinerary) With(o ItineraryOverrides) Itinerary {
	out := it
	out.Stops = append([]ItineraryStop(nil), it.Stops...)
	if o.Name != nil {
		out.Name = *o.Name
	}
	if o.ExportKey != nil {
		out.ExportKey = cloneString(o.ExportKey)
	}
	out.Metadata = it.Metadata.With(o.Metadata)
	return out
}
