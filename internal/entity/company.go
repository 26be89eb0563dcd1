package entity

import (
	"time"

	"github.com/google/uuid"
)

// Company represents a business stored in the directory.
type Company struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	StateID            string    `json:"state_id"`
	BusinessModelID    string    `json:"business_model_id"`
	CategoryID         string    `json:"category_id"`
	SubcategoryID      string    `json:"subcategory_id"`
	AnnualSalesRangeID string    `json:"annual_sales_range_id"`
	Address            *string   `json:"address,omitempty"`
	Website            *string   `json:"website,omitempty"`
	Metadata
}

// Classification groups the lookup values a company is filed under.
type Classification struct {
	StateID            string
	BusinessModelID    string
	CategoryID         string
	SubcategoryID      string
	AnnualSalesRangeID string
}

// NewCompany builds a company with a fresh id and creation metadata.
func NewCompany(name string, class Classification, actor ActorRef, now time.Time) Company {
	return Company{
		ID:                 uuid.New(),
		Name:               name,
		StateID:            class.StateID,
		BusinessModelID:    class.BusinessModelID,
		CategoryID:         class.CategoryID,
		SubcategoryID:      class.SubcategoryID,
		AnnualSalesRangeID: class.AnnualSalesRangeID,
		Metadata:           NewMetadata(actor, now),
	}
}

// ClassificationValue returns the lookup value id the company holds for a dimension.
func (c Company) ClassificationValue(d Dimension) string {
	switch d {
	case DimensionState:
		return c.StateID
	case DimensionBusinessModel:
		return c.BusinessModelID
	case DimensionCategory:
		return c.CategoryID
	case DimensionSubcategory:
		return c.SubcategoryID
	case DimensionAnnualSalesRange:
		return c.AnnualSalesRangeID
	default:
		return ""
	}
}

// CompanyOverrides lists company fields to replace; nil keeps the current value.
type CompanyOverrides struct {
	Name               *string
	StateID            *string
	BusinessModelID    *string
	CategoryID         *string
	SubcategoryID      *string
	AnnualSalesRangeID *string
	Address            *string
	Website            *string
	Metadata           MetadataOverrides
}

// With returns a copy of the company with the overrides applied.
func (c Company) With(o CompanyOverrides) Company {
	out := c
	if o.Name != nil {
		out.Name = *o.Name
	}
	if o.StateID != nil {
		out.StateID = *o.StateID
	}
	if o.BusinessModelID != nil {
		out.BusinessModelID = *o.BusinessModelID
	}
	if o.CategoryID != nil {
		out.CategoryID = *o.CategoryID
	}
	if o.SubcategoryID != nil {
		out.SubcategoryID = *o.SubcategoryID
	}
	if o.AnnualSalesRangeID != nil {
		out.AnnualSalesRangeID = *o.AnnualSalesRangeID
	}
	if o.Address != nil {
		out.Address = cloneString(o.Address)
	}
	if o.Website != nil {
		out.Website = cloneString(o.Website)
	}
	out.Metadata = c.Metadata.With(o.Metadata)
	return out
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
