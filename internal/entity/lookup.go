package entity

import "fmt"

// Dimension names one of the classification axes companies are filtered on.
type Dimension string

const (
	DimensionState            Dimension = "state"
	DimensionBusinessModel    Dimension = "business_model"
	DimensionCategory         Dimension = "category"
	DimensionSubcategory      Dimension = "subcategory"
	DimensionAnnualSalesRange Dimension = "annual_sales_range"
)

// Dimensions lists every filter dimension in display order.
var Dimensions = []Dimension{
	DimensionState,
	DimensionBusinessModel,
	DimensionCategory,
	DimensionSubcategory,
	DimensionAnnualSalesRange,
}

// ParseDimension validates a dimension name.
func ParseDimension(value string) (Dimension, error) {
	for _, d := range Dimensions {
		if string(d) == value {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown dimension %q", value)
}

// LookupValue is a selectable classification value such as a state or a category.
type LookupValue struct {
	ID        string    `json:"id"`
	Dimension Dimension `json:"dimension"`
	Label     string    `json:"label"`
	SortOrder int       `json:"sort_order"`
}
