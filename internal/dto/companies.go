package dto

import "github.com/octobees/itinerary-maker/api/internal/entity"

// ListFilter contains query parameters for company listing endpoints.
type ListFilter struct {
	Q         string
	Selection entity.Selection
	Page      int
	PerPage   int
}

// CreateCompanyRequest captures the payload for new companies.
type CreateCompanyRequest struct {
	Name               string  `json:"name" validate:"required,max=255"`
	StateID            string  `json:"state_id" validate:"max=64"`
	BusinessModelID    string  `json:"business_model_id" validate:"max=64"`
	CategoryID         string  `json:"category_id" validate:"max=64"`
	SubcategoryID      string  `json:"subcategory_id" validate:"max=64"`
	AnnualSalesRangeID string  `json:"annual_sales_range_id" validate:"max=64"`
	Address            *string `json:"address,omitempty" validate:"omitempty,max=512"`
	Website            *string `json:"website,omitempty" validate:"omitempty,url"`
}

// UpdateCompanyRequest captures partial updates. Omitted fields are left untouched.
type UpdateCompanyRequest struct {
	Name               *string `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	StateID            *string `json:"state_id,omitempty" validate:"omitempty,max=64"`
	BusinessModelID    *string `json:"business_model_id,omitempty" validate:"omitempty,max=64"`
	CategoryID         *string `json:"category_id,omitempty" validate:"omitempty,max=64"`
	SubcategoryID      *string `json:"subcategory_id,omitempty" validate:"omitempty,max=64"`
	AnnualSalesRangeID *string `json:"annual_sales_range_id,omitempty" validate:"omitempty,max=64"`
	Address            *string `json:"address,omitempty" validate:"omitempty,max=512"`
	Website            *string `json:"website,omitempty" validate:"omitempty,url"`
}
