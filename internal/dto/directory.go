package dto

// CreateContactNumberRequest attaches a phone number to one or more companies.
// The path company is always included.
type CreateContactNumberRequest struct {
	Number          string   `json:"number" validate:"required,max=32"`
	Type            string   `json:"type,omitempty"`
	OtherCompanyIDs []string `json:"other_company_ids,omitempty" validate:"omitempty,dive,uuid"`
	IsPrimary       bool     `json:"is_primary"`
	IsVerified      bool     `json:"is_verified"`
}

// CreateSocialMediaRequest registers a social profile for a user.
type CreateSocialMediaRequest struct {
	ProfileURL string `json:"profile_url" validate:"required"`
	Platform   string `json:"platform,omitempty"`
	Username   string `json:"username,omitempty" validate:"omitempty,max=100"`
	IsPublic   bool   `json:"is_public"`
}

// CreateAccountRoleRequest defines a new authorization role.
type CreateAccountRoleRequest struct {
	FullName  string `json:"full_name" validate:"required,max=100"`
	ShortName string `json:"short_name" validate:"required,max=32"`
	Weight    int    `json:"weight" validate:"gte=0"`
}
