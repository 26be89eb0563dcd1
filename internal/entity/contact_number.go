package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContactNumberType classifies a company phone number.
type ContactNumberType string

const (
	ContactNumberMobile   ContactNumberType = "mobile"
	ContactNumberLandline ContactNumberType = "landline"
	ContactNumberFax      ContactNumberType = "fax"
	ContactNumberTollFree ContactNumberType = "toll_free"
	ContactNumberOther    ContactNumberType = "other"
)

// ParseContactNumberType validates a stored or submitted number type.
func ParseContactNumberType(value string) (ContactNumberType, error) {
	switch t := ContactNumberType(strings.ToLower(strings.TrimSpace(value))); t {
	case ContactNumberMobile, ContactNumberLandline, ContactNumberFax, ContactNumberTollFree, ContactNumberOther:
		return t, nil
	default:
		return "", fmt.Errorf("unknown contact number type %q", value)
	}
}

// CompanyContactNumber is a phone number shared by one or more companies.
type CompanyContactNumber struct {
	ID         uuid.UUID         `json:"id"`
	Number     string            `json:"number"`
	CompanyIDs []uuid.UUID       `json:"company_ids"`
	Type       ContactNumberType `json:"type"`
	IsPrimary  bool              `json:"is_primary"`
	IsVerified bool              `json:"is_verified"`
	Metadata
}

// NewCompanyContactNumber builds an unverified, non-primary number.
func NewCompanyContactNumber(number string, companyIDs []uuid.UUID, kind ContactNumberType, actor ActorRef, now time.Time) CompanyContactNumber {
	return CompanyContactNumber{
		ID:         uuid.New(),
		Number:     number,
		CompanyIDs: append([]uuid.UUID(nil), companyIDs...),
		Type:       kind,
		Metadata:   NewMetadata(actor, now),
	}
}

// BelongsTo reports whether the number is attached to the company.
func (n CompanyContactNumber) BelongsTo(companyID uuid.UUID) bool {
	for _, id := range n.CompanyIDs {
		if id == companyID {
			return true
		}
	}
	return false
}

// ContactNumberOverrides lists fields to replace; nil keeps the current value.
type ContactNumberOverrides struct {
	Number     *string
	CompanyIDs []uuid.UUID
	Type       *ContactNumberType
	IsPrimary  *bool
	IsVerified *bool
	Metadata   MetadataOverrides
}

// With returns a copy with the overrides applied.
func (n CompanyContactNumber) With(o ContactNumberOverrides) CompanyContactNumber {
	out := n
	out.CompanyIDs = append([]uuid.UUID(nil), n.CompanyIDs...)
	if o.Number != nil {
		out.Number = *o.Number
	}
	if o.CompanyIDs != nil {
		out.CompanyIDs = append([]uuid.UUID(nil), o.CompanyIDs...)
	}
	if o.Type != nil {
		out.Type = *o.Type
	}
	if o.IsPrimary != nil {
		out.IsPrimary = *o.IsPrimary
	}
	if o.IsVerified != nil {
		out.IsVerified = *o.IsVerified
	}
	out.Metadata = n.Metadata.With(o.Metadata)
	return out
}
