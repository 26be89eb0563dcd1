package entity

import (
	"time"

	"github.com/google/uuid"
)

// AccountRole is an authorization role. Higher weight means broader access.
type AccountRole struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	ShortName string    `json:"short_name"`
	Weight    int       `json:"weight"`
	Metadata
}

// NewAccountRole builds a role with creation metadata.
func NewAccountRole(fullName, shortName string, weight int, actor ActorRef, now time.Time) AccountRole {
	return AccountRole{
		ID:        uuid.New(),
		FullName:  fullName,
		ShortName: shortName,
		Weight:    weight,
		Metadata:  NewMetadata(actor, now),
	}
}

// AccountRoleOverrides lists fields to replace; nil keeps the current value.
type AccountRoleOverrides struct {
	FullName  *string
	ShortName *string
	Weight    *int
	Metadata  MetadataOverrides
}

// With returns a copy with the overrides applied.
func (r AccountRole) With(o AccountRoleOverrides) AccountRole {
	out := r
	if o.FullName != nil {
		out.FullName = *o.FullName
	}
	if o.ShortName != nil {
		out.ShortName = *o.ShortName
	}
	if o.Weight != nil {
		out.Weight = *o.Weight
	}
	out.Metadata = r.Metadata.With(o.Metadata)
	return out
}
