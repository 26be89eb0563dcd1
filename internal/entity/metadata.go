package entity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrActorMismatch is returned when resolving a reference with a user that has a different id.
var ErrActorMismatch = errors.New("actor id does not match user")

// ActorRef is a weak reference to the user who performed an action. It is either
// unresolved (only the id is known) or resolved (the user record was looked up).
type ActorRef struct {
	id   uuid.UUID
	user *User
}

// UnresolvedActor returns a reference holding only the user id.
func UnresolvedActor(id uuid.UUID) ActorRef {
	return ActorRef{id: id}
}

// ResolvedActor returns a reference hydrated with the given user.
func ResolvedActor(user User) ActorRef {
	u := user
	return ActorRef{id: user.ID, user: &u}
}

// ID returns the referenced user id regardless of resolution state.
func (r ActorRef) ID() uuid.UUID { return r.id }

// IsZero reports whether the reference points at nobody.
func (r ActorRef) IsZero() bool { return r.id == uuid.Nil }

// IsResolved reports whether the user record is attached.
func (r ActorRef) IsResolved() bool { return r.user != nil }

// User returns the attached user, if any.
func (r ActorRef) User() (User, bool) {
	if r.user == nil {
		return User{}, false
	}
	return *r.user, true
}

// Resolve attaches the user record and returns the new reference.
func (r ActorRef) Resolve(user User) (ActorRef, error) {
	if user.ID != r.id {
		return r, fmt.Errorf("%w: have %s, got %s", ErrActorMismatch, r.id, user.ID)
	}
	return ResolvedActor(user), nil
}

type actorSummary struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email,omitempty"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
}

// MarshalJSON writes the bare id for unresolved references and a short user summary otherwise.
func (r ActorRef) MarshalJSON() ([]byte, error) {
	if r.user == nil {
		return json.Marshal(r.id.String())
	}
	return json.Marshal(actorSummary{
		ID:        r.id,
		Email:     r.user.Email,
		FirstName: r.user.FirstName,
		LastName:  r.user.LastName,
	})
}

// UnmarshalJSON accepts either an id string or an object carrying an id. The result is unresolved.
func (r *ActorRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var summary actorSummary
		if err := json.Unmarshal(data, &summary); err != nil {
			return err
		}
		*r = UnresolvedActor(summary.ID)
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return fmt.Errorf("parse actor id: %w", err)
	}
	*r = UnresolvedActor(id)
	return nil
}

// Metadata is the audit block shared by every stored record.
type Metadata struct {
	AddedAt   time.Time  `json:"added_at"`
	AddedBy   ActorRef   `json:"added_by"`
	UpdatedAt time.Time  `json:"updated_at"`
	UpdatedBy ActorRef   `json:"updated_by"`
	DeletedAt *time.Time `json:"deleted_at"`
	DeletedBy *ActorRef  `json:"deleted_by"`
}

// NewMetadata stamps creation and update with the same actor and time.
func NewMetadata(actor ActorRef, now time.Time) Metadata {
	now = now.UTC()
	return Metadata{
		AddedAt:   now,
		AddedBy:   actor,
		UpdatedAt: now,
		UpdatedBy: actor,
	}
}

// IsDeleted reports whether the record has been soft deleted.
func (m Metadata) IsDeleted() bool { return m.DeletedAt != nil }

// Touch records an update.
func (m Metadata) Touch(actor ActorRef, now time.Time) Metadata {
	now = now.UTC()
	return m.With(MetadataOverrides{UpdatedAt: &now, UpdatedBy: &actor})
}

// SoftDelete marks the record deleted. The update stamp moves with it.
func (m Metadata) SoftDelete(actor ActorRef, now time.Time) Metadata {
	now = now.UTC()
	return m.With(MetadataOverrides{
		UpdatedAt: &now,
		UpdatedBy: &actor,
		DeletedAt: &now,
		DeletedBy: &actor,
	})
}

// MetadataOverrides lists the fields to replace. Nil keeps the current value;
// ClearDeletion restores a soft-deleted record.
type MetadataOverrides struct {
	AddedAt       *time.Time
	AddedBy       *ActorRef
	UpdatedAt     *time.Time
	UpdatedBy     *ActorRef
	DeletedAt     *time.Time
	DeletedBy     *ActorRef
	ClearDeletion bool
}

// With returns a copy of m with the overrides applied.
func (m Metadata) With(o MetadataOverrides) Metadata {
	out := m
	if o.AddedAt != nil {
		out.AddedAt = *o.AddedAt
	}
	if o.AddedBy != nil {
		out.AddedBy = *o.AddedBy
	}
	if o.UpdatedAt != nil {
		out.UpdatedAt = *o.UpdatedAt
	}
	if o.UpdatedBy != nil {
		out.UpdatedBy = *o.UpdatedBy
	}
	if o.ClearDeletion {
		out.DeletedAt = nil
		out.DeletedBy = nil
	}
	if o.DeletedAt != nil {
		ts := *o.DeletedAt
		out.DeletedAt = &ts
	}
	if o.DeletedBy != nil {
		ref := *o.DeletedBy
		out.DeletedBy = &ref
	}
	return out
}

// Actors returns every reference held by the block, deletion actor last when present.
func (m Metadata) Actors() []ActorRef {
	refs := []ActorRef{m.AddedBy, m.UpdatedBy}
	if m.DeletedBy != nil {
		refs = append(refs, *m.DeletedBy)
	}
	return refs
}

// DecodeError reports a stored record that cannot be turned into an entity.
type DecodeError struct {
	Entity string
	Field  string
	Err    error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: field %s: %v", e.Entity, e.Field, e.Err)
	}
	return fmt.Sprintf("decode %s: missing required field %s", e.Entity, e.Field)
}

// Unwrap exposes the underlying cause.
func (e *DecodeError) Unwrap() error { return e.Err }
