package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is an account able to sign in and act on directory records.
type User struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	PasswordHash  string     `json:"-"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	AccountRoleID *uuid.UUID `json:"account_role_id,omitempty"`
	Metadata
}

// NewUser builds a user. A self-registered user is its own creating actor.
func NewUser(email, passwordHash string, roleID *uuid.UUID, actor *ActorRef, now time.Time) User {
	id := uuid.New()
	by := UnresolvedActor(id)
	if actor != nil {
		by = *actor
	}
	return User{
		ID:            id,
		Email:         email,
		PasswordHash:  passwordHash,
		AccountRoleID: cloneUUID(roleID),
		Metadata:      NewMetadata(by, now),
	}
}

// FullName joins first and last names.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// UserOverrides lists fields to replace; nil keeps the current value.
type UserOverrides struct {
	Email         *string
	PasswordHash  *string
	FirstName     *string
	LastName      *string
	AccountRoleID *uuid.UUID
	Metadata      MetadataOverrides
}

// With returns a copy with the overrides applied.
func (u User) With(o UserOverrides) User {
	out := u
	if o.Email != nil {
		out.Email = *o.Email
	}
	if o.PasswordHash != nil {
		out.PasswordHash = *o.PasswordHash
	}
	if o.FirstName != nil {
		out.FirstName = *o.FirstName
	}
	if o.LastName != nil {
		out.LastName = *o.LastName
	}
	if o.AccountRoleID != nil {
		out.AccountRoleID = cloneUUID(o.AccountRoleID)
	}
	out.Metadata = u.Metadata.With(o.Metadata)
	return out
}

func cloneUUID(v *uuid.UUID) *uuid.UUID {
	if v == nil {
		return nil
	}
	id := *v
	return &id
}
