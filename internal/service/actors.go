package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/repository"
)

// ActorResolver hydrates the actor references of a metadata block.
type ActorResolver struct {
	users repository.UsersRepository
}

// NewActorResolver builds a resolver backed by the users repository.
func NewActorResolver(users repository.UsersRepository) *ActorResolver {
	return &ActorResolver{users: users}
}

// Resolve returns a copy of meta whose references carry their user records.
// References to users that no longer exist stay unresolved.
func (r *ActorResolver) Resolve(ctx context.Context, meta entity.Metadata) (entity.Metadata, error) {
	seen := make(map[uuid.UUID]struct{})
	var ids []uuid.UUID
	for _, ref := range meta.Actors() {
		if ref.IsZero() || ref.IsResolved() {
			continue
		}
		if _, ok := seen[ref.ID()]; ok {
			continue
		}
		seen[ref.ID()] = struct{}{}
		ids = append(ids, ref.ID())
	}
	if len(ids) == 0 {
		return meta, nil
	}

	users, err := r.users.FindByIDs(ctx, ids)
	if err != nil {
		return meta, fmt.Errorf("resolve actors: %w", err)
	}
	byID := make(map[uuid.UUID]entity.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	resolve := func(ref entity.ActorRef) entity.ActorRef {
		user, ok := byID[ref.ID()]
		if !ok {
			return ref
		}
		out, err := ref.Resolve(user)
		if err != nil {
			return ref
		}
		return out
	}

	addedBy := resolve(meta.AddedBy)
	updatedBy := resolve(meta.UpdatedBy)
	overrides := entity.MetadataOverrides{AddedBy: &addedBy, UpdatedBy: &updatedBy}
	if meta.DeletedBy != nil {
		deletedBy := resolve(*meta.DeletedBy)
		overrides.DeletedBy = &deletedBy
	}
	return meta.With(overrides), nil
}
