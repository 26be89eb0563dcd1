package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
	"github.com/octobees/itinerary-maker/api/internal/repository"
)

// Caller identifies who is making a request.
type Caller struct {
	ID      uuid.UUID
	IsAdmin bool
}

func (c Caller) canActFor(userID uuid.UUID) bool {
	return c.IsAdmin || c.ID == userID
}

// SocialMediaService manages the social profiles of users.
type SocialMediaService struct {
	profiles   repository.SocialMediaRepository
	users      repository.UsersRepository
	normalizer *ContactNormalizer
	now        func() time.Time
}

// NewSocialMediaService builds the service.
func NewSocialMediaService(profiles repository.SocialMediaRepository, users repository.UsersRepository, normalizer *ContactNormalizer) *SocialMediaService {
	if normalizer == nil {
		normalizer = NewContactNormalizer("")
	}
	return &SocialMediaService{profiles: profiles, users: users, normalizer: normalizer, now: time.Now}
}

// ListForUser returns the profiles of userID. Other users only see public ones.
func (s *SocialMediaService) ListForUser(ctx context.Context, caller Caller, userID uuid.UUID) ([]entity.UserSocialMedia, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.profiles.ListByUser(ctx, userID, !caller.canActFor(userID))
}

// AddProfile registers a sanitized profile for userID.
func (s *SocialMediaService) AddProfile(ctx context.Context, caller Caller, userID uuid.UUID, req dto.CreateSocialMediaRequest) (*entity.UserSocialMedia, error) {
	if !caller.canActFor(userID) {
		return nil, ErrForbidden
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, err
	}

	profile, err := s.normalizer.SocialProfile(req.ProfileURL, req.Platform)
	if err != nil {
		return nil, err
	}
	username := strings.TrimPrefix(strings.TrimSpace(req.Username), "@")
	if username == "" {
		username = profile.Username
	}

	record := entity.NewUserSocialMedia(userID, profile.Platform, profile.URL, username, req.IsPublic, entity.UnresolvedActor(caller.ID), s.now())
	if err := s.profiles.Create(ctx, record); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteProfile soft deletes a profile owned by the caller, or any profile for admins.
func (s *SocialMediaService) DeleteProfile(ctx context.Context, caller Caller, id uuid.UUID) error {
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !caller.canActFor(profile.UserID) {
		return ErrForbidden
	}
	return s.profiles.SoftDelete(ctx, id, caller.ID, s.now().UTC())
}
