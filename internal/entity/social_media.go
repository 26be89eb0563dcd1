package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SocialPlatform names a supported social network.
type SocialPlatform string

const (
	PlatformLinkedIn  SocialPlatform = "linkedin"
	PlatformFacebook  SocialPlatform = "facebook"
	PlatformInstagram SocialPlatform = "instagram"
	PlatformYouTube   SocialPlatform = "youtube"
	PlatformTikTok    SocialPlatform = "tiktok"
	PlatformX         SocialPlatform = "x"
)

// ParseSocialPlatform validates a platform name.
func ParseSocialPlatform(value string) (SocialPlatform, error) {
	switch p := SocialPlatform(strings.ToLower(strings.TrimSpace(value))); p {
	case PlatformLinkedIn, PlatformFacebook, PlatformInstagram, PlatformYouTube, PlatformTikTok, PlatformX:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported social platform %q", value)
	}
}

// UserSocialMedia is a social profile owned by a user.
type UserSocialMedia struct {
	ID         uuid.UUID      `json:"id"`
	ProfileURL string         `json:"profile_url"`
	UserID     uuid.UUID      `json:"user_id"`
	Platform   SocialPlatform `json:"platform"`
	Username   string         `json:"username"`
	IsVerified bool           `json:"is_verified"`
	IsPublic   bool           `json:"is_public"`
	Metadata
}

// NewUserSocialMedia builds an unverified profile entry.
func NewUserSocialMedia(userID uuid.UUID, platform SocialPlatform, profileURL, username string, public bool, actor ActorRef, now time.Time) UserSocialMedia {
	return UserSocialMedia{
		ID:         uuid.New(),
		ProfileURL: profileURL,
		UserID:     userID,
		Platform:   platform,
		Username:   username,
		IsPublic:   public,
		Metadata:   NewMetadata(actor, now),
	}
}

// SocialMediaOverrides lists fields to replace; nil keeps the current value.
type SocialMediaOverrides struct {
	ProfileURL *string
	Platform   *SocialPlatform
	Username   *string
	IsVerified *bool
	IsPublic   *bool
	Metadata   MetadataOverrides
}

// With returns a copy with the overrides applied.
func (s UserSocialMedia) With(o SocialMediaOverrides) UserSocialMedia {
	out := s
	if o.ProfileURL != nil {
		out.ProfileURL = *o.ProfileURL
	}
	if o.Platform != nil {
		out.Platform = *o.Platform
	}
	if o.Username != nil {
		out.Username = *o.Username
	}
	if o.IsVerified != nil {
		out.IsVerified = *o.IsVerified
	}
	if o.IsPublic != nil {
		out.IsPublic = *o.IsPublic
	}
	out.Metadata = s.Metadata.With(o.Metadata)
	return out
}
