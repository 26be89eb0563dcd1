package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/itinerary-maker/api/internal/entity"
)

var (
	// ErrSocialMediaNotFound indicates no live profile matches the identifier.
	ErrSocialMediaNotFound = errors.New("social media profile not found")
	// ErrSocialMediaDuplicate is returned when the user already registered the profile.
	ErrSocialMediaDuplicate = errors.New("social media profile already exists")
)

// SocialMediaRepository persists user social profiles.
type SocialMediaRepository interface {
	Create(ctx context.Context, profile entity.UserSocialMedia) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.UserSocialMedia, error)
	ListByUser(ctx context.Context, userID uuid.UUID, publicOnly bool) ([]entity.UserSocialMedia, error)
	SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error
}

// PGXSocialMediaRepository implements SocialMediaRepository using pgx.
type PGXSocialMediaRepository struct {
	pool pgxPool
}

// NewPGXSocialMediaRepository wires a pgx backed repository.
func NewPGXSocialMediaRepository(pool *pgxpool.Pool) *PGXSocialMediaRepository {
	return &PGXSocialMediaRepository{pool: pool}
}

const socialMediaColumns = `id, profile_url, user_id, platform, username, is_verified, is_public, ` + metadataColumns

// Create inserts a social profile.
func (r *PGXSocialMediaRepository) Create(ctx context.Context, profile entity.UserSocialMedia) error {
	args := []any{profile.ID, profile.ProfileURL, profile.UserID, string(profile.Platform), emptyToNil(profile.Username), profile.IsVerified, profile.IsPublic}
	args = append(args, metadataArgs(profile.Metadata)...)

	_, err := r.pool.Exec(ctx, `INSERT INTO user_social_media (`+socialMediaColumns+`) VALUES (`+placeholders(1, 13)+`)`, args...)
	if err != nil {
		if isUniqueViolation(err, "") {
			return fmt.Errorf("%w: %v", ErrSocialMediaDuplicate, err)
		}
		return fmt.Errorf("insert social media: %w", err)
	}
	return nil
}

// FindByID returns a live social profile.
func (r *PGXSocialMediaRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.UserSocialMedia, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+socialMediaColumns+` FROM user_social_media WHERE id = $1 AND deleted_at IS NULL`, id)
	profile, err := scanSocialMedia(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSocialMediaNotFound
		}
		return nil, fmt.Errorf("query social media: %w", err)
	}
	return profile, nil
}

// ListByUser returns the live profiles of a user ordered by platform.
func (r *PGXSocialMediaRepository) ListByUser(ctx context.Context, userID uuid.UUID, publicOnly bool) ([]entity.UserSocialMedia, error) {
	query := `SELECT ` + socialMediaColumns + ` FROM user_social_media WHERE user_id = $1 AND deleted_at IS NULL`
	if publicOnly {
		query += ` AND is_public`
	}
	query += ` ORDER BY platform ASC, added_at ASC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list social media: %w", err)
	}
	defer rows.Close()

	profiles := []entity.UserSocialMedia{}
	for rows.Next() {
		profile, err := scanSocialMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan social media: %w", err)
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate social media: %w", err)
	}
	return profiles, nil
}

// SoftDelete marks a social profile as deleted.
func (r *PGXSocialMediaRepository) SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error {
	return softDelete(ctx, r.pool, "user_social_media", id, by, at, ErrSocialMediaNotFound)
}

func scanSocialMedia(row pgx.Row) (*entity.UserSocialMedia, error) {
	var (
		profile  entity.UserSocialMedia
		url      sql.NullString
		platform sql.NullString
		username sql.NullString
		meta     metadataRow
	)
	dest := []any{&profile.ID, &url, &profile.UserID, &platform, &username, &profile.IsVerified, &profile.IsPublic}
	if err := row.Scan(append(dest, meta.dest()...)...); err != nil {
		return nil, err
	}

	var err error
	if profile.ProfileURL, err = requiredString("user_social_media", "profile_url", url); err != nil {
		return nil, err
	}
	if !platform.Valid {
		return nil, &entity.DecodeError{Entity: "user_social_media", Field: "platform"}
	}
	if profile.Platform, err = entity.ParseSocialPlatform(platform.String); err != nil {
		return nil, &entity.DecodeError{Entity: "user_social_media", Field: "platform", Err: err}
	}
	profile.Username = username.String
	if profile.Metadata, err = meta.metadata("user_social_media"); err != nil {
		return nil, err
	}
	return &profile, nil
}
