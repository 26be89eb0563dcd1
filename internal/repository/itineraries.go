package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/itinerary-maker/api/internal/entity"
)

// ErrItineraryNotFound indicates no live itinerary matches the identifier.
var ErrItineraryNotFound = errors.New("itinerary not found")

// ItinerariesRepository persists generated itineraries.
type ItinerariesRepository interface {
	Create(ctx context.Context, itinerary entity.Itinerary) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Itinerary, error)
	SetExportKey(ctx context.Context, id uuid.UUID, key string, by uuid.UUID, at time.Time) error
}

// PGXItinerariesRepository implements ItinerariesRepository using pgx.
type PGXItinerariesRepository struct {
	pool pgxPool
}

// NewPGXItinerariesRepository wires a pgx backed repository.
func NewPGXItinerariesRepository(pool *pgxpool.Pool) *PGXItinerariesRepository {
	return &PGXItinerariesRepository{pool: pool}
}

const itineraryColumns = `id, name, selection, stops, export_key, ` + metadataColumns

// Create stores an itinerary with its selection and stops as jsonb.
func (r *PGXItinerariesRepository) Create(ctx context.Context, itinerary entity.Itinerary) error {
	selectionJSON, err := json.Marshal(itinerary.Selection)
	if err != nil {
		return fmt.Errorf("marshal selection: %w", err)
	}
	stops := itinerary.Stops
	if stops == nil {
		stops = []entity.ItineraryStop{}
	}
	stopsJSON, err := json.Marshal(stops)
	if err != nil {
		return fmt.Errorf("marshal stops: %w", err)
	}

	args := []any{itinerary.ID, itinerary.Name, string(selectionJSON), string(stopsJSON), stringOrNil(itinerary.ExportKey)}
	args = append(args, metadataArgs(itinerary.Metadata)...)

	query := `INSERT INTO itineraries (` + itineraryColumns + `)
        VALUES ($1, $2, $3::jsonb, $4::jsonb, ` + placeholders(5, 7) + `)`
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert itinerary: %w", err)
	}
	return nil
}

// FindByID returns a live itinerary.
func (r *PGXItinerariesRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Itinerary, error) {
	var (
		itinerary     entity.Itinerary
		name          sql.NullString
		selectionJSON []byte
		stopsJSON     []byte
		exportKey     sql.NullString
		meta          metadataRow
	)
	dest := []any{&itinerary.ID, &name, &selectionJSON, &stopsJSON, &exportKey}
	err := r.pool.QueryRow(ctx, `SELECT `+itineraryColumns+` FROM itineraries WHERE id = $1 AND deleted_at IS NULL`, id).
		Scan(append(dest, meta.dest()...)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItineraryNotFound
		}
		return nil, fmt.Errorf("query itinerary: %w", err)
	}

	if itinerary.Name, err = requiredString("itinerary", "name", name); err != nil {
		return nil, err
	}
	if len(selectionJSON) > 0 {
		if err := json.Unmarshal(selectionJSON, &itinerary.Selection); err != nil {
			return nil, &entity.DecodeError{Entity: "itinerary", Field: "selection", Err: err}
		}
	}
	itinerary.Stops = []entity.ItineraryStop{}
	if len(stopsJSON) > 0 {
		if err := json.Unmarshal(stopsJSON, &itinerary.Stops); err != nil {
			return nil, &entity.DecodeError{Entity: "itinerary", Field: "stops", Err: err}
		}
	}
	itinerary.ExportKey = nullStringToPtr(exportKey)
	if itinerary.Metadata, err = meta.metadata("itinerary"); err != nil {
		return nil, err
	}
	return &itinerary, nil
}

// SetExportKey records where the itinerary workbook was stored.
func (r *PGXItinerariesRepository) SetExportKey(ctx context.Context, id uuid.UUID, key string, by uuid.UUID, at time.Time) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE itineraries SET export_key = $2, updated_at = $3, updated_by = $4
        WHERE id = $1 AND deleted_at IS NULL
    `, id, key, at.UTC(), by)
	if err != nil {
		return fmt.Errorf("set itinerary export key: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrItineraryNotFound
	}
	return nil
}
