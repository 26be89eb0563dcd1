package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/itinerary-maker/api/internal/entity"
)

// LookupsRepository reads the classification values companies are filed under
// and the subset delegated to each account role.
type LookupsRepository interface {
	ListValues(ctx context.Context, dimension entity.Dimension) ([]entity.LookupValue, error)
	ListDelegatedValues(ctx context.Context, roleID uuid.UUID, dimension entity.Dimension) ([]entity.LookupValue, error)
}

// PGXLookupsRepository implements LookupsRepository using pgx.
type PGXLookupsRepository struct {
	pool pgxPool
}

// NewPGXLookupsRepository wires a pgx backed repository.
func NewPGXLookupsRepository(pool *pgxpool.Pool) *PGXLookupsRepository {
	return &PGXLookupsRepository{pool: pool}
}

// ListValues returns every live value of a dimension in display order.
func (r *PGXLookupsRepository) ListValues(ctx context.Context, dimension entity.Dimension) ([]entity.LookupValue, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, dimension, label, sort_order
        FROM lookup_values
        WHERE dimension = $1 AND deleted_at IS NULL
        ORDER BY sort_order ASC, label ASC
    `, string(dimension))
	if err != nil {
		return nil, fmt.Errorf("list %s values: %w", dimension, err)
	}
	defer rows.Close()
	return scanLookupValues(rows)
}

// ListDelegatedValues returns the live values of a dimension delegated to a role.
func (r *PGXLookupsRepository) ListDelegatedValues(ctx context.Context, roleID uuid.UUID, dimension entity.Dimension) ([]entity.LookupValue, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT v.id, v.dimension, v.label, v.sort_order
        FROM role_delegations d
        JOIN lookup_values v ON v.id = d.value_id AND v.dimension = d.dimension
        WHERE d.account_role_id = $1 AND d.dimension = $2 AND v.deleted_at IS NULL
        ORDER BY v.sort_order ASC, v.label ASC
    `, roleID, string(dimension))
	if err != nil {
		return nil, fmt.Errorf("list delegated %s values: %w", dimension, err)
	}
	defer rows.Close()
	return scanLookupValues(rows)
}

func scanLookupValues(rows pgx.Rows) ([]entity.LookupValue, error) {
	values := []entity.LookupValue{}
	for rows.Next() {
		var (
			value     entity.LookupValue
			dimension string
		)
		if err := rows.Scan(&value.ID, &dimension, &value.Label, &value.SortOrder); err != nil {
			return nil, fmt.Errorf("scan lookup value: %w", err)
		}
		d, err := entity.ParseDimension(dimension)
		if err != nil {
			return nil, &entity.DecodeError{Entity: "lookup_value", Field: "dimension", Err: err}
		}
		value.Dimension = d
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lookup values: %w", err)
	}
	return values, nil
}
