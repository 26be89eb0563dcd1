package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/octobees/itinerary-maker/api/internal/entity"
)

func lookupScan(id, dimension, label string, order int) func(dest ...any) error {
	return func(dest ...any) error {
		*dest[0].(*string) = id
		*dest[1].(*string) = dimension
		*dest[2].(*string) = label
		*dest[3].(*int) = order
		return nil
	}
}

func TestPGXLookupsRepository_ListValues(t *testing.T) {
	repo := &PGXLookupsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			if args[0] != "state" {
				t.Fatalf("unexpected dimension arg: %v", args[0])
			}
			return &stubRows{scans: []func(dest ...any) error{
				lookupScan("CA", "state", "California", 1),
				lookupScan("NY", "state", "New York", 2),
			}}, nil
		},
	}}

	values, err := repo.ListValues(context.Background(), entity.DimensionState)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(values) != 2 || values[0].ID != "CA" || values[1].Label != "New York" || values[0].Dimension != entity.DimensionState {
		t.Fatalf("unexpected values: %+v", values)
	}
}

func TestPGXLookupsRepository_ListDelegatedValues(t *testing.T) {
	roleID := uuid.New()
	repo := &PGXLookupsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			if args[0] != roleID || args[1] != "category" {
				t.Fatalf("unexpected args: %+v", args)
			}
			return &stubRows{scans: []func(dest ...any) error{lookupScan("retail", "country", "Retail", 1)}}, nil
		},
	}}

	_, err := repo.ListDelegatedValues(context.Background(), roleID, entity.DimensionCategory)
	var decodeErr *entity.DecodeError
	if !errors.As(err, &decodeErr) || decodeErr.Field != "dimension" {
		t.Fatalf("expected dimension decode error, got %v", err)
	}
}

func TestPGXLookupsRepository_QueryFailure(t *testing.T) {
	boom := errors.New("boom")
	repo := &PGXLookupsRepository{pool: &stubPool{
		queryFunc: func(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
			return nil, boom
		},
	}}
	if _, err := repo.ListValues(context.Background(), entity.DimensionSubcategory); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped query error, got %v", err)
	}
}
