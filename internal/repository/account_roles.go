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
	// ErrAccountRoleNotFound indicates no live role matches the lookup.
	ErrAccountRoleNotFound = errors.New("account role not found")
	// ErrAccountRoleDuplicate is returned when the short name is taken.
	ErrAccountRoleDuplicate = errors.New("account role already exists")
)

// AccountRolesRepository persists authorization roles.
type AccountRolesRepository interface {
	Create(ctx context.Context, role entity.AccountRole) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.AccountRole, error)
	FindByShortName(ctx context.Context, shortName string) (*entity.AccountRole, error)
	List(ctx context.Context) ([]entity.AccountRole, error)
	SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error
}

// PGXAccountRolesRepository implements AccountRolesRepository using pgx.
type PGXAccountRolesRepository struct {
	pool pgxPool
}

// NewPGXAccountRolesRepository wires a pgx backed repository.
func NewPGXAccountRolesRepository(pool *pgxpool.Pool) *PGXAccountRolesRepository {
	return &PGXAccountRolesRepository{pool: pool}
}

const accountRoleColumns = `id, full_name, short_name, weight, ` + metadataColumns

// Create inserts a role.
func (r *PGXAccountRolesRepository) Create(ctx context.Context, role entity.AccountRole) error {
	args := []any{role.ID, role.FullName, role.ShortName, role.Weight}
	args = append(args, metadataArgs(role.Metadata)...)

	_, err := r.pool.Exec(ctx, `INSERT INTO account_roles (`+accountRoleColumns+`) VALUES (`+placeholders(1, 10)+`)`, args...)
	if err != nil {
		if isUniqueViolation(err, "account_roles_short_name_key") {
			return fmt.Errorf("%w: %v", ErrAccountRoleDuplicate, err)
		}
		return fmt.Errorf("insert account role: %w", err)
	}
	return nil
}

// FindByID returns a live role.
func (r *PGXAccountRolesRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.AccountRole, error) {
	return r.findOne(ctx, `id = $1`, id)
}

// FindByShortName returns a live role by its short name, case-insensitively.
func (r *PGXAccountRolesRepository) FindByShortName(ctx context.Context, shortName string) (*entity.AccountRole, error) {
	return r.findOne(ctx, `LOWER(short_name) = LOWER($1)`, shortName)
}

func (r *PGXAccountRolesRepository) findOne(ctx context.Context, where string, arg any) (*entity.AccountRole, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+accountRoleColumns+` FROM account_roles WHERE `+where+` AND deleted_at IS NULL`, arg)
	role, err := scanAccountRole(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountRoleNotFound
		}
		return nil, fmt.Errorf("query account role: %w", err)
	}
	return role, nil
}

// List returns live roles, heaviest first.
func (r *PGXAccountRolesRepository) List(ctx context.Context) ([]entity.AccountRole, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+accountRoleColumns+` FROM account_roles WHERE deleted_at IS NULL ORDER BY weight DESC, short_name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list account roles: %w", err)
	}
	defer rows.Close()

	roles := []entity.AccountRole{}
	for rows.Next() {
		role, err := scanAccountRole(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account role: %w", err)
		}
		roles = append(roles, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account roles: %w", err)
	}
	return roles, nil
}

// SoftDelete marks a role as deleted.
func (r *PGXAccountRolesRepository) SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error {
	return softDelete(ctx, r.pool, "account_roles", id, by, at, ErrAccountRoleNotFound)
}

func scanAccountRole(row pgx.Row) (*entity.AccountRole, error) {
	var (
		role      entity.AccountRole
		fullName  sql.NullString
		shortName sql.NullString
		weight    sql.NullInt64
		meta      metadataRow
	)
	dest := []any{&role.ID, &fullName, &shortName, &weight}
	if err := row.Scan(append(dest, meta.dest()...)...); err != nil {
		return nil, err
	}

	var err error
	if role.FullName, err = requiredString("account_role", "full_name", fullName); err != nil {
		return nil, err
	}
	if role.ShortName, err = requiredString("account_role", "short_name", shortName); err != nil {
		return nil, err
	}
	if !weight.Valid {
		return nil, &entity.DecodeError{Entity: "account_role", Field: "weight"}
	}
	role.Weight = int(weight.Int64)
	if role.Metadata, err = meta.metadata("account_role"); err != nil {
		return nil, err
	}
	return &role, nil
}
