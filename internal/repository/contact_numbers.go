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
	// ErrContactNumberNotFound indicates no live number matches the identifier.
	ErrContactNumberNotFound = errors.New("contact number not found")
	// ErrContactNumberDuplicate is returned when the number is already registered.
	ErrContactNumberDuplicate = errors.New("contact number already exists")
)

// ContactNumbersRepository persists company contact numbers.
type ContactNumbersRepository interface {
	Create(ctx context.Context, number entity.CompanyContactNumber) error
	Update(ctx context.Context, number entity.CompanyContactNumber) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.CompanyContactNumber, error)
	ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.CompanyContactNumber, error)
	PrimaryForCompanies(ctx context.Context, companyIDs []uuid.UUID) (map[uuid.UUID]string, error)
	SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error
}

// PGXContactNumbersRepository implements ContactNumbersRepository using pgx.
type PGXContactNumbersRepository struct {
	pool pgxPool
}

// NewPGXContactNumbersRepository wires a pgx backed repository.
func NewPGXContactNumbersRepository(pool *pgxpool.Pool) *PGXContactNumbersRepository {
	return &PGXContactNumbersRepository{pool: pool}
}

const contactNumberInsertColumns = `id, number, company_ids, type, is_primary, is_verified, ` + metadataColumns
const contactNumberSelectColumns = `id, number, company_ids::text[], type, is_primary, is_verified, ` + metadataColumns

// Create inserts a contact number.
func (r *PGXContactNumbersRepository) Create(ctx context.Context, number entity.CompanyContactNumber) error {
	args := []any{number.ID, number.Number, uuidStrings(number.CompanyIDs), string(number.Type), number.IsPrimary, number.IsVerified}
	args = append(args, metadataArgs(number.Metadata)...)

	query := `INSERT INTO company_contact_numbers (` + contactNumberInsertColumns + `)
        VALUES ($1, $2, $3::uuid[], ` + placeholders(4, 9) + `)`
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		if isUniqueViolation(err, "company_contact_numbers_number_key") {
			return fmt.Errorf("%w: %v", ErrContactNumberDuplicate, err)
		}
		return fmt.Errorf("insert contact number: %w", err)
	}
	return nil
}

// Update writes the mutable columns of a live contact number.
func (r *PGXContactNumbersRepository) Update(ctx context.Context, number entity.CompanyContactNumber) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE company_contact_numbers SET
            number = $2,
            company_ids = $3::uuid[],
            type = $4,
            is_primary = $5,
            is_verified = $6,
            updated_at = $7,
            updated_by = $8
        WHERE id = $1 AND deleted_at IS NULL
    `, number.ID, number.Number, uuidStrings(number.CompanyIDs), string(number.Type), number.IsPrimary, number.IsVerified, number.UpdatedAt, number.UpdatedBy.ID())
	if err != nil {
		if isUniqueViolation(err, "company_contact_numbers_number_key") {
			return fmt.Errorf("%w: %v", ErrContactNumberDuplicate, err)
		}
		return fmt.Errorf("update contact number: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrContactNumberNotFound
	}
	return nil
}

// FindByID returns a live contact number.
func (r *PGXContactNumbersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.CompanyContactNumber, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contactNumberSelectColumns+` FROM company_contact_numbers WHERE id = $1 AND deleted_at IS NULL`, id)
	number, err := scanContactNumber(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContactNumberNotFound
		}
		return nil, fmt.Errorf("query contact number: %w", err)
	}
	return number, nil
}

// ListByCompany returns the live numbers attached to a company, primary first.
func (r *PGXContactNumbersRepository) ListByCompany(ctx context.Context, companyID uuid.UUID) ([]entity.CompanyContactNumber, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT `+contactNumberSelectColumns+`
        FROM company_contact_numbers
        WHERE $1::uuid = ANY(company_ids) AND deleted_at IS NULL
        ORDER BY is_primary DESC, added_at ASC
    `, companyID)
	if err != nil {
		return nil, fmt.Errorf("list contact numbers: %w", err)
	}
	defer rows.Close()

	numbers := []entity.CompanyContactNumber{}
	for rows.Next() {
		number, err := scanContactNumber(rows)
		if err != nil {
			return nil, fmt.Errorf("scan contact number: %w", err)
		}
		numbers = append(numbers, *number)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contact numbers: %w", err)
	}
	return numbers, nil
}

// PrimaryForCompanies picks one number per company: the primary one when
// flagged, otherwise the oldest.
func (r *PGXContactNumbersRepository) PrimaryForCompanies(ctx context.Context, companyIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	out := make(map[uuid.UUID]string, len(companyIDs))
	if len(companyIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, `
        SELECT DISTINCT ON (cid) cid::text, n.number
        FROM company_contact_numbers n, unnest(n.company_ids) AS cid
        WHERE cid::text = ANY($1) AND n.deleted_at IS NULL
        ORDER BY cid, n.is_primary DESC, n.added_at ASC
    `, uuidStrings(companyIDs))
	if err != nil {
		return nil, fmt.Errorf("query primary contact numbers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var companyID, number string
		if err := rows.Scan(&companyID, &number); err != nil {
			return nil, fmt.Errorf("scan primary contact number: %w", err)
		}
		id, err := uuid.Parse(companyID)
		if err != nil {
			return nil, &entity.DecodeError{Entity: "company_contact_number", Field: "company_ids", Err: err}
		}
		out[id] = number
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate primary contact numbers: %w", err)
	}
	return out, nil
}

// SoftDelete marks a contact number as deleted.
func (r *PGXContactNumbersRepository) SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error {
	return softDelete(ctx, r.pool, "company_contact_numbers", id, by, at, ErrContactNumberNotFound)
}

func scanContactNumber(row pgx.Row) (*entity.CompanyContactNumber, error) {
	var (
		number     entity.CompanyContactNumber
		value      sql.NullString
		companyIDs []string
		kind       sql.NullString
		meta       metadataRow
	)
	dest := []any{&number.ID, &value, &companyIDs, &kind, &number.IsPrimary, &number.IsVerified}
	if err := row.Scan(append(dest, meta.dest()...)...); err != nil {
		return nil, err
	}

	var err error
	if number.Number, err = requiredString("company_contact_number", "number", value); err != nil {
		return nil, err
	}
	if number.CompanyIDs, err = parseUUIDs("company_contact_number", "company_ids", companyIDs); err != nil {
		return nil, err
	}
	if !kind.Valid {
		return nil, &entity.DecodeError{Entity: "company_contact_number", Field: "type"}
	}
	if number.Type, err = entity.ParseContactNumberType(kind.String); err != nil {
		return nil, &entity.DecodeError{Entity: "company_contact_number", Field: "type", Err: err}
	}
	if number.Metadata, err = meta.metadata("company_contact_number"); err != nil {
		return nil, err
	}
	return &number, nil
}
