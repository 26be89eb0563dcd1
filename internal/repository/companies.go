package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/itinerary-maker/api/internal/dto"
	"github.com/octobees/itinerary-maker/api/internal/entity"
)

// ErrCompanyNotFound indicates no live company matches the identifier.
var ErrCompanyNotFound = errors.New("company not found")

// CompaniesRepository describes persistence operations for companies.
type CompaniesRepository interface {
	Create(ctx context.Context, company entity.Company) error
	Update(ctx context.Context, company entity.Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error)
	List(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error)
	ListBySelection(ctx context.Context, selection entity.Selection) ([]entity.Company, error)
	SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error
	BulkUpsertCompanies(ctx context.Context, actor uuid.UUID, records []BulkUpsertCompanyInput) (BulkUpsertResult, error)
}

// BulkUpsertCompanyInput represents the fields accepted by CSV ingestion.
type BulkUpsertCompanyInput struct {
	Name           string
	Address        *string
	Website        *string
	Classification entity.Classification
}

// BulkUpsertResult summarises the number of rows inserted or updated.
type BulkUpsertResult struct {
	Inserted int
	Updated  int
	Total    int
}

// PGXCompaniesRepository implements CompaniesRepository using pgx.
type PGXCompaniesRepository struct {
	pool pgxPool
}

// NewPGXCompaniesRepository wires a pgx backed repository.
func NewPGXCompaniesRepository(pool *pgxpool.Pool) *PGXCompaniesRepository {
	return &PGXCompaniesRepository{pool: pool}
}

const companyColumns = `id, name, state_id, business_model_id, category_id, subcategory_id, annual_sales_range_id, address, website, ` + metadataColumns

// selectionColumns maps each filter dimension to its company column.
var selectionColumns = map[entity.Dimension]string{
	entity.DimensionState:            "state_id",
	entity.DimensionBusinessModel:    "business_model_id",
	entity.DimensionCategory:         "category_id",
	entity.DimensionSubcategory:      "subcategory_id",
	entity.DimensionAnnualSalesRange: "annual_sales_range_id",
}

// Create inserts a new company row.
func (r *PGXCompaniesRepository) Create(ctx context.Context, company entity.Company) error {
	query := `
        INSERT INTO companies (` + companyColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, ` + placeholders(10, 6) + `)
    `
	args := []any{
		company.ID,
		company.Name,
		company.StateID,
		company.BusinessModelID,
		company.CategoryID,
		company.SubcategoryID,
		company.AnnualSalesRangeID,
		stringOrNil(company.Address),
		stringOrNil(company.Website),
	}
	args = append(args, metadataArgs(company.Metadata)...)

	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

// Update writes every mutable column of a live company.
func (r *PGXCompaniesRepository) Update(ctx context.Context, company entity.Company) error {
	query := `
        UPDATE companies SET
            name = $2,
            state_id = $3,
            business_model_id = $4,
            category_id = $5,
            subcategory_id = $6,
            annual_sales_range_id = $7,
            address = $8,
            website = $9,
            updated_at = $10,
            updated_by = $11
        WHERE id = $1 AND deleted_at IS NULL
    `
	cmd, err := r.pool.Exec(ctx, query,
		company.ID,
		company.Name,
		company.StateID,
		company.BusinessModelID,
		company.CategoryID,
		company.SubcategoryID,
		company.AnnualSalesRangeID,
		stringOrNil(company.Address),
		stringOrNil(company.Website),
		company.UpdatedAt,
		company.UpdatedBy.ID(),
	)
	if err != nil {
		return fmt.Errorf("update company: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrCompanyNotFound
	}
	return nil
}

// FindByID returns a live company.
func (r *PGXCompaniesRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Company, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+companyColumns+` FROM companies WHERE id = $1 AND deleted_at IS NULL`, id)
	if err != nil {
		return nil, fmt.Errorf("query company by id: %w", err)
	}
	defer rows.Close()

	companies, err := scanCompanies(rows)
	if err != nil {
		return nil, err
	}
	if len(companies) == 0 {
		return nil, ErrCompanyNotFound
	}
	return &companies[0], nil
}

// SoftDelete marks a company as deleted.
func (r *PGXCompaniesRepository) SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error {
	return softDelete(ctx, r.pool, "companies", id, by, at, ErrCompanyNotFound)
}

// List retrieves live companies matching the filter, sorted by name.
func (r *PGXCompaniesRepository) List(ctx context.Context, filter dto.ListFilter) ([]entity.Company, error) {
	baseQuery := strings.Builder{}
	baseQuery.WriteString(`SELECT ` + companyColumns + ` FROM companies`)

	clauses := []string{"deleted_at IS NULL"}
	var args []any
	idx := 1

	if filter.Q != "" {
		pattern := fmt.Sprintf("%%%s%%", filter.Q)
		clauses = append(clauses, fmt.Sprintf("(name ILIKE $%d OR address ILIKE $%d)", idx, idx+1))
		args = append(args, pattern, pattern)
		idx += 2
	}
	selClauses, selArgs, idx := selectionClauses(filter.Selection, idx)
	clauses = append(clauses, selClauses...)
	args = append(args, selArgs...)

	baseQuery.WriteString(" WHERE ")
	baseQuery.WriteString(strings.Join(clauses, " AND "))
	baseQuery.WriteString(" ORDER BY name ASC, id ASC")

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}
	offset := (page - 1) * perPage
	baseQuery.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", idx, idx+1))
	args = append(args, perPage, offset)

	rows, err := r.pool.Query(ctx, baseQuery.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

// ListBySelection returns every live company matching the selection. An empty
// set leaves its dimension unconstrained; sets are combined with AND.
func (r *PGXCompaniesRepository) ListBySelection(ctx context.Context, selection entity.Selection) ([]entity.Company, error) {
	clauses, args, _ := selectionClauses(selection, 1)
	clauses = append([]string{"deleted_at IS NULL"}, clauses...)

	query := `SELECT ` + companyColumns + ` FROM companies WHERE ` + strings.Join(clauses, " AND ") + ` ORDER BY name ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list companies by selection: %w", err)
	}
	defer rows.Close()

	return scanCompanies(rows)
}

func selectionClauses(selection entity.Selection, idx int) ([]string, []any, int) {
	var (
		clauses []string
		args    []any
	)
	for _, d := range entity.Dimensions {
		values := selection.Values(d)
		if len(values) == 0 {
			continue
		}
		// Compared as text: unknown ids match nothing.
		clauses = append(clauses, fmt.Sprintf("%s::text = ANY($%d::text[])", selectionColumns[d], idx))
		args = append(args, values)
		idx++
	}
	return clauses, args, idx
}

const bulkUpsertSQL = `
        INSERT INTO companies (` + companyColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $10, $11, NULL, NULL)
        ON CONFLICT (name, state_id) WHERE deleted_at IS NULL DO UPDATE SET
            business_model_id = EXCLUDED.business_model_id,
            category_id = EXCLUDED.category_id,
            subcategory_id = EXCLUDED.subcategory_id,
            annual_sales_range_id = EXCLUDED.annual_sales_range_id,
            address = COALESCE(EXCLUDED.address, companies.address),
            website = COALESCE(EXCLUDED.website, companies.website),
            updated_at = EXCLUDED.updated_at,
            updated_by = EXCLUDED.updated_by
        RETURNING xmax = 0;
    `

// BulkUpsertCompanies persists a batch of companies with idempotent semantics.
func (r *PGXCompaniesRepository) BulkUpsertCompanies(ctx context.Context, actor uuid.UUID, records []BulkUpsertCompanyInput) (BulkUpsertResult, error) {
	var result BulkUpsertResult
	if len(records) == 0 {
		return result, nil
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return result, fmt.Errorf("start bulk upsert tx: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()
	for _, record := range records {
		class := record.Classification
		var inserted bool
		err := tx.QueryRow(ctx, bulkUpsertSQL,
			uuid.New(),
			record.Name,
			class.StateID,
			class.BusinessModelID,
			class.CategoryID,
			class.SubcategoryID,
			class.AnnualSalesRangeID,
			stringOrNil(record.Address),
			stringOrNil(record.Website),
			now,
			actor,
		).Scan(&inserted)
		if err != nil {
			return result, fmt.Errorf("bulk upsert company %q: %w", record.Name, err)
		}

		if inserted {
			result.Inserted++
		} else {
			result.Updated++
		}
		result.Total++
	}

	if err := tx.Commit(ctx); err != nil {
		return result, fmt.Errorf("commit bulk upsert tx: %w", err)
	}

	return result, nil
}

func scanCompanies(rows pgx.Rows) ([]entity.Company, error) {
	companies := []entity.Company{}
	for rows.Next() {
		var (
			c          entity.Company
			name       sql.NullString
			state      sql.NullString
			model      sql.NullString
			category   sql.NullString
			subcat     sql.NullString
			salesRange sql.NullString
			address    sql.NullString
			website    sql.NullString
			meta       metadataRow
		)

		dest := []any{&c.ID, &name, &state, &model, &category, &subcat, &salesRange, &address, &website}
		if err := rows.Scan(append(dest, meta.dest()...)...); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}

		var err error
		if c.Name, err = requiredString("company", "name", name); err != nil {
			return nil, err
		}
		c.StateID = state.String
		c.BusinessModelID = model.String
		c.CategoryID = category.String
		c.SubcategoryID = subcat.String
		c.AnnualSalesRangeID = salesRange.String
		c.Address = nullStringToPtr(address)
		c.Website = nullStringToPtr(website)
		if c.Metadata, err = meta.metadata("company"); err != nil {
			return nil, err
		}

		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}
