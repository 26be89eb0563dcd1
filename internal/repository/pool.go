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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/octobees/itinerary-maker/api/internal/entity"
)

// pgxPool is the subset of *pgxpool.Pool the repositories use.
type pgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

var _ pgxPool = (*pgxpool.Pool)(nil)

const metadataColumns = "added_at, added_by, updated_at, updated_by, deleted_at, deleted_by"

// metadataRow receives the audit columns of any table.
type metadataRow struct {
	addedAt   sql.NullTime
	addedBy   sql.NullString
	updatedAt sql.NullTime
	updatedBy sql.NullString
	deletedAt sql.NullTime
	deletedBy sql.NullString
}

func (m *metadataRow) dest() []any {
	return []any{&m.addedAt, &m.addedBy, &m.updatedAt, &m.updatedBy, &m.deletedAt, &m.deletedBy}
}

func (m *metadataRow) metadata(entityName string) (entity.Metadata, error) {
	var meta entity.Metadata
	if !m.addedAt.Valid {
		return meta, &entity.DecodeError{Entity: entityName, Field: "added_at"}
	}
	if !m.updatedAt.Valid {
		return meta, &entity.DecodeError{Entity: entityName, Field: "updated_at"}
	}
	addedBy, err := requiredActor(entityName, "added_by", m.addedBy)
	if err != nil {
		return meta, err
	}
	updatedBy, err := requiredActor(entityName, "updated_by", m.updatedBy)
	if err != nil {
		return meta, err
	}

	meta = entity.Metadata{
		AddedAt:   m.addedAt.Time.UTC(),
		AddedBy:   addedBy,
		UpdatedAt: m.updatedAt.Time.UTC(),
		UpdatedBy: updatedBy,
	}
	if m.deletedAt.Valid {
		ts := m.deletedAt.Time.UTC()
		meta.DeletedAt = &ts
	}
	if m.deletedBy.Valid {
		id, err := uuid.Parse(m.deletedBy.String)
		if err != nil {
			return meta, &entity.DecodeError{Entity: entityName, Field: "deleted_by", Err: err}
		}
		ref := entity.UnresolvedActor(id)
		meta.DeletedBy = &ref
	}
	return meta, nil
}

func requiredActor(entityName, field string, value sql.NullString) (entity.ActorRef, error) {
	if !value.Valid || value.String == "" {
		return entity.ActorRef{}, &entity.DecodeError{Entity: entityName, Field: field}
	}
	id, err := uuid.Parse(value.String)
	if err != nil {
		return entity.ActorRef{}, &entity.DecodeError{Entity: entityName, Field: field, Err: err}
	}
	return entity.UnresolvedActor(id), nil
}

func requiredString(entityName, field string, value sql.NullString) (string, error) {
	if !value.Valid {
		return "", &entity.DecodeError{Entity: entityName, Field: field}
	}
	return value.String, nil
}

// metadataArgs flattens the audit block into insert/update arguments.
func metadataArgs(m entity.Metadata) []any {
	var deletedBy any
	if m.DeletedBy != nil {
		deletedBy = m.DeletedBy.ID()
	}
	var deletedAt any
	if m.DeletedAt != nil {
		deletedAt = *m.DeletedAt
	}
	return []any{m.AddedAt, m.AddedBy.ID(), m.UpdatedAt, m.UpdatedBy.ID(), deletedAt, deletedBy}
}

// placeholders renders "$from, $from+1, ..." for count arguments.
func placeholders(from, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}

// softDelete stamps deleted_at/deleted_by on a live row of table.
func softDelete(ctx context.Context, pool pgxPool, table string, id, by uuid.UUID, at time.Time, notFound error) error {
	query := fmt.Sprintf(`UPDATE %s SET deleted_at = $1, deleted_by = $2, updated_at = $1, updated_by = $2 WHERE id = $3 AND deleted_at IS NULL`, table)
	cmd, err := pool.Exec(ctx, query, at.UTC(), by, id)
	if err != nil {
		return fmt.Errorf("soft delete %s: %w", table, err)
	}
	if cmd.RowsAffected() == 0 {
		return notFound
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func parseUUIDs(entityName, field string, values []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(values))
	for _, v := range values {
		id, err := uuid.Parse(v)
		if err != nil {
			return nil, &entity.DecodeError{Entity: entityName, Field: field, Err: err}
		}
		out = append(out, id)
	}
	return out, nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint || strings.Contains(pgErr.Message, constraint)
}

func stringOrNil(value *string) any {
	if value == nil {
		return nil
	}
	if *value == "" {
		return nil
	}
	return *value
}

func emptyToNil(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullStringToPtr(value sql.NullString) *string {
	if value.Valid {
		val := value.String
		return &val
	}
	return nil
}
