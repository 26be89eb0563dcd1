package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/octobees/itinerary-maker/api/internal/entity"
)

type stubPool struct {
	queryRowFunc func(ctx context.Context, query string, args ...any) pgx.Row
	queryFunc    func(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	execFunc     func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	beginTxFunc  func(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

func (s *stubPool) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	if s.queryRowFunc != nil {
		return s.queryRowFunc(ctx, query, args...)
	}
	return &stubRow{scan: func(dest ...any) error { return nil }}
}

func (s *stubPool) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	if s.queryFunc != nil {
		return s.queryFunc(ctx, query, args...)
	}
	return nil, errors.New("query not implemented")
}

func (s *stubPool) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	if s.execFunc != nil {
		return s.execFunc(ctx, query, args...)
	}
	return pgconn.CommandTag{}, errors.New("exec not implemented")
}

func (s *stubPool) BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error) {
	if s.beginTxFunc != nil {
		return s.beginTxFunc(ctx, txOptions)
	}
	return nil, errors.New("begin tx not implemented")
}

type stubRow struct {
	scan func(dest ...any) error
}

func (s *stubRow) Scan(dest ...any) error {
	if s.scan != nil {
		return s.scan(dest...)
	}
	return nil
}

type stubRows struct {
	scans []func(dest ...any) error
	idx   int
	err   error
}

func (s *stubRows) Close() {}

func (s *stubRows) Err() error { return s.err }

func (s *stubRows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (s *stubRows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (s *stubRows) Next() bool {
	if s.err != nil {
		return false
	}
	if s.idx < len(s.scans) {
		s.idx++
		return true
	}
	return false
}

func (s *stubRows) Scan(dest ...any) error {
	if s.idx == 0 || s.idx > len(s.scans) {
		return errors.New("scan called out of order")
	}
	return s.scans[s.idx-1](dest...)
}

func (s *stubRows) Values() ([]any, error) { return nil, nil }

func (s *stubRows) RawValues() [][]byte { return nil }

func (s *stubRows) Conn() *pgx.Conn { return nil }

var (
	testActorID = uuid.MustParse("eeeeeeee-eeee-eeee-eeee-eeeeeeeeeeee")
	testTime    = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
)

// fillMetadata writes a live audit block into the trailing six scan targets.
func fillMetadata(dest []any) {
	n := len(dest)
	*dest[n-6].(*sql.NullTime) = sql.NullTime{Time: testTime, Valid: true}
	*dest[n-5].(*sql.NullString) = sql.NullString{String: testActorID.String(), Valid: true}
	*dest[n-4].(*sql.NullTime) = sql.NullTime{Time: testTime, Valid: true}
	*dest[n-3].(*sql.NullString) = sql.NullString{String: testActorID.String(), Valid: true}
}

func TestMetadataRow(t *testing.T) {
	deleter := uuid.New()
	row := metadataRow{
		addedAt:   sql.NullTime{Time: testTime, Valid: true},
		addedBy:   sql.NullString{String: testActorID.String(), Valid: true},
		updatedAt: sql.NullTime{Time: testTime.Add(time.Hour), Valid: true},
		updatedBy: sql.NullString{String: testActorID.String(), Valid: true},
		deletedAt: sql.NullTime{Time: testTime.Add(2 * time.Hour), Valid: true},
		deletedBy: sql.NullString{String: deleter.String(), Valid: true},
	}

	meta, err := row.metadata("company")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if meta.AddedBy.ID() != testActorID || meta.AddedBy.IsResolved() {
		t.Fatalf("expected unresolved creator, got %+v", meta.AddedBy)
	}
	if !meta.IsDeleted() || meta.DeletedBy == nil || meta.DeletedBy.ID() != deleter {
		t.Fatalf("expected deletion fields, got %+v", meta)
	}
}

func TestMetadataRow_DecodeErrors(t *testing.T) {
	valid := func() metadataRow {
		return metadataRow{
			addedAt:   sql.NullTime{Time: testTime, Valid: true},
			addedBy:   sql.NullString{String: testActorID.String(), Valid: true},
			updatedAt: sql.NullTime{Time: testTime, Valid: true},
			updatedBy: sql.NullString{String: testActorID.String(), Valid: true},
		}
	}

	cases := map[string]struct {
		mutate func(*metadataRow)
		field  string
	}{
		"missing added_at":   {func(m *metadataRow) { m.addedAt = sql.NullTime{} }, "added_at"},
		"missing added_by":   {func(m *metadataRow) { m.addedBy = sql.NullString{} }, "added_by"},
		"bad updated_by":     {func(m *metadataRow) { m.updatedBy = sql.NullString{String: "nope", Valid: true} }, "updated_by"},
		"bad deleted_by":     {func(m *metadataRow) { m.deletedBy = sql.NullString{String: "nope", Valid: true} }, "deleted_by"},
		"missing updated_at": {func(m *metadataRow) { m.updatedAt = sql.NullTime{} }, "updated_at"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			row := valid()
			tc.mutate(&row)
			_, err := row.metadata("user")
			var decodeErr *entity.DecodeError
			if !errors.As(err, &decodeErr) {
				t.Fatalf("expected DecodeError, got %v", err)
			}
			if decodeErr.Entity != "user" || decodeErr.Field != tc.field {
				t.Fatalf("unexpected decode error: %+v", decodeErr)
			}
		})
	}
}

func TestHelperConversions(t *testing.T) {
	if stringOrNil(nil) != nil {
		t.Fatalf("expected nil when pointer nil")
	}
	empty := ""
	if stringOrNil(&empty) != nil {
		t.Fatalf("expected nil for empty string")
	}
	value := "hello"
	if stringOrNil(&value) != "hello" {
		t.Fatalf("expected string value")
	}
	if emptyToNil("") != nil || emptyToNil("x") != "x" {
		t.Fatalf("unexpected emptyToNil conversion")
	}
	if got := placeholders(3, 3); got != "$3, $4, $5" {
		t.Fatalf("unexpected placeholders %q", got)
	}

	meta := entity.NewMetadata(entity.UnresolvedActor(testActorID), testTime)
	args := metadataArgs(meta)
	if len(args) != 6 || args[1] != testActorID || args[4] != nil || args[5] != nil {
		t.Fatalf("unexpected metadata args: %+v", args)
	}

	if _, err := parseUUIDs("x", "ids", []string{"bad"}); err == nil {
		t.Fatalf("expected parse failure")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	err := &pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"}
	if !isUniqueViolation(err, "users_email_key") {
		t.Fatalf("expected unique violation")
	}
	if isUniqueViolation(err, "other_key") {
		t.Fatalf("expected constraint mismatch")
	}
	if isUniqueViolation(errors.New("boom"), "") {
		t.Fatalf("plain errors are not unique violations")
	}
}

func TestSoftDelete(t *testing.T) {
	notFound := errors.New("missing")
	var gotQuery string
	pool := &stubPool{execFunc: func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
		gotQuery = query
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}}
	if err := softDelete(context.Background(), pool, "companies", uuid.New(), testActorID, testTime, notFound); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotQuery == "" {
		t.Fatalf("expected exec to be called")
	}

	pool.execFunc = func(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	if err := softDelete(context.Background(), pool, "companies", uuid.New(), testActorID, testTime, notFound); !errors.Is(err, notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
