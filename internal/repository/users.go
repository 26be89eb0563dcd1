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

// ErrUserNotFound is returned when no user matches the lookup criteria.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailDuplicate = errors.New("email already exists")
)

// UsersRepository declares persistence operations for users.
type UsersRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error)
	Create(ctx context.Context, user entity.User) error
	List(ctx context.Context) ([]entity.User, error)
	Update(ctx context.Context, user entity.User) error
	SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error
}

// PGXUsersRepository implements UsersRepository with pgx.
type PGXUsersRepository struct {
	pool pgxPool
}

// NewPGXUsersRepository instantiates a users repository.
func NewPGXUsersRepository(pool *pgxpool.Pool) *PGXUsersRepository {
	return &PGXUsersRepository{pool: pool}
}

const userColumns = `id, email, password_hash, first_name, last_name, account_role_id, ` + metadataColumns

// FindByEmail fetches a live user by email if present.
func (r *PGXUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND deleted_at IS NULL`, email)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

// FindByID retrieves a live user by identifier.
func (r *PGXUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND deleted_at IS NULL`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

// FindByIDs returns the users with the given ids, including soft-deleted ones,
// so that historical actors can still be displayed.
func (r *PGXUsersRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.User, error) {
	if len(ids) == 0 {
		return []entity.User{}, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id::text = ANY($1)`, uuidStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("query users by ids: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// Create inserts a new user row.
func (r *PGXUsersRepository) Create(ctx context.Context, user entity.User) error {
	args := []any{user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, roleIDOrNil(user.AccountRoleID)}
	args = append(args, metadataArgs(user.Metadata)...)

	_, err := r.pool.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES (`+placeholders(1, 12)+`)`, args...)
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return fmt.Errorf("%w: %v", ErrEmailDuplicate, err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// List returns live users ordered by creation date (desc).
func (r *PGXUsersRepository) List(ctx context.Context) ([]entity.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	return collectUsers(rows)
}

// Update writes the mutable columns of a live user.
func (r *PGXUsersRepository) Update(ctx context.Context, user entity.User) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE users SET
            email = $2,
            password_hash = $3,
            first_name = $4,
            last_name = $5,
            account_role_id = $6,
            updated_at = $7,
            updated_by = $8
        WHERE id = $1 AND deleted_at IS NULL
    `, user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, roleIDOrNil(user.AccountRoleID), user.UpdatedAt, user.UpdatedBy.ID())
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return fmt.Errorf("%w: %v", ErrEmailDuplicate, err)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SoftDelete marks a user as deleted.
func (r *PGXUsersRepository) SoftDelete(ctx context.Context, id, by uuid.UUID, at time.Time) error {
	return softDelete(ctx, r.pool, "users", id, by, at, ErrUserNotFound)
}

func collectUsers(rows pgx.Rows) ([]entity.User, error) {
	users := []entity.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		user      entity.User
		email     sql.NullString
		hash      sql.NullString
		firstName sql.NullString
		lastName  sql.NullString
		roleID    sql.NullString
		meta      metadataRow
	)
	dest := []any{&user.ID, &email, &hash, &firstName, &lastName, &roleID}
	if err := row.Scan(append(dest, meta.dest()...)...); err != nil {
		return nil, err
	}

	var err error
	if user.Email, err = requiredString("user", "email", email); err != nil {
		return nil, err
	}
	if user.PasswordHash, err = requiredString("user", "password_hash", hash); err != nil {
		return nil, err
	}
	user.FirstName = firstName.String
	user.LastName = lastName.String
	if roleID.Valid {
		id, err := uuid.Parse(roleID.String)
		if err != nil {
			return nil, &entity.DecodeError{Entity: "user", Field: "account_role_id", Err: err}
		}
		user.AccountRoleID = &id
	}
	if user.Metadata, err = meta.metadata("user"); err != nil {
		return nil, err
	}
	return &user, nil
}

func roleIDOrNil(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return *id
}
