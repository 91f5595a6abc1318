// Package user implements the User repository using PostgreSQL.
package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Freskan23/cuentascontrol/internal/adapter/postgres"
	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// Repo provides user persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new user repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const userColumns = `
	id, email, username, password_hash, role, active, created_at, updated_at`

const getByIDSQL = `SELECT` + userColumns + ` FROM users WHERE id = $1`

const getByEmailSQL = `SELECT` + userColumns + ` FROM users WHERE email = $1`

const insertSQL = `
INSERT INTO users (id, email, username, password_hash, role, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const setActiveSQL = `UPDATE users SET active = $2, updated_at = $3 WHERE id = $1`

// GetByID returns a user by primary key.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	u, err := scanUserRow(querier.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return domain.User{}, mapError(err, "user", id)
	}

	return u, nil
}

// GetByEmail returns a user by normalized email.
func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	u, err := scanUserRow(querier.QueryRow(ctx, getByEmailSQL, email))
	if err != nil {
		return domain.User{}, mapError(err, "user", uuid.Nil)
	}

	return u, nil
}

// Create inserts a new user. Duplicate email results in domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, u domain.User) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, insertSQL,
		u.ID, u.Email, u.Username, u.PasswordHash, u.Role.String(),
		u.Active, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return mapError(err, "user", u.ID)
	}

	return nil
}

// SetActive flips the active flag on a user.
func (r *Repo) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, setActiveSQL, id, active, time.Now().UTC())
	if err != nil {
		return mapError(err, "user", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

func scanUserRow(row pgx.Row) (domain.User, error) {
	var (
		u    domain.User
		role string
	)

	err := row.Scan(&u.ID, &u.Email, &u.Username, &u.PasswordHash, &role,
		&u.Active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return domain.User{}, err
	}

	u.Role = domain.Role(role)

	return u, nil
}

// mapError converts pgx/pgconn errors into domain errors.
func mapError(err error, entity string, id uuid.UUID) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s %s: %w", entity, id, err)
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrAlreadyExists)
		case "23503": // foreign_key_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrNotFound)
		case "23514": // check_violation
			return fmt.Errorf("%s %s: %w", entity, id, domain.ErrValidation)
		}
	}

	return fmt.Errorf("%s %s: %w", entity, id, err)
}
