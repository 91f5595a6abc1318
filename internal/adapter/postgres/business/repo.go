// Package business implements the Business repository using PostgreSQL.
package business

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/Freskan23/cuentascontrol/internal/adapter/postgres"
	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// Repo provides business persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new business repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const businessColumns = `
	id, name, address, postal_code, city, province, category, sector,
	phone, email, website, google_place_id, google_maps_url,
	review_target, current_reviews, average_rating,
	total_reviews_received, total_traffic_generated, last_activity, avg_response_days,
	risk_level, risk_reason, notes, active, created_by, created_at, updated_at`

const getByIDSQL = `SELECT` + businessColumns + ` FROM businesses WHERE id = $1`

const insertSQL = `
INSERT INTO businesses (
	id, name, address, postal_code, city, province, category, sector,
	phone, email, website, google_place_id, google_maps_url,
	review_target, current_reviews, average_rating,
	total_reviews_received, total_traffic_generated, last_activity, avg_response_days,
	risk_level, risk_reason, notes, active, created_by, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
          $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`

const updateSQL = `
UPDATE businesses SET
	name = $2, address = $3, postal_code = $4, city = $5, province = $6,
	category = $7, sector = $8, phone = $9, email = $10, website = $11,
	google_place_id = $12, google_maps_url = $13, review_target = $14,
	notes = $15, active = $16, updated_at = $17
WHERE id = $1`

const deleteSQL = `DELETE FROM businesses WHERE id = $1`

const existsByIdentitySQL = `
SELECT EXISTS (
	SELECT 1 FROM businesses WHERE lower(name) = lower($1) AND lower(address) = lower($2)
)`

const hasPendingAssignmentSQL = `
SELECT EXISTS (
	SELECT 1 FROM assignments
	WHERE business_id = $1 AND account_id = $2 AND status = 'PENDING'
)`

const insertAssignmentSQL = `
INSERT INTO assignments (id, business_id, account_id, assigned_at, status, review_comment)
VALUES ($1, $2, $3, $4, $5, $6)`

const completeAssignmentSQL = `
UPDATE assignments
SET status = 'COMPLETED', completed_at = $3, rating = $4, review_comment = $5
WHERE business_id = $1 AND account_id = $2 AND status = 'PENDING'`

const cancelAssignmentSQL = `
UPDATE assignments
SET status = 'CANCELLED', completed_at = $3
WHERE business_id = $1 AND account_id = $2 AND status = 'PENDING'`

// refreshReviewStatsSQL recomputes the review counters and the mean rating
// from completed assignments in a single statement.
const refreshReviewStatsSQL = `
UPDATE businesses b
SET current_reviews = s.completed,
    total_reviews_received = s.completed,
    average_rating = s.avg_rating,
    last_activity = $2,
    updated_at = $2
FROM (
	SELECT count(*) FILTER (WHERE status = 'COMPLETED') AS completed,
	       COALESCE(avg(rating) FILTER (WHERE status = 'COMPLETED' AND rating IS NOT NULL), 0) AS avg_rating
	FROM assignments
	WHERE business_id = $1
) s
WHERE b.id = $1`

const incrementTrafficSQL = `
UPDATE businesses
SET total_traffic_generated = total_traffic_generated + 1, last_activity = $2, updated_at = $2
WHERE id = $1`

const assignmentsByBusinessSQL = `
SELECT id, account_id, assigned_at, status, completed_at, rating, review_comment
FROM assignments
WHERE business_id = $1
ORDER BY assigned_at ASC`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns a business with its assignments hydrated, oldest first.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Business, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	biz, err := scanBusinessRow(querier.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return domain.Business{}, mapError(err, "business", id)
	}

	assignments, err := loadAssignments(ctx, querier, id)
	if err != nil {
		return domain.Business{}, mapError(err, "business", id)
	}
	biz.AssignedAccounts = assignments

	return biz, nil
}

// List returns businesses matching the filter, newest first.
// Assignments are not hydrated here.
func (r *Repo) List(ctx context.Context, filter domain.BusinessFilter) ([]domain.Business, error) {
	builder := sq.Select(
		"id", "name", "address", "postal_code", "city", "province", "category", "sector",
		"phone", "email", "website", "google_place_id", "google_maps_url",
		"review_target", "current_reviews", "average_rating",
		"total_reviews_received", "total_traffic_generated", "last_activity", "avg_response_days",
		"risk_level", "risk_reason", "notes", "active", "created_by", "created_at", "updated_at",
	).
		From("businesses").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.Province != "" {
		builder = builder.Where(sq.Eq{"province": filter.Province})
	}
	if filter.City != "" {
		builder = builder.Where(sq.Eq{"city": filter.City})
	}
	if filter.Sector != "" {
		builder = builder.Where(sq.Eq{"sector": filter.Sector.String()})
	}
	if filter.Category != "" {
		builder = builder.Where(sq.Eq{"category": filter.Category.String()})
	}
	if filter.Active != nil {
		builder = builder.Where(sq.Eq{"active": *filter.Active})
	}
	if filter.Search != "" {
		builder = builder.Where(sq.ILike{"name": "%" + filter.Search + "%"})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build business list query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	defer rows.Close()

	businesses, err := scanBusinesses(rows)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}

	return businesses, nil
}

// ExistsByIdentity reports whether a business with the same name and
// address pair already exists, case-insensitively.
func (r *Repo) ExistsByIdentity(ctx context.Context, name, address string) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var exists bool
	if err := querier.QueryRow(ctx, existsByIdentitySQL, name, address).Scan(&exists); err != nil {
		return false, fmt.Errorf("check business identity: %w", err)
	}

	return exists, nil
}

// HasPendingAssignment reports whether the account already holds a
// pending assignment on the business.
func (r *Repo) HasPendingAssignment(ctx context.Context, businessID, accountID uuid.UUID) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var exists bool
	if err := querier.QueryRow(ctx, hasPendingAssignmentSQL, businessID, accountID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check pending assignment: %w", err)
	}

	return exists, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new business. A duplicate (name, address) identity
// results in domain.ErrAlreadyExists via the unique index.
func (r *Repo) Create(ctx context.Context, biz domain.Business) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, insertSQL,
		biz.ID, biz.Name, biz.Address, biz.PostalCode, biz.City, biz.Province,
		biz.Category.String(), biz.Sector.String(),
		biz.Phone, biz.Email, biz.Website, biz.GooglePlaceID, biz.GoogleMapsURL,
		biz.ReviewTarget, biz.CurrentReviews, biz.AverageRating,
		biz.Statistics.TotalReviewsReceived, biz.Statistics.TotalTrafficGen,
		biz.Statistics.LastActivity, biz.Statistics.AvgResponseDays,
		biz.RiskLevel.String(), biz.RiskReason, biz.Notes, biz.Active,
		biz.CreatedBy, biz.CreatedAt, biz.UpdatedAt)
	if err != nil {
		return mapError(err, "business", biz.ID)
	}

	return nil
}

// Update rewrites the mutable profile fields of a business.
func (r *Repo) Update(ctx context.Context, biz domain.Business) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, updateSQL,
		biz.ID, biz.Name, biz.Address, biz.PostalCode, biz.City, biz.Province,
		biz.Category.String(), biz.Sector.String(), biz.Phone, biz.Email, biz.Website,
		biz.GooglePlaceID, biz.GoogleMapsURL, biz.ReviewTarget,
		biz.Notes, biz.Active, time.Now().UTC())
	if err != nil {
		return mapError(err, "business", biz.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("business %s: %w", biz.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes a business and, via cascade, its assignments.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, id)
	if err != nil {
		return mapError(err, "business", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("business %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// AppendAssignment links an account to the business with a pending
// assignment. A concurrent duplicate hits the partial unique index and
// comes back as domain.ErrAlreadyExists.
func (r *Repo) AppendAssignment(ctx context.Context, businessID uuid.UUID, a domain.Assignment) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, insertAssignmentSQL,
		a.ID, businessID, a.AccountID, a.AssignedAt, a.Status.String(), a.ReviewComment)
	if err != nil {
		return mapError(err, "assignment", a.ID)
	}

	return nil
}

// CompleteAssignment moves the pending assignment for the account to
// COMPLETED. Returns domain.ErrNotFound when no pending assignment exists.
func (r *Repo) CompleteAssignment(ctx context.Context, businessID, accountID uuid.UUID, completedAt time.Time, rating *int, comment string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, completeAssignmentSQL, businessID, accountID, completedAt, rating, comment)
	if err != nil {
		return mapError(err, "assignment", uuid.Nil)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending assignment for account %s on business %s: %w", accountID, businessID, domain.ErrNotFound)
	}

	return nil
}

// CancelAssignment moves the pending assignment for the account to
// CANCELLED. Returns domain.ErrNotFound when no pending assignment exists.
func (r *Repo) CancelAssignment(ctx context.Context, businessID, accountID uuid.UUID, cancelledAt time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, cancelAssignmentSQL, businessID, accountID, cancelledAt)
	if err != nil {
		return mapError(err, "assignment", uuid.Nil)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("pending assignment for account %s on business %s: %w", accountID, businessID, domain.ErrNotFound)
	}

	return nil
}

// RefreshReviewStats recomputes review counters and average rating from
// the assignment rows.
func (r *Repo) RefreshReviewStats(ctx context.Context, businessID uuid.UUID, now time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, refreshReviewStatsSQL, businessID, now)
	if err != nil {
		return mapError(err, "business", businessID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("business %s: %w", businessID, domain.ErrNotFound)
	}

	return nil
}

// IncrementTraffic bumps the traffic counter after a dispatched pattern.
func (r *Repo) IncrementTraffic(ctx context.Context, businessID uuid.UUID, now time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, incrementTrafficSQL, businessID, now)
	if err != nil {
		return mapError(err, "business", businessID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("business %s: %w", businessID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func loadAssignments(ctx context.Context, querier postgres.Querier, businessID uuid.UUID) ([]domain.Assignment, error) {
	rows, err := querier.Query(ctx, assignmentsByBusinessSQL, businessID)
	if err != nil {
		return nil, fmt.Errorf("load assignments: %w", err)
	}
	defer rows.Close()

	var assignments []domain.Assignment
	for rows.Next() {
		var (
			a      domain.Assignment
			status string
		)
		if err := rows.Scan(&a.ID, &a.AccountID, &a.AssignedAt, &status,
			&a.CompletedAt, &a.Rating, &a.ReviewComment); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}
		a.Status = domain.AssignmentStatus(status)
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assignments: %w", err)
	}

	if assignments == nil {
		assignments = []domain.Assignment{}
	}

	return assignments, nil
}

func scanBusinesses(rows pgx.Rows) ([]domain.Business, error) {
	var businesses []domain.Business
	for rows.Next() {
		b, err := scanBusinessRow(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if businesses == nil {
		businesses = []domain.Business{}
	}

	return businesses, nil
}

func scanBusinessRow(row pgx.Row) (domain.Business, error) {
	var (
		b         domain.Business
		category  string
		sector    string
		riskLevel string
	)

	err := row.Scan(&b.ID, &b.Name, &b.Address, &b.PostalCode, &b.City, &b.Province,
		&category, &sector, &b.Phone, &b.Email, &b.Website,
		&b.GooglePlaceID, &b.GoogleMapsURL,
		&b.ReviewTarget, &b.CurrentReviews, &b.AverageRating,
		&b.Statistics.TotalReviewsReceived, &b.Statistics.TotalTrafficGen,
		&b.Statistics.LastActivity, &b.Statistics.AvgResponseDays,
		&riskLevel, &b.RiskReason, &b.Notes, &b.Active,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return domain.Business{}, err
	}

	b.Category = domain.BusinessCategory(category)
	b.Sector = domain.Sector(sector)
	b.RiskLevel = domain.RiskLevel(riskLevel)

	return b, nil
}

// ---------------------------------------------------------------------------
// Error mapping
// ---------------------------------------------------------------------------

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
