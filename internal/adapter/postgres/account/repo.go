// Package account implements the Account repository using PostgreSQL.
// Simple lookups use raw SQL constants; list filtering is built with squirrel.
package account

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

// Repo provides account persistence backed by PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new account repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

const accountColumns = `
	id, email, owner_id, province, city, last_review_date,
	used_in_sab, available, blocked, in_cooldown, cooldown_end_date,
	comments, ip, emulator, device_type, risk_level, risk_reason,
	created_at, updated_at`

const getByIDSQL = `SELECT` + accountColumns + ` FROM accounts WHERE id = $1`

const getByEmailSQL = `SELECT` + accountColumns + ` FROM accounts WHERE email = $1`

const insertSQL = `
INSERT INTO accounts (
	id, email, owner_id, province, city, last_review_date,
	used_in_sab, available, blocked, in_cooldown, cooldown_end_date,
	comments, ip, emulator, device_type, risk_level, risk_reason,
	created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`

const updateSQL = `
UPDATE accounts SET
	province = $2, city = $3, used_in_sab = $4, available = $5,
	blocked = $6, comments = $7, ip = $8, emulator = $9,
	device_type = $10, risk_level = $11, risk_reason = $12, updated_at = $13
WHERE id = $1`

const deleteSQL = `DELETE FROM accounts WHERE id = $1`

const setAvailableSQL = `UPDATE accounts SET available = $2, updated_at = $3 WHERE id = $1`

// Candidates are ordered so accounts that rested longest come first.
// Accounts that never reviewed sort before everything else.
const listCandidatesSQL = `
SELECT` + accountColumns + `
FROM accounts
WHERE blocked = FALSE
  AND available = TRUE
  AND (in_cooldown = FALSE OR cooldown_end_date IS NULL OR cooldown_end_date <= $1)
  AND ($2::uuid IS NULL OR owner_id = $2)
ORDER BY last_review_date ASC NULLS FIRST
LIMIT $3`

const countActiveInProvinceSQL = `
SELECT count(*) FROM accounts
WHERE province = $1 AND available = TRUE AND in_cooldown = FALSE`

const usedInSectorSinceSQL = `
SELECT EXISTS (
	SELECT 1
	FROM account_usage u
	JOIN businesses b ON u.business_id = b.id
	WHERE u.account_id = $1
	  AND b.sector = $2
	  AND b.province = $3
	  AND u.business_id != $4
	  AND u.used_at >= $5
)`

const insertUsageSQL = `
INSERT INTO account_usage (id, account_id, business_id, used_at, province, city, activity_type, notes)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

const recordReviewSQL = `
UPDATE accounts SET last_review_date = $2, province = $3, city = $4, updated_at = $2
WHERE id = $1`

const placeCooldownSQL = `
UPDATE accounts SET in_cooldown = TRUE, available = FALSE, cooldown_end_date = $2, updated_at = $3
WHERE id = $1`

const releaseCooldownsSQL = `
UPDATE accounts
SET in_cooldown = FALSE, available = TRUE, cooldown_end_date = NULL, updated_at = $1
WHERE in_cooldown = TRUE AND cooldown_end_date IS NOT NULL AND cooldown_end_date <= $1`

const insertPatternSQL = `
INSERT INTO traffic_patterns (id, account_id, business_id, frequency, traffic_type, active, start_date, end_date, last_sent, next_sent)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

const listDuePatternsSQL = `
SELECT id, account_id, business_id, frequency, traffic_type, active, start_date, end_date, last_sent, next_sent
FROM traffic_patterns
WHERE active = TRUE
  AND (next_sent IS NULL OR next_sent <= $1)
  AND (end_date IS NULL OR end_date > $1)
ORDER BY next_sent ASC NULLS FIRST
LIMIT $2`

const markTrafficSentSQL = `
UPDATE traffic_patterns SET last_sent = $2, next_sent = $3 WHERE id = $1`

const usageByAccountsSQL = `
SELECT id, account_id, business_id, used_at, province, city, activity_type, notes
FROM account_usage
WHERE account_id = ANY($1::uuid[])
ORDER BY used_at ASC`

const patternsByAccountsSQL = `
SELECT id, account_id, business_id, frequency, traffic_type, active, start_date, end_date, last_sent, next_sent
FROM traffic_patterns
WHERE account_id = ANY($1::uuid[])
ORDER BY start_date ASC`

// ---------------------------------------------------------------------------
// Read operations
// ---------------------------------------------------------------------------

// GetByID returns an account with usage history and traffic patterns hydrated.
func (r *Repo) GetByID(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	acc, err := scanAccountRow(querier.QueryRow(ctx, getByIDSQL, id))
	if err != nil {
		return domain.Account{}, mapError(err, "account", id)
	}

	hydrated, err := r.hydrate(ctx, querier, []domain.Account{acc})
	if err != nil {
		return domain.Account{}, mapError(err, "account", id)
	}

	return hydrated[0], nil
}

// GetByEmail returns an account by its normalized email, hydrated.
func (r *Repo) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	acc, err := scanAccountRow(querier.QueryRow(ctx, getByEmailSQL, email))
	if err != nil {
		return domain.Account{}, mapError(err, "account", uuid.Nil)
	}

	hydrated, err := r.hydrate(ctx, querier, []domain.Account{acc})
	if err != nil {
		return domain.Account{}, mapError(err, "account", acc.ID)
	}

	return hydrated[0], nil
}

// List returns accounts matching the filter, newest first.
// Usage history and traffic patterns are not hydrated here.
func (r *Repo) List(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	builder := sq.Select(
		"id", "email", "owner_id", "province", "city", "last_review_date",
		"used_in_sab", "available", "blocked", "in_cooldown", "cooldown_end_date",
		"comments", "ip", "emulator", "device_type", "risk_level", "risk_reason",
		"created_at", "updated_at",
	).
		From("accounts").
		OrderBy("created_at DESC").
		PlaceholderFormat(sq.Dollar)

	if filter.OwnerID != nil {
		builder = builder.Where(sq.Eq{"owner_id": *filter.OwnerID})
	}
	if filter.Province != "" {
		builder = builder.Where(sq.Eq{"province": filter.Province})
	}
	if filter.City != "" {
		builder = builder.Where(sq.Eq{"city": filter.City})
	}
	if filter.Available != nil {
		builder = builder.Where(sq.Eq{"available": *filter.Available})
	}
	if filter.Blocked != nil {
		builder = builder.Where(sq.Eq{"blocked": *filter.Blocked})
	}
	if filter.InCooldown != nil {
		builder = builder.Where(sq.Eq{"in_cooldown": *filter.InCooldown})
	}
	if filter.Search != "" {
		builder = builder.Where(sq.ILike{"email": "%" + filter.Search + "%"})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		builder = builder.Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build account list query: %w", err)
	}

	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	return accounts, nil
}

// ListCandidates returns up to limit usable accounts ordered by rest time,
// longest-rested first, fully hydrated for risk evaluation.
// ownerID, when non-nil, scopes candidates to that owner.
func (r *Repo) ListCandidates(ctx context.Context, now time.Time, ownerID *uuid.UUID, limit int) ([]domain.Account, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listCandidatesSQL, now, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list candidate accounts: %w", err)
	}
	defer rows.Close()

	accounts, err := scanAccounts(rows)
	if err != nil {
		return nil, fmt.Errorf("list candidate accounts: %w", err)
	}

	return r.hydrate(ctx, querier, accounts)
}

// CountActiveInProvince counts non-cooldown available accounts in a province.
func (r *Repo) CountActiveInProvince(ctx context.Context, province string) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var count int
	if err := querier.QueryRow(ctx, countActiveInProvinceSQL, province).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active accounts in province: %w", err)
	}

	return count, nil
}

// UsedInSectorSince reports whether the account was used since the given
// time on some other business of the same sector within the province.
func (r *Repo) UsedInSectorSince(ctx context.Context, accountID uuid.UUID, sector domain.Sector, province string, excludeBusinessID uuid.UUID, since time.Time) (bool, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	var exists bool
	err := querier.QueryRow(ctx, usedInSectorSinceSQL, accountID, sector.String(), province, excludeBusinessID, since).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check sector usage: %w", err)
	}

	return exists, nil
}

// ---------------------------------------------------------------------------
// Write operations
// ---------------------------------------------------------------------------

// Create inserts a new account. Duplicate email results in domain.ErrAlreadyExists.
func (r *Repo) Create(ctx context.Context, acc domain.Account) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, insertSQL,
		acc.ID, acc.Email, acc.OwnerID, acc.Province, acc.City, acc.LastReviewDate,
		acc.UsedInSAB, acc.Available, acc.Blocked, acc.InCooldown, acc.CooldownEnd,
		acc.Comments, acc.IP, acc.Emulator, acc.DeviceType.String(),
		acc.RiskLevel.String(), acc.RiskReason,
		acc.CreatedAt, acc.UpdatedAt)
	if err != nil {
		return mapError(err, "account", acc.ID)
	}

	return nil
}

// Update rewrites the mutable profile fields of an account.
// Returns domain.ErrNotFound if the account does not exist.
func (r *Repo) Update(ctx context.Context, acc domain.Account) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, updateSQL,
		acc.ID, acc.Province, acc.City, acc.UsedInSAB, acc.Available,
		acc.Blocked, acc.Comments, acc.IP, acc.Emulator,
		acc.DeviceType.String(), acc.RiskLevel.String(), acc.RiskReason,
		time.Now().UTC())
	if err != nil {
		return mapError(err, "account", acc.ID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", acc.ID, domain.ErrNotFound)
	}

	return nil
}

// Delete removes an account and, via cascade, its usage and traffic rows.
func (r *Repo) Delete(ctx context.Context, id uuid.UUID) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, deleteSQL, id)
	if err != nil {
		return mapError(err, "account", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// SetAvailable flips the availability flag.
func (r *Repo) SetAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, setAvailableSQL, id, available, time.Now().UTC())
	if err != nil {
		return mapError(err, "account", id)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", id, domain.ErrNotFound)
	}

	return nil
}

// AppendUsage records one use of the account on a business.
func (r *Repo) AppendUsage(ctx context.Context, accountID uuid.UUID, entry domain.UsageEntry) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, insertUsageSQL,
		entry.ID, accountID, entry.BusinessID, entry.UsedAt,
		entry.Province, entry.City, entry.Activity.String(), entry.Notes)
	if err != nil {
		return mapError(err, "account", accountID)
	}

	return nil
}

// RecordReview stamps the last review date and moves the account to the
// location where the review happened.
func (r *Repo) RecordReview(ctx context.Context, accountID uuid.UUID, reviewedAt time.Time, province, city string) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, recordReviewSQL, accountID, reviewedAt, province, city)
	if err != nil {
		return mapError(err, "account", accountID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}

	return nil
}

// PlaceInCooldown marks the account unavailable until the given time.
func (r *Repo) PlaceInCooldown(ctx context.Context, accountID uuid.UUID, until time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, placeCooldownSQL, accountID, until, time.Now().UTC())
	if err != nil {
		return mapError(err, "account", accountID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", accountID, domain.ErrNotFound)
	}

	return nil
}

// ReleaseExpiredCooldowns reactivates every account whose cooldown window
// has passed and returns how many were released.
func (r *Repo) ReleaseExpiredCooldowns(ctx context.Context, now time.Time) (int, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, releaseCooldownsSQL, now)
	if err != nil {
		return 0, fmt.Errorf("release expired cooldowns: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// AddTrafficPattern attaches a recurring traffic pattern to the account.
func (r *Repo) AddTrafficPattern(ctx context.Context, accountID uuid.UUID, p domain.TrafficPattern) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	_, err := querier.Exec(ctx, insertPatternSQL,
		p.ID, accountID, p.BusinessID, p.Frequency.String(), p.Type.String(),
		p.Active, p.StartDate, p.EndDate, p.LastSent, p.NextSent)
	if err != nil {
		return mapError(err, "traffic_pattern", p.ID)
	}

	return nil
}

// ListDueTrafficPatterns returns active patterns whose next send time has
// passed, oldest due first.
func (r *Repo) ListDueTrafficPatterns(ctx context.Context, now time.Time, limit int) ([]domain.DuePattern, error) {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	rows, err := querier.Query(ctx, listDuePatternsSQL, now, limit)
	if err != nil {
		return nil, fmt.Errorf("list due traffic patterns: %w", err)
	}
	defer rows.Close()

	var due []domain.DuePattern
	for rows.Next() {
		var d domain.DuePattern
		p, accountID, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due traffic pattern: %w", err)
		}
		d.AccountID = accountID
		d.Pattern = p
		due = append(due, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due traffic patterns: %w", err)
	}

	if due == nil {
		due = []domain.DuePattern{}
	}

	return due, nil
}

// MarkTrafficSent stamps a dispatched pattern with the send time and
// schedules the next occurrence.
func (r *Repo) MarkTrafficSent(ctx context.Context, patternID uuid.UUID, sentAt, nextAt time.Time) error {
	querier := postgres.QuerierFromCtx(ctx, r.pool)

	tag, err := querier.Exec(ctx, markTrafficSentSQL, patternID, sentAt, nextAt)
	if err != nil {
		return mapError(err, "traffic_pattern", patternID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("traffic_pattern %s: %w", patternID, domain.ErrNotFound)
	}

	return nil
}

// ---------------------------------------------------------------------------
// Hydration
// ---------------------------------------------------------------------------

// hydrate batch-loads usage history and traffic patterns for the given
// accounts with two queries regardless of the batch size.
func (r *Repo) hydrate(ctx context.Context, querier postgres.Querier, accounts []domain.Account) ([]domain.Account, error) {
	if len(accounts) == 0 {
		return accounts, nil
	}

	ids := make([]uuid.UUID, len(accounts))
	for i, a := range accounts {
		ids[i] = a.ID
	}

	usage, err := loadUsage(ctx, querier, ids)
	if err != nil {
		return nil, err
	}

	patterns, err := loadPatterns(ctx, querier, ids)
	if err != nil {
		return nil, err
	}

	for i := range accounts {
		accounts[i].UsageHistory = usage[accounts[i].ID]
		accounts[i].TrafficPatterns = patterns[accounts[i].ID]
	}

	return accounts, nil
}

func loadUsage(ctx context.Context, querier postgres.Querier, ids []uuid.UUID) (map[uuid.UUID][]domain.UsageEntry, error) {
	rows, err := querier.Query(ctx, usageByAccountsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("load usage history: %w", err)
	}
	defer rows.Close()

	usage := make(map[uuid.UUID][]domain.UsageEntry)
	for rows.Next() {
		var (
			e         domain.UsageEntry
			accountID uuid.UUID
			activity  string
		)
		if err := rows.Scan(&e.ID, &accountID, &e.BusinessID, &e.UsedAt,
			&e.Province, &e.City, &activity, &e.Notes); err != nil {
			return nil, fmt.Errorf("scan usage entry: %w", err)
		}
		e.Activity = domain.ActivityType(activity)
		usage[accountID] = append(usage[accountID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate usage history: %w", err)
	}

	return usage, nil
}

func loadPatterns(ctx context.Context, querier postgres.Querier, ids []uuid.UUID) (map[uuid.UUID][]domain.TrafficPattern, error) {
	rows, err := querier.Query(ctx, patternsByAccountsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("load traffic patterns: %w", err)
	}
	defer rows.Close()

	patterns := make(map[uuid.UUID][]domain.TrafficPattern)
	for rows.Next() {
		p, accountID, err := scanPattern(rows)
		if err != nil {
			return nil, fmt.Errorf("scan traffic pattern: %w", err)
		}
		patterns[accountID] = append(patterns[accountID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate traffic patterns: %w", err)
	}

	return patterns, nil
}

// ---------------------------------------------------------------------------
// Row scanning helpers
// ---------------------------------------------------------------------------

func scanAccounts(rows pgx.Rows) ([]domain.Account, error) {
	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if accounts == nil {
		accounts = []domain.Account{}
	}

	return accounts, nil
}

func scanAccountRow(row pgx.Row) (domain.Account, error) {
	var (
		a          domain.Account
		deviceType string
		riskLevel  string
	)

	err := row.Scan(&a.ID, &a.Email, &a.OwnerID, &a.Province, &a.City, &a.LastReviewDate,
		&a.UsedInSAB, &a.Available, &a.Blocked, &a.InCooldown, &a.CooldownEnd,
		&a.Comments, &a.IP, &a.Emulator, &deviceType, &riskLevel, &a.RiskReason,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return domain.Account{}, err
	}

	a.DeviceType = domain.DeviceType(deviceType)
	a.RiskLevel = domain.RiskLevel(riskLevel)

	return a, nil
}

func scanPattern(rows pgx.Rows) (domain.TrafficPattern, uuid.UUID, error) {
	var (
		p           domain.TrafficPattern
		accountID   uuid.UUID
		frequency   string
		trafficType string
	)

	err := rows.Scan(&p.ID, &accountID, &p.BusinessID, &frequency, &trafficType,
		&p.Active, &p.StartDate, &p.EndDate, &p.LastSent, &p.NextSent)
	if err != nil {
		return domain.TrafficPattern{}, uuid.Nil, err
	}

	p.Frequency = domain.TrafficFrequency(frequency)
	p.Type = domain.TrafficType(trafficType)

	return p, accountID, nil
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
