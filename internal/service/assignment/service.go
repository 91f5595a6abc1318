// Package assignment implements the account-assignment risk engine: risk
// analysis of (account, business) pairs, safe candidate search, guarded
// assignment, and the completion/cooldown transition.
package assignment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/config"
	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Account, error)
	ListCandidates(ctx context.Context, now time.Time, ownerID *uuid.UUID, limit int) ([]domain.Account, error)
	CountActiveInProvince(ctx context.Context, province string) (int, error)
	UsedInSectorSince(ctx context.Context, accountID uuid.UUID, sector domain.Sector, province string, excludeBusinessID uuid.UUID, since time.Time) (bool, error)
	SetAvailable(ctx context.Context, id uuid.UUID, available bool) error
	AppendUsage(ctx context.Context, accountID uuid.UUID, entry domain.UsageEntry) error
	RecordReview(ctx context.Context, accountID uuid.UUID, reviewedAt time.Time, province, city string) error
	PlaceInCooldown(ctx context.Context, accountID uuid.UUID, until time.Time) error
}

type businessRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Business, error)
	AppendAssignment(ctx context.Context, businessID uuid.UUID, a domain.Assignment) error
	CompleteAssignment(ctx context.Context, businessID, accountID uuid.UUID, completedAt time.Time, rating *int, comment string) error
	CancelAssignment(ctx context.Context, businessID, accountID uuid.UUID, cancelledAt time.Time) error
	RefreshReviewStats(ctx context.Context, businessID uuid.UUID, now time.Time) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ---------------------------------------------------------------------------
// Service
// ---------------------------------------------------------------------------

// Service implements the assignment engine business logic.
type Service struct {
	accounts   accountRepo
	businesses businessRepo
	tx         txManager
	log        *slog.Logger
	cfg        config.RiskConfig

	// now is swappable in tests.
	now func() time.Time
}

// NewService creates a new assignment service.
func NewService(
	log *slog.Logger,
	accounts accountRepo,
	businesses businessRepo,
	tx txManager,
	cfg config.RiskConfig,
) *Service {
	return &Service{
		accounts:   accounts,
		businesses: businesses,
		tx:         tx,
		log:        log.With("service", "assignment"),
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
	}
}
