// Package account implements account management: CRUD, listing, traffic
// patterns, and CSV bulk import.
package account

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type accountRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Account, error)
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Create(ctx context.Context, acc domain.Account) error
	Update(ctx context.Context, acc domain.Account) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error)
	AddTrafficPattern(ctx context.Context, accountID uuid.UUID, p domain.TrafficPattern) error
	ReleaseExpiredCooldowns(ctx context.Context, now time.Time) (int, error)
}

// Service implements account management logic.
type Service struct {
	accounts accountRepo
	log      *slog.Logger
}

// NewService creates a new account service.
func NewService(log *slog.Logger, accounts accountRepo) *Service {
	return &Service{
		accounts: accounts,
		log:      log.With("service", "account"),
	}
}
