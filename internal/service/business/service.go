// Package business implements business management: CRUD, listing, and
// duplicate detection on the (name, address) identity.
package business

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// ---------------------------------------------------------------------------
// Consumer-defined interfaces (private)
// ---------------------------------------------------------------------------

type businessRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Business, error)
	List(ctx context.Context, filter domain.BusinessFilter) ([]domain.Business, error)
	ExistsByIdentity(ctx context.Context, name, address string) (bool, error)
	Create(ctx context.Context, b domain.Business) error
	Update(ctx context.Context, b domain.Business) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service implements business management logic.
type Service struct {
	businesses businessRepo
	log        *slog.Logger
}

// NewService creates a new business service.
func NewService(log *slog.Logger, businesses businessRepo) *Service {
	return &Service{
		businesses: businesses,
		log:        log.With("service", "business"),
	}
}
