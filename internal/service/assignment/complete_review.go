package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// CompleteReview closes the pending assignment for the pair and applies
// the full post-review transition as one transaction: the assignment is
// marked completed with rating and comment, the business review counters
// and average rating are recomputed, a usage entry is appended to the
// account, the account moves to the business's location with a fresh
// last-review date, and finally enters cooldown.
//
// Fails with domain.ErrInvalidState when no pending assignment exists,
// so a second completion for the same pair always fails.
func (s *Service) CompleteReview(ctx context.Context, input CompleteReviewInput) (*CompleteReviewResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByID(ctx, input.AccountID)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	business, err := s.businesses.GetByID(ctx, input.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}

	if _, exists := business.PendingAssignment(account.ID); !exists {
		return nil, fmt.Errorf("no pending assignment for account %s on business %s: %w",
			account.ID, business.ID, domain.ErrInvalidState)
	}

	now := s.now()
	cooldownEnd := now.AddDate(0, 0, s.cfg.CooldownDays)
	rating := input.Rating

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		err := s.businesses.CompleteAssignment(txCtx, business.ID, account.ID, now, &rating, input.Comment)
		if err != nil {
			// The pending row vanished between the check and the update.
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("assignment no longer pending: %w", domain.ErrInvalidState)
			}
			return fmt.Errorf("complete assignment: %w", err)
		}

		if err := s.businesses.RefreshReviewStats(txCtx, business.ID, now); err != nil {
			return fmt.Errorf("refresh review stats: %w", err)
		}

		usage := domain.UsageEntry{
			ID:         uuid.New(),
			BusinessID: business.ID,
			UsedAt:     now,
			Province:   business.Province,
			City:       business.City,
			Activity:   domain.ActivityTypeReview,
			Notes:      input.Comment,
		}
		if err := s.accounts.AppendUsage(txCtx, account.ID, usage); err != nil {
			return fmt.Errorf("append usage: %w", err)
		}

		// The device reviewed from the business's location; move the
		// account there and stamp the review date.
		if err := s.accounts.RecordReview(txCtx, account.ID, now, business.Province, business.City); err != nil {
			return fmt.Errorf("record review: %w", err)
		}

		if err := s.accounts.PlaceInCooldown(txCtx, account.ID, cooldownEnd); err != nil {
			return fmt.Errorf("place in cooldown: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "review completed",
		slog.String("account_id", account.ID.String()),
		slog.String("business_id", business.ID.String()),
		slog.Int("rating", input.Rating),
		slog.Time("cooldown_end", cooldownEnd),
	)

	return &CompleteReviewResult{
		AccountID:   account.ID,
		BusinessID:  business.ID,
		CompletedAt: now,
		CooldownEnd: cooldownEnd,
	}, nil
}
