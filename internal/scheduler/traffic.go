package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

type trafficAccountRepo interface {
	ListDueTrafficPatterns(ctx context.Context, now time.Time, limit int) ([]domain.DuePattern, error)
	MarkTrafficSent(ctx context.Context, patternID uuid.UUID, sentAt, nextAt time.Time) error
	AppendUsage(ctx context.Context, accountID uuid.UUID, entry domain.UsageEntry) error
}

type trafficBusinessRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Business, error)
	IncrementTraffic(ctx context.Context, businessID uuid.UUID, now time.Time) error
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// TrafficDispatcher fires due traffic patterns: each dispatch bumps the
// target business's traffic counters, records an account usage entry, and
// schedules the pattern's next occurrence.
type TrafficDispatcher struct {
	accounts   trafficAccountRepo
	businesses trafficBusinessRepo
	tx         txManager
	log        *slog.Logger
	batchSize  int
	now        func() time.Time
}

// NewTrafficDispatcher creates a dispatcher processing up to batchSize
// patterns per run.
func NewTrafficDispatcher(
	log *slog.Logger,
	accounts trafficAccountRepo,
	businesses trafficBusinessRepo,
	tx txManager,
	batchSize int,
) *TrafficDispatcher {
	return &TrafficDispatcher{
		accounts:   accounts,
		businesses: businesses,
		tx:         tx,
		log:        log.With("component", "traffic_dispatcher"),
		batchSize:  batchSize,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// DispatchDue processes all patterns due at the time of the call and
// returns how many were dispatched. A failure on one pattern is logged
// and skipped so the rest of the batch still goes out.
func (d *TrafficDispatcher) DispatchDue(ctx context.Context) (int, error) {
	now := d.now()

	due, err := d.accounts.ListDueTrafficPatterns(ctx, now, d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list due traffic patterns: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	var sent int
	for _, dp := range due {
		if err := ctx.Err(); err != nil {
			return sent, err
		}

		if err := d.dispatch(ctx, dp, now); err != nil {
			d.log.ErrorContext(ctx, "traffic pattern dispatch failed",
				slog.String("pattern_id", dp.Pattern.ID.String()),
				slog.String("account_id", dp.AccountID.String()),
				slog.Any("error", err),
			)
			continue
		}
		sent++
	}

	d.log.InfoContext(ctx, "traffic dispatch finished",
		slog.Int("due", len(due)),
		slog.Int("sent", sent),
	)

	return sent, nil
}

func (d *TrafficDispatcher) dispatch(ctx context.Context, dp domain.DuePattern, now time.Time) error {
	biz, err := d.businesses.GetByID(ctx, dp.Pattern.BusinessID)
	if err != nil {
		return fmt.Errorf("get business: %w", err)
	}

	next := now.Add(dp.Pattern.Frequency.Interval())

	return d.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := d.accounts.MarkTrafficSent(ctx, dp.Pattern.ID, now, next); err != nil {
			return fmt.Errorf("mark traffic sent: %w", err)
		}
		if err := d.businesses.IncrementTraffic(ctx, biz.ID, now); err != nil {
			return fmt.Errorf("increment business traffic: %w", err)
		}

		entry := domain.UsageEntry{
			ID:         uuid.New(),
			BusinessID: biz.ID,
			UsedAt:     now,
			Province:   biz.Province,
			City:       biz.City,
			Activity:   domain.ActivityTypeTraffic,
			Notes:      fmt.Sprintf("traffic %s", dp.Pattern.Type),
		}
		if err := d.accounts.AppendUsage(ctx, dp.AccountID, entry); err != nil {
			return fmt.Errorf("append usage: %w", err)
		}

		return nil
	})
}
