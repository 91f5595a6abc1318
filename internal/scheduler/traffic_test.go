package scheduler

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

type trafficAccountRepoMock struct {
	ListDueTrafficPatternsFunc func(ctx context.Context, now time.Time, limit int) ([]domain.DuePattern, error)
	MarkTrafficSentFunc        func(ctx context.Context, patternID uuid.UUID, sentAt, nextAt time.Time) error
	AppendUsageFunc            func(ctx context.Context, accountID uuid.UUID, entry domain.UsageEntry) error
}

func (m *trafficAccountRepoMock) ListDueTrafficPatterns(ctx context.Context, now time.Time, limit int) ([]domain.DuePattern, error) {
	if m.ListDueTrafficPatternsFunc == nil {
		panic("unexpected call to ListDueTrafficPatterns")
	}
	return m.ListDueTrafficPatternsFunc(ctx, now, limit)
}

func (m *trafficAccountRepoMock) MarkTrafficSent(ctx context.Context, patternID uuid.UUID, sentAt, nextAt time.Time) error {
	if m.MarkTrafficSentFunc == nil {
		panic("unexpected call to MarkTrafficSent")
	}
	return m.MarkTrafficSentFunc(ctx, patternID, sentAt, nextAt)
}

func (m *trafficAccountRepoMock) AppendUsage(ctx context.Context, accountID uuid.UUID, entry domain.UsageEntry) error {
	if m.AppendUsageFunc == nil {
		panic("unexpected call to AppendUsage")
	}
	return m.AppendUsageFunc(ctx, accountID, entry)
}

type trafficBusinessRepoMock struct {
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (domain.Business, error)
	IncrementTrafficFunc func(ctx context.Context, businessID uuid.UUID, now time.Time) error
}

func (m *trafficBusinessRepoMock) GetByID(ctx context.Context, id uuid.UUID) (domain.Business, error) {
	if m.GetByIDFunc == nil {
		panic("unexpected call to GetByID")
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *trafficBusinessRepoMock) IncrementTraffic(ctx context.Context, businessID uuid.UUID, now time.Time) error {
	if m.IncrementTrafficFunc == nil {
		panic("unexpected call to IncrementTraffic")
	}
	return m.IncrementTrafficFunc(ctx, businessID, now)
}

type txManagerMock struct {
	runs int
	err  error
}

func (m *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	m.runs++
	if m.err != nil {
		return m.err
	}
	return fn(ctx)
}

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newDispatcher(accounts *trafficAccountRepoMock, businesses *trafficBusinessRepoMock, tx *txManagerMock) *TrafficDispatcher {
	return &TrafficDispatcher{
		accounts:   accounts,
		businesses: businesses,
		tx:         tx,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		batchSize:  100,
		now:        func() time.Time { return fixedNow },
	}
}

func duePattern(accountID, businessID uuid.UUID, freq domain.TrafficFrequency) domain.DuePattern {
	return domain.DuePattern{
		AccountID: accountID,
		Pattern: domain.TrafficPattern{
			ID:         uuid.New(),
			BusinessID: businessID,
			Frequency:  freq,
			Type:       domain.TrafficTypeNavigation,
			Active:     true,
		},
	}
}

func TestDispatchDue(t *testing.T) {
	accountID := uuid.New()
	businessID := uuid.New()
	business := domain.Business{
		ID:       businessID,
		Name:     "Cerrajeros Rapidos",
		Province: "Madrid",
		City:     "Madrid",
	}

	t.Run("dispatches one due pattern", func(t *testing.T) {
		dp := duePattern(accountID, businessID, domain.TrafficFrequencyDaily)

		var sentAt, nextAt time.Time
		var usage domain.UsageEntry

		accounts := &trafficAccountRepoMock{
			ListDueTrafficPatternsFunc: func(_ context.Context, now time.Time, limit int) ([]domain.DuePattern, error) {
				assert.Equal(t, fixedNow, now)
				assert.Equal(t, 100, limit)
				return []domain.DuePattern{dp}, nil
			},
			MarkTrafficSentFunc: func(_ context.Context, patternID uuid.UUID, s, n time.Time) error {
				assert.Equal(t, dp.Pattern.ID, patternID)
				sentAt, nextAt = s, n
				return nil
			},
			AppendUsageFunc: func(_ context.Context, id uuid.UUID, entry domain.UsageEntry) error {
				assert.Equal(t, accountID, id)
				usage = entry
				return nil
			},
		}
		businesses := &trafficBusinessRepoMock{
			GetByIDFunc: func(_ context.Context, id uuid.UUID) (domain.Business, error) {
				assert.Equal(t, businessID, id)
				return business, nil
			},
			IncrementTrafficFunc: func(_ context.Context, id uuid.UUID, now time.Time) error {
				assert.Equal(t, businessID, id)
				return nil
			},
		}
		tx := &txManagerMock{}

		d := newDispatcher(accounts, businesses, tx)
		sent, err := d.DispatchDue(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, 1, tx.runs)
		assert.Equal(t, fixedNow, sentAt)
		assert.Equal(t, fixedNow.Add(24*time.Hour), nextAt)
		assert.Equal(t, domain.ActivityTypeTraffic, usage.Activity)
		assert.Equal(t, "Madrid", usage.Province)
	})

	t.Run("weekly pattern schedules a week out", func(t *testing.T) {
		dp := duePattern(accountID, businessID, domain.TrafficFrequencyWeekly)

		var nextAt time.Time
		accounts := &trafficAccountRepoMock{
			ListDueTrafficPatternsFunc: func(_ context.Context, _ time.Time, _ int) ([]domain.DuePattern, error) {
				return []domain.DuePattern{dp}, nil
			},
			MarkTrafficSentFunc: func(_ context.Context, _ uuid.UUID, _, n time.Time) error {
				nextAt = n
				return nil
			},
			AppendUsageFunc: func(_ context.Context, _ uuid.UUID, _ domain.UsageEntry) error { return nil },
		}
		businesses := &trafficBusinessRepoMock{
			GetByIDFunc: func(_ context.Context, _ uuid.UUID) (domain.Business, error) {
				return business, nil
			},
			IncrementTrafficFunc: func(_ context.Context, _ uuid.UUID, _ time.Time) error { return nil },
		}

		d := newDispatcher(accounts, businesses, &txManagerMock{})
		sent, err := d.DispatchDue(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, fixedNow.Add(7*24*time.Hour), nextAt)
	})

	t.Run("nothing due", func(t *testing.T) {
		accounts := &trafficAccountRepoMock{
			ListDueTrafficPatternsFunc: func(_ context.Context, _ time.Time, _ int) ([]domain.DuePattern, error) {
				return []domain.DuePattern{}, nil
			},
		}

		d := newDispatcher(accounts, &trafficBusinessRepoMock{}, &txManagerMock{})
		sent, err := d.DispatchDue(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, sent)
	})

	t.Run("one failing pattern does not stop the batch", func(t *testing.T) {
		missingBusinessID := uuid.New()
		bad := duePattern(accountID, missingBusinessID, domain.TrafficFrequencyDaily)
		good := duePattern(accountID, businessID, domain.TrafficFrequencyDaily)

		accounts := &trafficAccountRepoMock{
			ListDueTrafficPatternsFunc: func(_ context.Context, _ time.Time, _ int) ([]domain.DuePattern, error) {
				return []domain.DuePattern{bad, good}, nil
			},
			MarkTrafficSentFunc: func(_ context.Context, _ uuid.UUID, _, _ time.Time) error { return nil },
			AppendUsageFunc:     func(_ context.Context, _ uuid.UUID, _ domain.UsageEntry) error { return nil },
		}
		businesses := &trafficBusinessRepoMock{
			GetByIDFunc: func(_ context.Context, id uuid.UUID) (domain.Business, error) {
				if id == missingBusinessID {
					return domain.Business{}, domain.ErrNotFound
				}
				return business, nil
			},
			IncrementTrafficFunc: func(_ context.Context, _ uuid.UUID, _ time.Time) error { return nil },
		}
		tx := &txManagerMock{}

		d := newDispatcher(accounts, businesses, tx)
		sent, err := d.DispatchDue(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		assert.Equal(t, 1, tx.runs)
	})

	t.Run("transaction failure skips the pattern", func(t *testing.T) {
		dp := duePattern(accountID, businessID, domain.TrafficFrequencyDaily)

		accounts := &trafficAccountRepoMock{
			ListDueTrafficPatternsFunc: func(_ context.Context, _ time.Time, _ int) ([]domain.DuePattern, error) {
				return []domain.DuePattern{dp}, nil
			},
		}
		businesses := &trafficBusinessRepoMock{
			GetByIDFunc: func(_ context.Context, _ uuid.UUID) (domain.Business, error) {
				return business, nil
			},
		}
		tx := &txManagerMock{err: assert.AnError}

		d := newDispatcher(accounts, businesses, tx)
		sent, err := d.DispatchDue(context.Background())

		require.NoError(t, err)
		assert.Equal(t, 0, sent)
	})
}

func TestDispatchDue_ContextCancelled(t *testing.T) {
	accountID := uuid.New()
	businessID := uuid.New()

	ctx, cancel := context.WithCancel(context.Background())

	accounts := &trafficAccountRepoMock{
		ListDueTrafficPatternsFunc: func(_ context.Context, _ time.Time, _ int) ([]domain.DuePattern, error) {
			cancel()
			return []domain.DuePattern{duePattern(accountID, businessID, domain.TrafficFrequencyDaily)}, nil
		},
	}

	d := newDispatcher(accounts, &trafficBusinessRepoMock{}, &txManagerMock{})
	sent, err := d.DispatchDue(ctx)

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, sent)
}
