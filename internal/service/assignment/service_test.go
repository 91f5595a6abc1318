package assignment

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

var fixedNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestService(accounts *accountRepoMock, businesses *businessRepoMock, tx *txManagerMock) *Service {
	return &Service{
		accounts:   accounts,
		businesses: businesses,
		tx:         tx,
		log:        slog.Default(),
		cfg:        riskCfg(),
		now:        func() time.Time { return fixedNow },
	}
}

// noSectorUse is the common happy-path stub for the per-candidate lookup.
func noSectorUse(ctx context.Context, accountID uuid.UUID, sector domain.Sector, province string, excludeBusinessID uuid.UUID, since time.Time) (bool, error) {
	return false, nil
}

// ---------------------------------------------------------------------------
// AnalyzeRisk
// ---------------------------------------------------------------------------

func TestService_AnalyzeRisk_CleanPair(t *testing.T) {
	t.Parallel()

	account := usableAccount("Madrid")
	business := testBusiness("Madrid")

	accounts := &accountRepoMock{
		UsedInSectorSinceFunc: noSectorUse,
		CountActiveInProvinceFunc: func(ctx context.Context, province string) (int, error) {
			return 10, nil
		},
	}

	svc := newTestService(accounts, &businessRepoMock{}, &txManagerMock{})

	got := svc.AnalyzeRisk(context.Background(), account, business)

	assert.Equal(t, domain.RiskLevelLow, got.Level)
	assert.Equal(t, domain.RecommendationSafe, got.Recommendation)
}

func TestService_AnalyzeRisk_StoreError_FailsClosed(t *testing.T) {
	t.Parallel()

	accounts := &accountRepoMock{
		UsedInSectorSinceFunc: func(ctx context.Context, accountID uuid.UUID, sector domain.Sector, province string, excludeBusinessID uuid.UUID, since time.Time) (bool, error) {
			return false, errors.New("connection reset")
		},
	}

	svc := newTestService(accounts, &businessRepoMock{}, &txManagerMock{})

	got := svc.AnalyzeRisk(context.Background(), usableAccount("Madrid"), testBusiness("Madrid"))

	assert.Equal(t, domain.RiskLevelHigh, got.Level)
	assert.Equal(t, domain.RecommendationFailed, got.Recommendation)
	assert.Equal(t, 0, got.Score)
	require.Len(t, got.Reasons, 1)
	assert.Contains(t, got.Reasons[0], "analysis failed")
}

func TestService_AnalyzeRisk_Panic_FailsClosed(t *testing.T) {
	t.Parallel()

	accounts := &accountRepoMock{
		UsedInSectorSinceFunc: func(ctx context.Context, accountID uuid.UUID, sector domain.Sector, province string, excludeBusinessID uuid.UUID, since time.Time) (bool, error) {
			panic("boom")
		},
	}

	svc := newTestService(accounts, &businessRepoMock{}, &txManagerMock{})

	got := svc.AnalyzeRisk(context.Background(), usableAccount("Madrid"), testBusiness("Madrid"))

	assert.Equal(t, domain.RiskLevelHigh, got.Level)
	assert.Equal(t, domain.RecommendationFailed, got.Recommendation)
}

func TestService_AnalyzeRiskByID_AccountNotFound(t *testing.T) {
	t.Parallel()

	accounts := &accountRepoMock{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (domain.Account, error) {
			return domain.Account{}, domain.ErrNotFound
		},
	}

	svc := newTestService(accounts, &businessRepoMock{}, &txManagerMock{})

	_, err := svc.AnalyzeRiskByID(context.Background(), uuid.New(), uuid.New())

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
