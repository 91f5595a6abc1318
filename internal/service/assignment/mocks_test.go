package assignment

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// Function-field mocks for the private repo interfaces. A nil func means
// the test does not expect that call.

type accountRepoMock struct {
	mu sync.Mutex

	GetByIDFunc               func(ctx context.Context, id uuid.UUID) (domain.Account, error)
	ListCandidatesFunc        func(ctx context.Context, now time.Time, ownerID *uuid.UUID, limit int) ([]domain.Account, error)
	CountActiveInProvinceFunc func(ctx context.Context, province string) (int, error)
	UsedInSectorSinceFunc     func(ctx context.Context, accountID uuid.UUID, sector domain.Sector, province string, excludeBusinessID uuid.UUID, since time.Time) (bool, error)
	SetAvailableFunc          func(ctx context.Context, id uuid.UUID, available bool) error
	AppendUsageFunc           func(ctx context.Context, accountID uuid.UUID, entry domain.UsageEntry) error
	RecordReviewFunc          func(ctx context.Context, accountID uuid.UUID, reviewedAt time.Time, province, city string) error
	PlaceInCooldownFunc       func(ctx context.Context, accountID uuid.UUID, until time.Time) error

	countActiveCalls     int
	setAvailableCalls    int
	appendUsageCalls     int
	recordReviewCalls    int
	placeInCooldownCalls int
}

func (m *accountRepoMock) GetByID(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	if m.GetByIDFunc == nil {
		panic("unexpected call to GetByID")
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *accountRepoMock) ListCandidates(ctx context.Context, now time.Time, ownerID *uuid.UUID, limit int) ([]domain.Account, error) {
	if m.ListCandidatesFunc == nil {
		panic("unexpected call to ListCandidates")
	}
	return m.ListCandidatesFunc(ctx, now, ownerID, limit)
}

func (m *accountRepoMock) CountActiveInProvince(ctx context.Context, province string) (int, error) {
	if m.CountActiveInProvinceFunc == nil {
		panic("unexpected call to CountActiveInProvince")
	}
	m.mu.Lock()
	m.countActiveCalls++
	m.mu.Unlock()
	return m.CountActiveInProvinceFunc(ctx, province)
}

func (m *accountRepoMock) UsedInSectorSince(ctx context.Context, accountID uuid.UUID, sector domain.Sector, province string, excludeBusinessID uuid.UUID, since time.Time) (bool, error) {
	if m.UsedInSectorSinceFunc == nil {
		panic("unexpected call to UsedInSectorSince")
	}
	return m.UsedInSectorSinceFunc(ctx, accountID, sector, province, excludeBusinessID, since)
}

func (m *accountRepoMock) SetAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	if m.SetAvailableFunc == nil {
		panic("unexpected call to SetAvailable")
	}
	m.mu.Lock()
	m.setAvailableCalls++
	m.mu.Unlock()
	return m.SetAvailableFunc(ctx, id, available)
}

func (m *accountRepoMock) AppendUsage(ctx context.Context, accountID uuid.UUID, entry domain.UsageEntry) error {
	if m.AppendUsageFunc == nil {
		panic("unexpected call to AppendUsage")
	}
	m.mu.Lock()
	m.appendUsageCalls++
	m.mu.Unlock()
	return m.AppendUsageFunc(ctx, accountID, entry)
}

func (m *accountRepoMock) RecordReview(ctx context.Context, accountID uuid.UUID, reviewedAt time.Time, province, city string) error {
	if m.RecordReviewFunc == nil {
		panic("unexpected call to RecordReview")
	}
	m.mu.Lock()
	m.recordReviewCalls++
	m.mu.Unlock()
	return m.RecordReviewFunc(ctx, accountID, reviewedAt, province, city)
}

func (m *accountRepoMock) PlaceInCooldown(ctx context.Context, accountID uuid.UUID, until time.Time) error {
	if m.PlaceInCooldownFunc == nil {
		panic("unexpected call to PlaceInCooldown")
	}
	m.mu.Lock()
	m.placeInCooldownCalls++
	m.mu.Unlock()
	return m.PlaceInCooldownFunc(ctx, accountID, until)
}

type businessRepoMock struct {
	mu sync.Mutex

	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (domain.Business, error)
	AppendAssignmentFunc   func(ctx context.Context, businessID uuid.UUID, a domain.Assignment) error
	CompleteAssignmentFunc func(ctx context.Context, businessID, accountID uuid.UUID, completedAt time.Time, rating *int, comment string) error
	CancelAssignmentFunc   func(ctx context.Context, businessID, accountID uuid.UUID, cancelledAt time.Time) error
	RefreshReviewStatsFunc func(ctx context.Context, businessID uuid.UUID, now time.Time) error

	appendAssignmentCalls   int
	completeAssignmentCalls int
	cancelAssignmentCalls   int
	refreshStatsCalls       int
}

func (m *businessRepoMock) GetByID(ctx context.Context, id uuid.UUID) (domain.Business, error) {
	if m.GetByIDFunc == nil {
		panic("unexpected call to GetByID")
	}
	return m.GetByIDFunc(ctx, id)
}

func (m *businessRepoMock) AppendAssignment(ctx context.Context, businessID uuid.UUID, a domain.Assignment) error {
	if m.AppendAssignmentFunc == nil {
		panic("unexpected call to AppendAssignment")
	}
	m.mu.Lock()
	m.appendAssignmentCalls++
	m.mu.Unlock()
	return m.AppendAssignmentFunc(ctx, businessID, a)
}

func (m *businessRepoMock) CompleteAssignment(ctx context.Context, businessID, accountID uuid.UUID, completedAt time.Time, rating *int, comment string) error {
	if m.CompleteAssignmentFunc == nil {
		panic("unexpected call to CompleteAssignment")
	}
	m.mu.Lock()
	m.completeAssignmentCalls++
	m.mu.Unlock()
	return m.CompleteAssignmentFunc(ctx, businessID, accountID, completedAt, rating, comment)
}

func (m *businessRepoMock) CancelAssignment(ctx context.Context, businessID, accountID uuid.UUID, cancelledAt time.Time) error {
	if m.CancelAssignmentFunc == nil {
		panic("unexpected call to CancelAssignment")
	}
	m.mu.Lock()
	m.cancelAssignmentCalls++
	m.mu.Unlock()
	return m.CancelAssignmentFunc(ctx, businessID, accountID, cancelledAt)
}

func (m *businessRepoMock) RefreshReviewStats(ctx context.Context, businessID uuid.UUID, now time.Time) error {
	if m.RefreshReviewStatsFunc == nil {
		panic("unexpected call to RefreshReviewStats")
	}
	m.mu.Lock()
	m.refreshStatsCalls++
	m.mu.Unlock()
	return m.RefreshReviewStatsFunc(ctx, businessID, now)
}

// txManagerMock runs the function inline; runs counts invocations.
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

func ptr[T any](v T) *T { return &v }
