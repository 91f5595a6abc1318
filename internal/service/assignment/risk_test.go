package assignment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Freskan23/cuentascontrol/internal/config"
	"github.com/Freskan23/cuentascontrol/internal/domain"
)

func riskCfg() config.RiskConfig {
	return config.RiskConfig{
		MinDaysBetweenReviews:  7,
		CooldownDays:           30,
		MaxAccountsPerProvince: 50,
		MaxTrafficPatterns:     2,
		SectorLookbackDays:     90,
		CandidateMultiplier:    3,
	}
}

func usableAccount(province string) domain.Account {
	return domain.Account{
		ID:        uuid.New(),
		Email:     "tester@gmail.com",
		Province:  province,
		City:      "Madrid",
		Available: true,
	}
}

func testBusiness(province string) domain.Business {
	return domain.Business{
		ID:       uuid.New(),
		Name:     "Cerrajeria Rapida",
		Province: province,
		City:     "Madrid",
		Sector:   domain.SectorLocksmith,
		Category: domain.BusinessCategoryPhysical,
	}
}

func TestEvaluateRisk_CleanAccount_LowRisk(t *testing.T) {
	t.Parallel()

	now := time.Now()
	account := usableAccount("Madrid")
	business := testBusiness("Madrid")

	got := evaluateRisk(riskCfg(), account, business, riskFacts{}, now)

	assert.Equal(t, domain.RiskLevelLow, got.Level)
	assert.Empty(t, got.Reasons)
	assert.Equal(t, domain.RecommendationSafe, got.Recommendation)
	// 100 base + 50 new-account bonus, no penalties.
	assert.GreaterOrEqual(t, got.Score, 100)
	assert.Equal(t, 150, got.Score)
}

func TestEvaluateRisk_BlockedAccount_AlwaysHigh(t *testing.T) {
	t.Parallel()

	now := time.Now()
	business := testBusiness("Madrid")

	// Blocked dominates even a perfectly clean profile.
	account := usableAccount("Madrid")
	account.Blocked = true

	got := evaluateRisk(riskCfg(), account, business, riskFacts{}, now)

	assert.Equal(t, domain.RiskLevelHigh, got.Level)
	assert.Equal(t, domain.RecommendationHighRisk, got.Recommendation)
	require.Len(t, got.Reasons, 1)
	assert.Contains(t, got.Reasons[0], "not usable")
}

func TestEvaluateRisk_UnavailableAccount_High(t *testing.T) {
	t.Parallel()

	now := time.Now()
	account := usableAccount("Madrid")
	account.Available = false

	got := evaluateRisk(riskCfg(), account, testBusiness("Madrid"), riskFacts{}, now)

	assert.Equal(t, domain.RiskLevelHigh, got.Level)
}

func TestEvaluateRisk_ActiveCooldown_High(t *testing.T) {
	t.Parallel()

	now := time.Now()
	account := usableAccount("Madrid")
	account.InCooldown = true
	account.CooldownEnd = ptr(now.Add(24 * time.Hour))

	got := evaluateRisk(riskCfg(), account, testBusiness("Madrid"), riskFacts{}, now)

	assert.Equal(t, domain.RiskLevelHigh, got.Level)
}

func TestEvaluateRisk_ExpiredCooldown_NotHigh(t *testing.T) {
	t.Parallel()

	now := time.Now()
	account := usableAccount("Madrid")
	account.InCooldown = true
	account.CooldownEnd = ptr(now.Add(-1 * time.Hour))

	got := evaluateRisk(riskCfg(), account, testBusiness("Madrid"), riskFacts{}, now)

	assert.Equal(t, domain.RiskLevelLow, got.Level)
}

func TestEvaluateRisk_ProvinceMismatch_High(t *testing.T) {
	t.Parallel()

	now := time.Now()
	account := usableAccount("Barcelona")
	business := testBusiness("Madrid")

	got := evaluateRisk(riskCfg(), account, business, riskFacts{}, now)

	assert.Equal(t, domain.RiskLevelHigh, got.Level)
	require.Len(t, got.Reasons, 1)
	assert.Contains(t, got.Reasons[0], "province")
}

func TestEvaluateRisk_RecentReview_Medium(t *testing.T) {
	t.Parallel()

	now := time.Now()
	account := usableAccount("Madrid")
	account.LastReviewDate = ptr(now.AddDate(0, 0, -3))

	got := evaluateRisk(riskCfg(), account, testBusiness("Madrid"), riskFacts{}, now)

	assert.Equal(t, domain.RiskLevelMedium, got.Level)
	assert.Equal(t, domain.RecommendationCaution, got.Recommendation)
	require.Len(t, got.Reasons, 1)
	assert.Contains(t, got.Reasons[0], "3 days ago")
}

func TestEvaluateRisk_OldReview_NoRecencyReason(t *testing.T) {
	t.Parallel()

	now := time.Now()
	account := usableAccount("Madrid")
	account.LastReviewDate = ptr(now.AddDate(0, 0, -30))

	got := evaluateRisk(riskCfg(), account, testBusiness("Madrid"), riskFacts{}, now)

	assert.Equal(t, domain.RiskLevelLow, got.Level)
	assert.Empty(t, got.Reasons)
	// 100 base + 30 rest days.
	assert.Equal(t, 130, got.Score)
}

func TestEvaluateRisk_UsedOnSameBusiness_High(t *testing.T) {
	t.Parallel()

	now := time.Now()
	business := testBusiness("Madrid")
	account := usableAccount("Madrid")
	account.UsageHistory = []domain.UsageEntry{
		{ID: uuid.New(), BusinessID: business.ID, UsedAt: now.AddDate(0, -6, 0)},
	}

	got := evaluateRisk(riskCfg(), account, business, riskFacts{}, now)

	assert.Equal(t, domain.RiskLevelHigh, got.Level)
	require.Len(t, got.Reasons, 1)
	assert.Contains(t, got.Reasons[0], "already used on this business")
}

func TestEvaluateRisk_SectorReuse_Medium(t *testing.T) {
	t.Parallel()

	now := time.Now()
	account := usableAccount("Madrid")

	got := evaluateRisk(riskCfg(), account, testBusiness("Madrid"), riskFacts{usedInSectorRecently: true}, now)

	assert.Equal(t, domain.RiskLevelMedium, got.Level)
	require.Len(t, got.Reasons, 1)
	assert.Contains(t, got.Reasons[0], "sector")
}

func TestEvaluateRisk_TrafficElsewhere_SABOnly(t *testing.T) {
	t.Parallel()

	now := time.Now()
	account := usableAccount("Madrid")
	account.TrafficPatterns = []domain.TrafficPattern{
		{ID: uuid.New(), BusinessID: uuid.New(), Active: true},
	}

	physical := testBusiness("Madrid")
	got := evaluateRisk(riskCfg(), account, physical, riskFacts{}, now)
	assert.Equal(t, domain.RiskLevelLow, got.Level, "physical business must not trigger the traffic rule")

	sab := testBusiness("Madrid")
	sab.Category = domain.BusinessCategorySAB
	got = evaluateRisk(riskCfg(), account, sab, riskFacts{}, now)
	assert.Equal(t, domain.RiskLevelMedium, got.Level)
	require.Len(t, got.Reasons, 1)
	assert.Contains(t, got.Reasons[0], "traffic pattern")
}

func TestEvaluateRisk_TrafficOnSameBusiness_NoReason(t *testing.T) {
	t.Parallel()

	now := time.Now()
	sab := testBusiness("Madrid")
	sab.Category = domain.BusinessCategorySAB

	account := usableAccount("Madrid")
	account.TrafficPatterns = []domain.TrafficPattern{
		{ID: uuid.New(), BusinessID: sab.ID, Active: true},
	}

	got := evaluateRisk(riskCfg(), account, sab, riskFacts{}, now)

	assert.Equal(t, domain.RiskLevelLow, got.Level)
}

func TestEvaluateRisk_ProvinceSaturation_Medium(t *testing.T) {
	t.Parallel()

	now := time.Now()
	account := usableAccount("Madrid")

	// At the limit: no reason.
	got := evaluateRisk(riskCfg(), account, testBusiness("Madrid"), riskFacts{activeInProvince: 50}, now)
	assert.Equal(t, domain.RiskLevelLow, got.Level)

	// Above the limit: medium.
	got = evaluateRisk(riskCfg(), account, testBusiness("Madrid"), riskFacts{activeInProvince: 51}, now)
	assert.Equal(t, domain.RiskLevelMedium, got.Level)
	require.Len(t, got.Reasons, 1)
	assert.Contains(t, got.Reasons[0], "51 active accounts")
}

func TestEvaluateRisk_MediumRuleNeverLowersHigh(t *testing.T) {
	t.Parallel()

	now := time.Now()
	business := testBusiness("Madrid")

	// Blocked (high) plus a recent review (medium) plus saturation (medium).
	account := usableAccount("Madrid")
	account.Blocked = true
	account.LastReviewDate = ptr(now.AddDate(0, 0, -2))

	got := evaluateRisk(riskCfg(), account, business, riskFacts{activeInProvince: 60}, now)

	assert.Equal(t, domain.RiskLevelHigh, got.Level)
	assert.Len(t, got.Reasons, 3)
}

func TestEvaluateRisk_ScoreMonotonicInReasons(t *testing.T) {
	t.Parallel()

	now := time.Now()
	business := testBusiness("Madrid")

	// Both accounts end at medium with the same review age; the second
	// trips one more rule.
	oneReason := usableAccount("Madrid")
	oneReason.LastReviewDate = ptr(now.AddDate(0, 0, -3))

	twoReasons := usableAccount("Madrid")
	twoReasons.LastReviewDate = ptr(now.AddDate(0, 0, -3))

	a := evaluateRisk(riskCfg(), oneReason, business, riskFacts{}, now)
	b := evaluateRisk(riskCfg(), twoReasons, business, riskFacts{activeInProvince: 60}, now)

	require.Equal(t, domain.RiskLevelMedium, a.Level)
	require.Equal(t, domain.RiskLevelMedium, b.Level)
	assert.Greater(t, len(b.Reasons), len(a.Reasons))
	assert.LessOrEqual(t, b.Score, a.Score)
}

func TestEvaluateRisk_ScoreFloorsAtZero(t *testing.T) {
	t.Parallel()

	now := time.Now()
	business := testBusiness("Madrid")

	account := usableAccount("Barcelona")
	account.Blocked = true
	account.LastReviewDate = ptr(now.AddDate(0, 0, -1))
	account.UsageHistory = []domain.UsageEntry{
		{ID: uuid.New(), BusinessID: business.ID, UsedAt: now.AddDate(0, 0, -1)},
	}

	got := evaluateRisk(riskCfg(), account, business, riskFacts{usedInSectorRecently: true, activeInProvince: 99}, now)

	// 100 - 70 (high) - 60 (six reasons) + 1 (rest day) < 0.
	assert.Equal(t, 0, got.Score)
	assert.Equal(t, domain.RiskLevelHigh, got.Level)
}

func TestEvaluateRisk_Idempotent(t *testing.T) {
	t.Parallel()

	now := time.Now()
	account := usableAccount("Madrid")
	account.LastReviewDate = ptr(now.AddDate(0, 0, -5))
	business := testBusiness("Madrid")
	facts := riskFacts{usedInSectorRecently: true, activeInProvince: 20}

	first := evaluateRisk(riskCfg(), account, business, facts, now)
	second := evaluateRisk(riskCfg(), account, business, facts, now)

	assert.Equal(t, first, second)
}

func TestEvaluateRisk_NewAccountBonusVsRestBonus(t *testing.T) {
	t.Parallel()

	now := time.Now()
	business := testBusiness("Madrid")

	fresh := usableAccount("Madrid")

	rested := usableAccount("Madrid")
	rested.LastReviewDate = ptr(now.AddDate(0, 0, -200))

	freshResult := evaluateRisk(riskCfg(), fresh, business, riskFacts{}, now)
	restedResult := evaluateRisk(riskCfg(), rested, business, riskFacts{}, now)

	// Rest bonus caps at 90; the new-account bonus is a flat 50.
	assert.Equal(t, 150, freshResult.Score)
	assert.Equal(t, 190, restedResult.Score)
}
