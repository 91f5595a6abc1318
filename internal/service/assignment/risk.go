package assignment

import (
	"fmt"
	"time"

	"github.com/Freskan23/cuentascontrol/internal/config"
	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// riskFacts carries the point-in-time store reads a risk evaluation needs
// beyond the two entities themselves. Candidate search computes the
// saturation count once per batch and shares it across candidates.
type riskFacts struct {
	usedInSectorRecently bool
	activeInProvince     int
}

// evaluateRisk is the pure decision function of the engine. Rules run in a
// fixed order; each rule that fires appends a reason and may raise the
// level, never lower it. The caller supplies all store-derived facts, so
// two calls with identical inputs yield identical results.
func evaluateRisk(cfg config.RiskConfig, account domain.Account, business domain.Business, facts riskFacts, now time.Time) domain.RiskAssessment {
	level := domain.RiskLevelLow
	var reasons []string

	// Rule 1: unusable account.
	if !account.IsUsable(now) {
		level = level.Escalate(domain.RiskLevelHigh)
		reasons = append(reasons, "account is not usable (blocked, unavailable, or in cooldown)")
	}

	// Rule 2: province mismatch.
	if account.Province != business.Province {
		level = level.Escalate(domain.RiskLevelHigh)
		reasons = append(reasons, fmt.Sprintf("account province %q does not match business province %q", account.Province, business.Province))
	}

	// Rule 3: reviewed too recently.
	days, hasReviewed := account.DaysSinceLastReview(now)
	if hasReviewed && days < cfg.MinDaysBetweenReviews {
		level = level.Escalate(domain.RiskLevelMedium)
		reasons = append(reasons, fmt.Sprintf("last review was %d days ago, minimum is %d", days, cfg.MinDaysBetweenReviews))
	}

	// Rule 4: already used on this exact business.
	if account.UsedOnBusiness(business.ID) {
		level = level.Escalate(domain.RiskLevelHigh)
		reasons = append(reasons, "account was already used on this business")
	}

	// Rule 5: recent use in the same sector and province.
	if facts.usedInSectorRecently {
		level = level.Escalate(domain.RiskLevelMedium)
		reasons = append(reasons, fmt.Sprintf("account was used in sector %s in the same province within the last %d days", business.Sector, cfg.SectorLookbackDays))
	}

	// Rule 6: active traffic elsewhere while targeting a service-area business.
	if business.Category == domain.BusinessCategorySAB && account.HasActiveTrafficElsewhere(business.ID) {
		level = level.Escalate(domain.RiskLevelMedium)
		reasons = append(reasons, "account runs an active traffic pattern for another business")
	}

	// Rule 7: province saturation.
	if facts.activeInProvince > cfg.MaxAccountsPerProvince {
		level = level.Escalate(domain.RiskLevelMedium)
		reasons = append(reasons, fmt.Sprintf("province %q holds %d active accounts, above the limit of %d", business.Province, facts.activeInProvince, cfg.MaxAccountsPerProvince))
	}

	return domain.RiskAssessment{
		Level:          level,
		Reasons:        reasons,
		Recommendation: domain.RecommendationFor(level),
		Score:          scoreFor(level, len(reasons), days, hasReviewed),
	}
}

// scoreFor ranks candidates: higher means a better pick. The score never
// gates an assignment; only the level does.
func scoreFor(level domain.RiskLevel, reasonCount, daysSinceReview int, hasReviewed bool) int {
	score := 100

	switch level {
	case domain.RiskLevelMedium:
		score -= 30
	case domain.RiskLevelHigh:
		score -= 70
	}

	score -= 10 * reasonCount

	if hasReviewed {
		score += min(daysSinceReview, 90)
	} else {
		// New-account bonus: no history means no footprint to trip over.
		score += 50
	}

	if score < 0 {
		score = 0
	}

	return score
}
