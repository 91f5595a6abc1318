package domain

// Risk recommendation strings returned with every assessment.
const (
	RecommendationSafe     = "safe to use"
	RecommendationCaution  = "use with caution"
	RecommendationHighRisk = "not recommended - high risk"
	RecommendationFailed   = "do not use - analysis failed"
)

// RiskAssessment is the outcome of analyzing one (account, business) pair.
// Score is used only for ranking candidates, never for the accept/reject
// gate — that is decided by Level alone.
type RiskAssessment struct {
	Level          RiskLevel
	Reasons        []string
	Recommendation string
	Score          int
}

// Rejected reports whether the assessment blocks an assignment.
func (r RiskAssessment) Rejected() bool { return r.Level == RiskLevelHigh }

// RecommendationFor maps a final risk level to its recommendation string.
func RecommendationFor(level RiskLevel) string {
	switch level {
	case RiskLevelLow:
		return RecommendationSafe
	case RiskLevelMedium:
		return RecommendationCaution
	default:
		return RecommendationHighRisk
	}
}
