package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// AnalyzeRisk evaluates the risk of using the account on the business.
// It never returns an error: any failure while gathering facts, and any
// panic during evaluation, degrades to a high-risk verdict (fail-closed).
func (s *Service) AnalyzeRisk(ctx context.Context, account domain.Account, business domain.Business) (assessment domain.RiskAssessment) {
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "risk analysis panicked",
				slog.String("account_id", account.ID.String()),
				slog.String("business_id", business.ID.String()),
				slog.Any("panic", r),
			)
			assessment = failedAssessment()
		}
	}()

	now := s.now()

	facts, err := s.gatherFacts(ctx, account, business, now)
	if err != nil {
		s.log.ErrorContext(ctx, "risk analysis failed",
			slog.String("account_id", account.ID.String()),
			slog.String("business_id", business.ID.String()),
			slog.String("error", err.Error()),
		)
		return failedAssessment()
	}

	return evaluateRisk(s.cfg, account, business, facts, now)
}

// AnalyzeRiskByID loads both entities and analyzes them.
// Missing entities surface as domain.ErrNotFound; analysis itself
// stays fail-closed.
func (s *Service) AnalyzeRiskByID(ctx context.Context, accountID, businessID uuid.UUID) (domain.RiskAssessment, error) {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("get account: %w", err)
	}

	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("get business: %w", err)
	}

	return s.AnalyzeRisk(ctx, account, business), nil
}

// analyzeWithFacts evaluates a candidate against pre-gathered saturation
// facts, only issuing the per-candidate sector lookup. Used by candidate
// search so the saturation count is queried once per batch.
func (s *Service) analyzeWithFacts(ctx context.Context, account domain.Account, business domain.Business, activeInProvince int, now time.Time) (assessment domain.RiskAssessment) {
	defer func() {
		if r := recover(); r != nil {
			s.log.ErrorContext(ctx, "risk analysis panicked",
				slog.String("account_id", account.ID.String()),
				slog.String("business_id", business.ID.String()),
				slog.Any("panic", r),
			)
			assessment = failedAssessment()
		}
	}()

	usedInSector, err := s.usedInSectorRecently(ctx, account, business, now)
	if err != nil {
		s.log.ErrorContext(ctx, "risk analysis failed",
			slog.String("account_id", account.ID.String()),
			slog.String("business_id", business.ID.String()),
			slog.String("error", err.Error()),
		)
		return failedAssessment()
	}

	facts := riskFacts{
		usedInSectorRecently: usedInSector,
		activeInProvince:     activeInProvince,
	}

	return evaluateRisk(s.cfg, account, business, facts, now)
}

// gatherFacts issues the store reads the rule set needs.
func (s *Service) gatherFacts(ctx context.Context, account domain.Account, business domain.Business, now time.Time) (riskFacts, error) {
	usedInSector, err := s.usedInSectorRecently(ctx, account, business, now)
	if err != nil {
		return riskFacts{}, err
	}

	activeInProvince, err := s.accounts.CountActiveInProvince(ctx, business.Province)
	if err != nil {
		return riskFacts{}, fmt.Errorf("count active accounts: %w", err)
	}

	return riskFacts{
		usedInSectorRecently: usedInSector,
		activeInProvince:     activeInProvince,
	}, nil
}

func (s *Service) usedInSectorRecently(ctx context.Context, account domain.Account, business domain.Business, now time.Time) (bool, error) {
	since := now.AddDate(0, 0, -s.cfg.SectorLookbackDays)

	used, err := s.accounts.UsedInSectorSince(ctx, account.ID, business.Sector, business.Province, business.ID, since)
	if err != nil {
		return false, fmt.Errorf("check sector usage: %w", err)
	}

	return used, nil
}

// failedAssessment is the fail-closed verdict: never let an internal
// error approve an assignment.
func failedAssessment() domain.RiskAssessment {
	return domain.RiskAssessment{
		Level:          domain.RiskLevelHigh,
		Reasons:        []string{"risk analysis failed"},
		Recommendation: domain.RecommendationFailed,
		Score:          0,
	}
}
