package assignment

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// FindSafeAccounts searches usable accounts for a business and returns up
// to Count candidates that passed the risk gate, best score first.
//
// It retrieves CandidateMultiplier times Count accounts biased toward the
// least recently used, analyzes them in parallel, drops every high-risk
// candidate, and stable-sorts the rest by descending score so ties keep
// their retrieval order.
func (s *Service) FindSafeAccounts(ctx context.Context, input FindSafeAccountsInput) (*FindSafeAccountsResult, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	business, err := s.businesses.GetByID(ctx, input.BusinessID)
	if err != nil {
		return nil, fmt.Errorf("get business: %w", err)
	}

	now := s.now()

	candidates, err := s.accounts.ListCandidates(ctx, now, input.OwnerID, s.cfg.CandidateMultiplier*input.Count)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	// One saturation count per search, shared across the whole batch.
	activeInProvince, err := s.accounts.CountActiveInProvince(ctx, business.Province)
	if err != nil {
		return nil, fmt.Errorf("count active accounts: %w", err)
	}

	// Analyses are independent; run them in parallel and write each
	// result to its candidate's slot so retrieval order is preserved.
	analyses := make([]domain.RiskAssessment, len(candidates))
	var wg sync.WaitGroup
	for i, account := range candidates {
		wg.Add(1)
		go func(i int, account domain.Account) {
			defer wg.Done()
			analyses[i] = s.analyzeWithFacts(ctx, account, business, activeInProvince, now)
		}(i, account)
	}
	wg.Wait()

	safe := make([]Candidate, 0, len(candidates))
	for i, account := range candidates {
		if analyses[i].Rejected() {
			continue
		}
		safe = append(safe, Candidate{Account: account, Analysis: analyses[i]})
	}

	sort.SliceStable(safe, func(i, j int) bool {
		return safe[i].Analysis.Score > safe[j].Analysis.Score
	})

	if len(safe) > input.Count {
		safe = safe[:input.Count]
	}

	s.log.InfoContext(ctx, "safe accounts found",
		slog.String("business_id", business.ID.String()),
		slog.Int("requested", input.Count),
		slog.Int("analyzed", len(candidates)),
		slog.Int("returned", len(safe)),
	)

	return &FindSafeAccountsResult{
		Business: BusinessSummary{
			ID:       business.ID,
			Name:     business.Name,
			Province: business.Province,
			City:     business.City,
			Sector:   business.Sector,
			Category: business.Category,
		},
		Candidates: safe,
	}, nil
}
