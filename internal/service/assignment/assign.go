package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// autoAssignCandidates is how many candidates an automatic assignment
// fetches; extras cover candidates that degrade between search and the
// re-run gate inside AssignAccount.
const autoAssignCandidates = 3

// AssignAccount runs the risk gate and, if it passes, atomically appends a
// pending assignment to the business and marks the account unavailable.
//
// The risk analysis is always re-run here; an earlier FindSafeAccounts
// verdict is never trusted because account state may have changed since.
// A high-risk verdict is returned as a rejection result, not an error.
// A duplicate pending assignment for the pair fails with
// domain.ErrAlreadyExists; this check lives here, not in the callers.
func (s *Service) AssignAccount(ctx context.Context, input AssignAccountInput) (*AssignAccountResult, error) {
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

	if _, exists := business.PendingAssignment(account.ID); exists {
		return nil, fmt.Errorf("account %s already has a pending assignment on business %s: %w",
			account.ID, business.ID, domain.ErrAlreadyExists)
	}

	analysis := s.AnalyzeRisk(ctx, account, business)
	if analysis.Rejected() {
		s.log.InfoContext(ctx, "assignment rejected by risk gate",
			slog.String("account_id", account.ID.String()),
			slog.String("business_id", business.ID.String()),
			slog.Any("reasons", analysis.Reasons),
		)
		return &AssignAccountResult{Assigned: false, Analysis: analysis}, nil
	}

	assignment := domain.Assignment{
		ID:         uuid.New(),
		AccountID:  account.ID,
		AssignedAt: s.now(),
		Status:     domain.AssignmentStatusPending,
	}

	// Both mutations commit together or not at all.
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.businesses.AppendAssignment(txCtx, business.ID, assignment); err != nil {
			return fmt.Errorf("append assignment: %w", err)
		}
		if err := s.accounts.SetAvailable(txCtx, account.ID, false); err != nil {
			return fmt.Errorf("set account unavailable: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "account assigned",
		slog.String("account_id", account.ID.String()),
		slog.String("business_id", business.ID.String()),
		slog.String("assignment_id", assignment.ID.String()),
		slog.Int("score", analysis.Score),
	)

	return &AssignAccountResult{
		Assigned:   true,
		Analysis:   analysis,
		Assignment: assignment,
	}, nil
}

// AssignBest runs a candidate search for the business and assigns the
// highest scoring safe account. When ownerID is set, only that owner's
// accounts are considered. Candidates that fail the re-run gate or that
// raced into a pending assignment are skipped in favor of the next one.
// Fails with domain.ErrNotFound when no safe candidate exists.
func (s *Service) AssignBest(ctx context.Context, businessID uuid.UUID, ownerID *uuid.UUID) (*AssignAccountResult, error) {
	found, err := s.FindSafeAccounts(ctx, FindSafeAccountsInput{
		BusinessID: businessID,
		Count:      autoAssignCandidates,
		OwnerID:    ownerID,
	})
	if err != nil {
		return nil, err
	}

	for _, candidate := range found.Candidates {
		result, err := s.AssignAccount(ctx, AssignAccountInput{
			AccountID:  candidate.Account.ID,
			BusinessID: businessID,
		})
		if errors.Is(err, domain.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if result.Assigned {
			return result, nil
		}
	}

	return nil, fmt.Errorf("no safe account available for business %s: %w",
		businessID, domain.ErrNotFound)
}

// UnassignAccount cancels the pending assignment for the pair and makes
// the account available again. Fails with domain.ErrInvalidState when no
// pending assignment exists.
func (s *Service) UnassignAccount(ctx context.Context, accountID, businessID uuid.UUID) error {
	business, err := s.businesses.GetByID(ctx, businessID)
	if err != nil {
		return fmt.Errorf("get business: %w", err)
	}

	if _, exists := business.PendingAssignment(accountID); !exists {
		return fmt.Errorf("no pending assignment for account %s on business %s: %w",
			accountID, businessID, domain.ErrInvalidState)
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.businesses.CancelAssignment(txCtx, businessID, accountID, s.now()); err != nil {
			return fmt.Errorf("cancel assignment: %w", err)
		}
		if err := s.accounts.SetAvailable(txCtx, accountID, true); err != nil {
			return fmt.Errorf("set account available: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "account unassigned",
		slog.String("account_id", accountID.String()),
		slog.String("business_id", businessID.String()),
	)

	return nil
}
