package assignment

import (
	"time"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// Candidate pairs an account with its risk analysis.
type Candidate struct {
	Account  domain.Account
	Analysis domain.RiskAssessment
}

// BusinessSummary is the compact business view returned with a search.
type BusinessSummary struct {
	ID       uuid.UUID
	Name     string
	Province string
	City     string
	Sector   domain.Sector
	Category domain.BusinessCategory
}

// FindSafeAccountsResult is the outcome of a candidate search.
type FindSafeAccountsResult struct {
	Business   BusinessSummary
	Candidates []Candidate
}

// AssignAccountResult is the outcome of a guarded assignment. When the
// risk gate rejects, Assigned is false and Analysis carries the reasons;
// no error is returned because rejection is a normal decision.
type AssignAccountResult struct {
	Assigned   bool
	Analysis   domain.RiskAssessment
	Assignment domain.Assignment
}

// CompleteReviewResult reports the applied completion transition.
type CompleteReviewResult struct {
	AccountID   uuid.UUID
	BusinessID  uuid.UUID
	CompletedAt time.Time
	CooldownEnd time.Time
}
