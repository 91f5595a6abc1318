package domain

import (
	"time"

	"github.com/google/uuid"
)

// Business is a target entity seeking reviews and traffic.
// Identity is the (name, address) pair, unique case-insensitively.
type Business struct {
	ID            uuid.UUID
	Name          string
	Address       string
	PostalCode    string
	City          string
	Province      string
	Category      BusinessCategory
	Sector        Sector
	Phone         string
	Email         string
	Website       string
	GooglePlaceID string
	GoogleMapsURL string

	ReviewTarget   int
	CurrentReviews int
	AverageRating  float64

	// AssignedAccounts is ordered by assignment date, oldest-first.
	AssignedAccounts []Assignment

	Statistics BusinessStatistics
	RiskLevel  RiskLevel
	RiskReason string
	Notes      string
	Active     bool
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Assignment links one account to a business for a single review.
type Assignment struct {
	ID            uuid.UUID
	AccountID     uuid.UUID
	AssignedAt    time.Time
	Status        AssignmentStatus
	CompletedAt   *time.Time
	Rating        *int
	ReviewComment string
}

// BusinessStatistics aggregates activity counters for a business.
type BusinessStatistics struct {
	TotalReviewsReceived int
	TotalTrafficGen      int
	LastActivity         *time.Time
	AvgResponseDays      *float64
}

// PendingAssignment returns the pending assignment for the account, if any.
func (b *Business) PendingAssignment(accountID uuid.UUID) (Assignment, bool) {
	for _, a := range b.AssignedAccounts {
		if a.AccountID == accountID && a.Status == AssignmentStatusPending {
			return a, true
		}
	}
	return Assignment{}, false
}

// CompletedRatingAverage recomputes the mean rating over completed
// assignments. Returns 0 when nothing has completed yet.
func (b *Business) CompletedRatingAverage() float64 {
	var sum, n int
	for _, a := range b.AssignedAccounts {
		if a.Status == AssignmentStatusCompleted && a.Rating != nil {
			sum += *a.Rating
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
