package domain

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

// gmailPattern is the address shape accepted for managed accounts.
var gmailPattern = regexp.MustCompile(`^[^\s@]+@gmail\.com$`)

// IsGmailAddress reports whether s looks like a Gmail address.
// The check is applied to the already-lowercased address.
func IsGmailAddress(s string) bool {
	return gmailPattern.MatchString(s)
}

// Account is a managed Gmail identity available for review and traffic activity.
type Account struct {
	ID             uuid.UUID
	Email          string
	OwnerID        uuid.UUID
	Province       string
	City           string
	LastReviewDate *time.Time
	UsedInSAB      bool
	Available      bool
	Blocked        bool
	InCooldown     bool
	CooldownEnd    *time.Time
	Comments       string
	IP             string
	Emulator       string
	DeviceType     DeviceType
	RiskLevel      RiskLevel
	RiskReason     string

	// UsageHistory is ordered oldest-first. Repositories return it fully
	// hydrated so risk evaluation never issues ad hoc queries.
	UsageHistory    []UsageEntry
	TrafficPatterns []TrafficPattern

	CreatedAt time.Time
	UpdatedAt time.Time
}

// UsageEntry records one use of an account on a business.
type UsageEntry struct {
	ID         uuid.UUID
	BusinessID uuid.UUID
	UsedAt     time.Time
	Province   string
	City       string
	Activity   ActivityType
	Notes      string
}

// TrafficPattern describes recurring simulated traffic from an account
// to one business.
type TrafficPattern struct {
	ID         uuid.UUID
	BusinessID uuid.UUID
	Frequency  TrafficFrequency
	Type       TrafficType
	Active     bool
	StartDate  time.Time
	EndDate    *time.Time
	LastSent   *time.Time
	NextSent   *time.Time
}

// DuePattern is a traffic pattern joined with its owning account,
// handed to the traffic dispatcher when the pattern comes due.
type DuePattern struct {
	AccountID uuid.UUID
	Pattern   TrafficPattern
}

// IsUsable reports whether the account may be used at the given time.
// An account is usable iff it is not blocked, is available, and is not
// inside an active cooldown window.
func (a *Account) IsUsable(now time.Time) bool {
	if a.Blocked || !a.Available {
		return false
	}
	if a.InCooldown && a.CooldownEnd != nil && now.Before(*a.CooldownEnd) {
		return false
	}
	return true
}

// DaysSinceLastReview returns whole days since the last review, or
// (0, false) when the account has never reviewed.
func (a *Account) DaysSinceLastReview(now time.Time) (int, bool) {
	if a.LastReviewDate == nil {
		return 0, false
	}
	days := int(now.Sub(*a.LastReviewDate).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return days, true
}

// UsedOnBusiness reports whether the usage history contains the business.
func (a *Account) UsedOnBusiness(businessID uuid.UUID) bool {
	for _, u := range a.UsageHistory {
		if u.BusinessID == businessID {
			return true
		}
	}
	return false
}

// HasActiveTrafficElsewhere reports whether the account runs an active
// traffic pattern tied to some business other than the given one.
func (a *Account) HasActiveTrafficElsewhere(businessID uuid.UUID) bool {
	for _, p := range a.TrafficPatterns {
		if p.Active && p.BusinessID != businessID {
			return true
		}
	}
	return false
}
