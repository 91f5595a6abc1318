package domain

import "time"

// RiskLevel classifies how risky it is to use an account for a business.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

func (l RiskLevel) String() string { return string(l) }

func (l RiskLevel) IsValid() bool {
	switch l {
	case RiskLevelLow, RiskLevelMedium, RiskLevelHigh:
		return true
	}
	return false
}

// severity maps risk levels onto an ordered scale for monotonic escalation.
func (l RiskLevel) severity() int {
	switch l {
	case RiskLevelMedium:
		return 1
	case RiskLevelHigh:
		return 2
	default:
		return 0
	}
}

// Escalate returns the more severe of the two levels.
// A rule may raise the level but never lower it.
func (l RiskLevel) Escalate(to RiskLevel) RiskLevel {
	if to.severity() > l.severity() {
		return to
	}
	return l
}

// AssignmentStatus is the lifecycle state of an account-to-business assignment.
type AssignmentStatus string

const (
	AssignmentStatusPending   AssignmentStatus = "PENDING"
	AssignmentStatusCompleted AssignmentStatus = "COMPLETED"
	AssignmentStatusCancelled AssignmentStatus = "CANCELLED"
)

func (s AssignmentStatus) String() string { return string(s) }

func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusPending, AssignmentStatusCompleted, AssignmentStatusCancelled:
		return true
	}
	return false
}

// ActivityType is the kind of activity recorded in an account's usage history.
type ActivityType string

const (
	ActivityTypeReview  ActivityType = "REVIEW"
	ActivityTypeTraffic ActivityType = "TRAFFIC"
)

func (t ActivityType) String() string { return string(t) }

func (t ActivityType) IsValid() bool {
	switch t {
	case ActivityTypeReview, ActivityTypeTraffic:
		return true
	}
	return false
}

// BusinessCategory distinguishes service-area businesses from physical storefronts.
type BusinessCategory string

const (
	BusinessCategorySAB      BusinessCategory = "SAB"
	BusinessCategoryPhysical BusinessCategory = "PHYSICAL"
)

func (c BusinessCategory) String() string { return string(c) }

func (c BusinessCategory) IsValid() bool {
	switch c {
	case BusinessCategorySAB, BusinessCategoryPhysical:
		return true
	}
	return false
}

// Sector is the business's line of trade.
type Sector string

const (
	SectorLocksmith    Sector = "LOCKSMITH"
	SectorDentistry    Sector = "DENTISTRY"
	SectorMedicine     Sector = "MEDICINE"
	SectorVeterinary   Sector = "VETERINARY"
	SectorRestaurant   Sector = "RESTAURANT"
	SectorBeauty       Sector = "BEAUTY"
	SectorFitness      Sector = "FITNESS"
	SectorEducation    Sector = "EDUCATION"
	SectorLegal        Sector = "LEGAL"
	SectorRealEstate   Sector = "REAL_ESTATE"
	SectorAutomotive   Sector = "AUTOMOTIVE"
	SectorTechnology   Sector = "TECHNOLOGY"
	SectorConstruction Sector = "CONSTRUCTION"
	SectorCleaning     Sector = "CLEANING"
	SectorSecurity     Sector = "SECURITY"
	SectorOther        Sector = "OTHER"
)

func (s Sector) String() string { return string(s) }

func (s Sector) IsValid() bool {
	switch s {
	case SectorLocksmith, SectorDentistry, SectorMedicine, SectorVeterinary,
		SectorRestaurant, SectorBeauty, SectorFitness, SectorEducation,
		SectorLegal, SectorRealEstate, SectorAutomotive, SectorTechnology,
		SectorConstruction, SectorCleaning, SectorSecurity, SectorOther:
		return true
	}
	return false
}

// DeviceType is the device class an account is operated from.
type DeviceType string

const (
	DeviceTypeAndroid DeviceType = "ANDROID"
	DeviceTypeIOS     DeviceType = "IOS"
	DeviceTypeDesktop DeviceType = "DESKTOP"
	DeviceTypeOther   DeviceType = "OTHER"
)

func (t DeviceType) String() string { return string(t) }

func (t DeviceType) IsValid() bool {
	switch t {
	case DeviceTypeAndroid, DeviceTypeIOS, DeviceTypeDesktop, DeviceTypeOther:
		return true
	}
	return false
}

// TrafficFrequency is how often a traffic pattern fires.
type TrafficFrequency string

const (
	TrafficFrequencyDaily       TrafficFrequency = "DAILY"
	TrafficFrequencyWeekly      TrafficFrequency = "WEEKLY"
	TrafficFrequencyThriceWeek  TrafficFrequency = "THRICE_WEEKLY"
	TrafficFrequencyFortnightly TrafficFrequency = "FORTNIGHTLY"
)

func (f TrafficFrequency) String() string { return string(f) }

func (f TrafficFrequency) IsValid() bool {
	switch f {
	case TrafficFrequencyDaily, TrafficFrequencyWeekly, TrafficFrequencyThriceWeek, TrafficFrequencyFortnightly:
		return true
	}
	return false
}

// Interval returns the gap between consecutive sends for the frequency.
// THRICE_WEEKLY spreads three sends evenly over a week.
func (f TrafficFrequency) Interval() time.Duration {
	switch f {
	case TrafficFrequencyDaily:
		return 24 * time.Hour
	case TrafficFrequencyThriceWeek:
		return 56 * time.Hour
	case TrafficFrequencyFortnightly:
		return 14 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// TrafficType is the kind of simulated traffic a pattern generates.
type TrafficType string

const (
	TrafficTypeNavigation     TrafficType = "NAVIGATION"
	TrafficTypeNavigationCall TrafficType = "NAVIGATION_CALL"
	TrafficTypeNavigationWeb  TrafficType = "NAVIGATION_WEB"
)

func (t TrafficType) String() string { return string(t) }

func (t TrafficType) IsValid() bool {
	switch t {
	case TrafficTypeNavigation, TrafficTypeNavigationCall, TrafficTypeNavigationWeb:
		return true
	}
	return false
}

// Role is the access level of an application user.
type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleManager Role = "MANAGER"
)

func (r Role) String() string { return string(r) }

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager:
		return true
	}
	return false
}
