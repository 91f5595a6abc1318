package domain

import "github.com/google/uuid"

// AccountFilter narrows account listings. Zero values mean "no constraint".
type AccountFilter struct {
	OwnerID    *uuid.UUID
	Province   string
	City       string
	Available  *bool
	Blocked    *bool
	InCooldown *bool
	Search     string // matches email, case-insensitive
	Limit      int
	Offset     int
}

// BusinessFilter narrows business listings. Zero values mean "no constraint".
type BusinessFilter struct {
	Province string
	City     string
	Sector   Sector
	Category BusinessCategory
	Active   *bool
	Search   string // matches name, case-insensitive
	Limit    int
	Offset   int
}
