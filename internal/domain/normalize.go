package domain

import "strings"

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BusinessKey builds the case-insensitive identity key for a business.
// Two businesses collide when their (name, address) pairs match after
// trimming and lowercasing.
func BusinessKey(name, address string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(address))
}
