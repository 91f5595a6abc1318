package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestIsGmailAddress(t *testing.T) {
	t.Parallel()

	cases := []struct {
		email string
		want  bool
	}{
		{"alice@gmail.com", true},
		{"a.b+c@gmail.com", true},
		{"alice@outlook.com", false},
		{"has space@gmail.com", false},
		{"@gmail.com", false},
		{"alice@gmail.com.evil.com", false},
		{"", false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, IsGmailAddress(tc.email), "email=%q", tc.email)
	}
}

func TestAccount_IsUsable(t *testing.T) {
	t.Parallel()

	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	cases := []struct {
		name    string
		account Account
		want    bool
	}{
		{
			name:    "available and clean",
			account: Account{Available: true},
			want:    true,
		},
		{
			name:    "blocked",
			account: Account{Available: true, Blocked: true},
			want:    false,
		},
		{
			name:    "not available",
			account: Account{Available: false},
			want:    false,
		},
		{
			name:    "active cooldown",
			account: Account{Available: true, InCooldown: true, CooldownEnd: &future},
			want:    false,
		},
		{
			name:    "expired cooldown",
			account: Account{Available: true, InCooldown: true, CooldownEnd: &past},
			want:    true,
		},
		{
			name:    "cooldown flag without end date",
			account: Account{Available: true, InCooldown: true},
			want:    true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.account.IsUsable(now))
		})
	}
}

func TestAccount_DaysSinceLastReview(t *testing.T) {
	t.Parallel()

	now := time.Now()

	t.Run("never reviewed", func(t *testing.T) {
		t.Parallel()
		a := Account{}
		_, ok := a.DaysSinceLastReview(now)
		assert.False(t, ok)
	})

	t.Run("three days ago", func(t *testing.T) {
		t.Parallel()
		last := now.Add(-3*24*time.Hour - time.Hour)
		a := Account{LastReviewDate: &last}
		days, ok := a.DaysSinceLastReview(now)
		assert.True(t, ok)
		assert.Equal(t, 3, days)
	})

	t.Run("future date clamps to zero", func(t *testing.T) {
		t.Parallel()
		last := now.Add(time.Hour)
		a := Account{LastReviewDate: &last}
		days, ok := a.DaysSinceLastReview(now)
		assert.True(t, ok)
		assert.Equal(t, 0, days)
	})
}

func TestAccount_UsedOnBusiness(t *testing.T) {
	t.Parallel()

	bizID := uuid.New()
	a := Account{UsageHistory: []UsageEntry{
		{BusinessID: uuid.New(), Activity: ActivityTypeReview},
		{BusinessID: bizID, Activity: ActivityTypeReview},
	}}

	assert.True(t, a.UsedOnBusiness(bizID))
	assert.False(t, a.UsedOnBusiness(uuid.New()))
}

func TestAccount_HasActiveTrafficElsewhere(t *testing.T) {
	t.Parallel()

	target := uuid.New()
	other := uuid.New()

	cases := []struct {
		name     string
		patterns []TrafficPattern
		want     bool
	}{
		{"no patterns", nil, false},
		{"active on target only", []TrafficPattern{{BusinessID: target, Active: true}}, false},
		{"active elsewhere", []TrafficPattern{{BusinessID: other, Active: true}}, true},
		{"inactive elsewhere", []TrafficPattern{{BusinessID: other, Active: false}}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := Account{TrafficPatterns: tc.patterns}
			assert.Equal(t, tc.want, a.HasActiveTrafficElsewhere(target))
		})
	}
}
