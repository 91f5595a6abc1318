package config

import "fmt"

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Risk.validate(); err != nil {
		return fmt.Errorf("risk: %w", err)
	}

	return nil
}

func (r *RiskConfig) validate() error {
	if r.MinDaysBetweenReviews < 0 {
		return fmt.Errorf("min_days_between_reviews must be >= 0 (got %d)", r.MinDaysBetweenReviews)
	}
	if r.CooldownDays <= 0 {
		return fmt.Errorf("cooldown_days must be > 0 (got %d)", r.CooldownDays)
	}
	if r.MaxAccountsPerProvince <= 0 {
		return fmt.Errorf("max_accounts_per_province must be > 0 (got %d)", r.MaxAccountsPerProvince)
	}
	if r.SectorLookbackDays <= 0 {
		return fmt.Errorf("sector_lookback_days must be > 0 (got %d)", r.SectorLookbackDays)
	}
	if r.CandidateMultiplier < 1 {
		return fmt.Errorf("candidate_multiplier must be >= 1 (got %d)", r.CandidateMultiplier)
	}
	return nil
}
