package account

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// Create registers a new managed account. Only gmail.com addresses are
// accepted; duplicates fail with domain.ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, input CreateAccountInput) (domain.Account, error) {
	input.Email = domain.NormalizeEmail(input.Email)

	if err := input.Validate(); err != nil {
		return domain.Account{}, err
	}

	deviceType := input.DeviceType
	if deviceType == "" {
		deviceType = domain.DeviceTypeAndroid
	}

	now := time.Now().UTC()
	acc := domain.Account{
		ID:         uuid.New(),
		Email:      input.Email,
		OwnerID:    input.OwnerID,
		Province:   input.Province,
		City:       input.City,
		Available:  true,
		Comments:   input.Comments,
		IP:         input.IP,
		Emulator:   input.Emulator,
		DeviceType: deviceType,
		RiskLevel:  domain.RiskLevelLow,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.accounts.Create(ctx, acc); err != nil {
		return domain.Account{}, fmt.Errorf("create account: %w", err)
	}

	s.log.InfoContext(ctx, "account created",
		slog.String("account_id", acc.ID.String()),
		slog.String("province", acc.Province),
	)

	return acc, nil
}

// Get returns an account by id with history hydrated.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Account, error) {
	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}
	return acc, nil
}

// GetByEmail returns an account by its normalized email.
func (s *Service) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	acc, err := s.accounts.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account by email: %w", err)
	}
	return acc, nil
}

// Update applies the provided fields to an existing account.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateAccountInput) (domain.Account, error) {
	if err := input.Validate(); err != nil {
		return domain.Account{}, err
	}

	acc, err := s.accounts.GetByID(ctx, id)
	if err != nil {
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	if input.Province != nil {
		acc.Province = *input.Province
	}
	if input.City != nil {
		acc.City = *input.City
	}
	if input.Available != nil {
		acc.Available = *input.Available
	}
	if input.Blocked != nil {
		acc.Blocked = *input.Blocked
	}
	if input.UsedInSAB != nil {
		acc.UsedInSAB = *input.UsedInSAB
	}
	if input.Comments != nil {
		acc.Comments = *input.Comments
	}
	if input.IP != nil {
		acc.IP = *input.IP
	}
	if input.Emulator != nil {
		acc.Emulator = *input.Emulator
	}
	if input.DeviceType != nil {
		acc.DeviceType = *input.DeviceType
	}

	if err := s.accounts.Update(ctx, acc); err != nil {
		return domain.Account{}, fmt.Errorf("update account: %w", err)
	}

	return acc, nil
}

// Delete removes an account permanently.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.accounts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete account: %w", err)
	}

	s.log.InfoContext(ctx, "account deleted", slog.String("account_id", id.String()))
	return nil
}

// List returns accounts matching the filter.
func (s *Service) List(ctx context.Context, filter domain.AccountFilter) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

// AddTrafficPattern attaches a recurring traffic pattern to an account.
func (s *Service) AddTrafficPattern(ctx context.Context, input AddTrafficPatternInput) (domain.TrafficPattern, error) {
	if err := input.Validate(); err != nil {
		return domain.TrafficPattern{}, err
	}

	pattern := domain.TrafficPattern{
		ID:         uuid.New(),
		BusinessID: input.BusinessID,
		Frequency:  input.Frequency,
		Type:       input.Type,
		Active:     true,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		NextSent:   &input.StartDate,
	}

	if err := s.accounts.AddTrafficPattern(ctx, input.AccountID, pattern); err != nil {
		return domain.TrafficPattern{}, fmt.Errorf("add traffic pattern: %w", err)
	}

	s.log.InfoContext(ctx, "traffic pattern added",
		slog.String("account_id", input.AccountID.String()),
		slog.String("business_id", input.BusinessID.String()),
		slog.String("frequency", input.Frequency.String()),
	)

	return pattern, nil
}

// ReleaseExpiredCooldowns reactivates accounts whose cooldown has passed.
// Called by the scheduler; exposed for manual triggering too.
func (s *Service) ReleaseExpiredCooldowns(ctx context.Context) (int, error) {
	released, err := s.accounts.ReleaseExpiredCooldowns(ctx, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("release expired cooldowns: %w", err)
	}

	if released > 0 {
		s.log.InfoContext(ctx, "cooldowns released", slog.Int("count", released))
	}

	return released, nil
}
