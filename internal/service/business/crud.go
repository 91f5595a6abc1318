package business

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// Create registers a new business. The (name, address) pair is unique
// case-insensitively; a collision fails with domain.ErrAlreadyExists.
func (s *Service) Create(ctx context.Context, createdBy uuid.UUID, input CreateBusinessInput) (domain.Business, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)

	if err := input.Validate(); err != nil {
		return domain.Business{}, err
	}

	exists, err := s.businesses.ExistsByIdentity(ctx, input.Name, input.Address)
	if err != nil {
		return domain.Business{}, fmt.Errorf("check business identity: %w", err)
	}
	if exists {
		return domain.Business{}, fmt.Errorf("business %q at %q: %w", input.Name, input.Address, domain.ErrAlreadyExists)
	}

	now := time.Now().UTC()
	biz := domain.Business{
		ID:            uuid.New(),
		Name:          input.Name,
		Address:       input.Address,
		PostalCode:    input.PostalCode,
		City:          input.City,
		Province:      input.Province,
		Category:      input.Category,
		Sector:        input.Sector,
		Phone:         input.Phone,
		Email:         input.Email,
		Website:       input.Website,
		GooglePlaceID: input.GooglePlaceID,
		GoogleMapsURL: input.GoogleMapsURL,
		ReviewTarget:  input.ReviewTarget,
		Notes:         input.Notes,
		RiskLevel:     domain.RiskLevelLow,
		Active:        true,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.businesses.Create(ctx, biz); err != nil {
		return domain.Business{}, fmt.Errorf("create business: %w", err)
	}

	s.log.InfoContext(ctx, "business created",
		slog.String("business_id", biz.ID.String()),
		slog.String("sector", biz.Sector.String()),
		slog.String("province", biz.Province),
	)

	return biz, nil
}

// Get returns a business by id with assignments hydrated.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (domain.Business, error) {
	biz, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		return domain.Business{}, fmt.Errorf("get business: %w", err)
	}
	return biz, nil
}

// Update applies the provided fields to an existing business.
// Renaming re-checks the (name, address) identity against other rows.
func (s *Service) Update(ctx context.Context, id uuid.UUID, input UpdateBusinessInput) (domain.Business, error) {
	if err := input.Validate(); err != nil {
		return domain.Business{}, err
	}

	biz, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		return domain.Business{}, fmt.Errorf("get business: %w", err)
	}

	oldKey := domain.BusinessKey(biz.Name, biz.Address)

	if input.Name != nil {
		biz.Name = strings.TrimSpace(*input.Name)
	}
	if input.Address != nil {
		biz.Address = strings.TrimSpace(*input.Address)
	}
	if input.PostalCode != nil {
		biz.PostalCode = *input.PostalCode
	}
	if input.City != nil {
		biz.City = *input.City
	}
	if input.Province != nil {
		biz.Province = *input.Province
	}
	if input.Category != nil {
		biz.Category = *input.Category
	}
	if input.Sector != nil {
		biz.Sector = *input.Sector
	}
	if input.Phone != nil {
		biz.Phone = *input.Phone
	}
	if input.Email != nil {
		biz.Email = *input.Email
	}
	if input.Website != nil {
		biz.Website = *input.Website
	}
	if input.GooglePlaceID != nil {
		biz.GooglePlaceID = *input.GooglePlaceID
	}
	if input.GoogleMapsURL != nil {
		biz.GoogleMapsURL = *input.GoogleMapsURL
	}
	if input.ReviewTarget != nil {
		biz.ReviewTarget = *input.ReviewTarget
	}
	if input.Notes != nil {
		biz.Notes = *input.Notes
	}
	if input.Active != nil {
		biz.Active = *input.Active
	}

	if domain.BusinessKey(biz.Name, biz.Address) != oldKey {
		exists, err := s.businesses.ExistsByIdentity(ctx, biz.Name, biz.Address)
		if err != nil {
			return domain.Business{}, fmt.Errorf("check business identity: %w", err)
		}
		if exists {
			return domain.Business{}, fmt.Errorf("business %q at %q: %w", biz.Name, biz.Address, domain.ErrAlreadyExists)
		}
	}

	if err := s.businesses.Update(ctx, biz); err != nil {
		return domain.Business{}, fmt.Errorf("update business: %w", err)
	}

	return biz, nil
}

// Delete removes a business permanently.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.businesses.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete business: %w", err)
	}

	s.log.InfoContext(ctx, "business deleted", slog.String("business_id", id.String()))
	return nil
}

// List returns businesses matching the filter.
func (s *Service) List(ctx context.Context, filter domain.BusinessFilter) ([]domain.Business, error) {
	businesses, err := s.businesses.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list businesses: %w", err)
	}
	return businesses, nil
}
