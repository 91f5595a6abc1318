package business

import (
	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// CreateBusinessInput holds parameters for registering a business.
type CreateBusinessInput struct {
	Name          string
	Address       string
	PostalCode    string
	City          string
	Province      string
	Category      domain.BusinessCategory
	Sector        domain.Sector
	Phone         string
	Email         string
	Website       string
	GooglePlaceID string
	GoogleMapsURL string
	ReviewTarget  int
	Notes         string
}

// Validate checks the input.
func (in CreateBusinessInput) Validate() error {
	var errs []domain.FieldError

	if in.Name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "is required"})
	} else if len(in.Name) > 255 {
		errs = append(errs, domain.FieldError{Field: "name", Message: "must be at most 255 characters"})
	}
	if in.Address == "" {
		errs = append(errs, domain.FieldError{Field: "address", Message: "is required"})
	}
	if in.City == "" {
		errs = append(errs, domain.FieldError{Field: "city", Message: "is required"})
	}
	if in.Province == "" {
		errs = append(errs, domain.FieldError{Field: "province", Message: "is required"})
	}
	if !in.Category.IsValid() {
		errs = append(errs, domain.FieldError{Field: "category", Message: "is not a valid category"})
	}
	if !in.Sector.IsValid() {
		errs = append(errs, domain.FieldError{Field: "sector", Message: "is not a valid sector"})
	}
	if in.ReviewTarget < 0 {
		errs = append(errs, domain.FieldError{Field: "review_target", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateBusinessInput holds the mutable business fields. Nil means "keep".
type UpdateBusinessInput struct {
	Name          *string
	Address       *string
	PostalCode    *string
	City          *string
	Province      *string
	Category      *domain.BusinessCategory
	Sector        *domain.Sector
	Phone         *string
	Email         *string
	Website       *string
	GooglePlaceID *string
	GoogleMapsURL *string
	ReviewTarget  *int
	Notes         *string
	Active        *bool
}

// Validate checks the input.
func (in UpdateBusinessInput) Validate() error {
	var errs []domain.FieldError

	if in.Name != nil && *in.Name == "" {
		errs = append(errs, domain.FieldError{Field: "name", Message: "must not be empty"})
	}
	if in.Address != nil && *in.Address == "" {
		errs = append(errs, domain.FieldError{Field: "address", Message: "must not be empty"})
	}
	if in.Province != nil && *in.Province == "" {
		errs = append(errs, domain.FieldError{Field: "province", Message: "must not be empty"})
	}
	if in.Category != nil && !in.Category.IsValid() {
		errs = append(errs, domain.FieldError{Field: "category", Message: "is not a valid category"})
	}
	if in.Sector != nil && !in.Sector.IsValid() {
		errs = append(errs, domain.FieldError{Field: "sector", Message: "is not a valid sector"})
	}
	if in.ReviewTarget != nil && *in.ReviewTarget < 0 {
		errs = append(errs, domain.FieldError{Field: "review_target", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
