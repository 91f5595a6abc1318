package assignment

import (
	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// FindSafeAccountsInput parameterizes a candidate search.
type FindSafeAccountsInput struct {
	BusinessID uuid.UUID
	Count      int
	// OwnerID, when set, restricts candidates to accounts of that owner.
	OwnerID *uuid.UUID
}

// Validate checks the input.
func (in FindSafeAccountsInput) Validate() error {
	var errs []domain.FieldError

	if in.BusinessID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "business_id", Message: "is required"})
	}
	if in.Count <= 0 {
		errs = append(errs, domain.FieldError{Field: "count", Message: "must be positive"})
	}
	if in.Count > 100 {
		errs = append(errs, domain.FieldError{Field: "count", Message: "must not exceed 100"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// AssignAccountInput parameterizes a guarded assignment.
type AssignAccountInput struct {
	AccountID  uuid.UUID
	BusinessID uuid.UUID
}

// Validate checks the input.
func (in AssignAccountInput) Validate() error {
	var errs []domain.FieldError

	if in.AccountID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "account_id", Message: "is required"})
	}
	if in.BusinessID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "business_id", Message: "is required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// CompleteReviewInput parameterizes the completion/cooldown transition.
type CompleteReviewInput struct {
	AccountID  uuid.UUID
	BusinessID uuid.UUID
	Rating     int
	Comment    string
}

// Validate checks the input.
func (in CompleteReviewInput) Validate() error {
	var errs []domain.FieldError

	if in.AccountID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "account_id", Message: "is required"})
	}
	if in.BusinessID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "business_id", Message: "is required"})
	}
	if in.Rating < 1 || in.Rating > 5 {
		errs = append(errs, domain.FieldError{Field: "rating", Message: "must be between 1 and 5"})
	}
	if len(in.Comment) > 4000 {
		errs = append(errs, domain.FieldError{Field: "comment", Message: "must not exceed 4000 characters"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
