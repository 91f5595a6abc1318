package account

import (
	"time"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// CreateAccountInput holds parameters for creating an account.
type CreateAccountInput struct {
	Email      string
	OwnerID    uuid.UUID
	Province   string
	City       string
	Comments   string
	IP         string
	Emulator   string
	DeviceType domain.DeviceType
}

// Validate checks the input. Email must already be normalized.
func (in CreateAccountInput) Validate() error {
	var errs []domain.FieldError

	if in.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "is required"})
	} else if !domain.IsGmailAddress(in.Email) {
		errs = append(errs, domain.FieldError{Field: "email", Message: "must be a gmail.com address"})
	}
	if in.OwnerID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "owner_id", Message: "is required"})
	}
	if in.Province == "" {
		errs = append(errs, domain.FieldError{Field: "province", Message: "is required"})
	}
	if in.City == "" {
		errs = append(errs, domain.FieldError{Field: "city", Message: "is required"})
	}
	if in.DeviceType != "" && !in.DeviceType.IsValid() {
		errs = append(errs, domain.FieldError{Field: "device_type", Message: "is not a valid device type"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateAccountInput holds the mutable account fields. Nil means "keep".
type UpdateAccountInput struct {
	Province   *string
	City       *string
	Available  *bool
	Blocked    *bool
	UsedInSAB  *bool
	Comments   *string
	IP         *string
	Emulator   *string
	DeviceType *domain.DeviceType
}

// Validate checks the input.
func (in UpdateAccountInput) Validate() error {
	var errs []domain.FieldError

	if in.Province != nil && *in.Province == "" {
		errs = append(errs, domain.FieldError{Field: "province", Message: "must not be empty"})
	}
	if in.City != nil && *in.City == "" {
		errs = append(errs, domain.FieldError{Field: "city", Message: "must not be empty"})
	}
	if in.DeviceType != nil && !in.DeviceType.IsValid() {
		errs = append(errs, domain.FieldError{Field: "device_type", Message: "is not a valid device type"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// AddTrafficPatternInput holds parameters for attaching a traffic pattern.
type AddTrafficPatternInput struct {
	AccountID  uuid.UUID
	BusinessID uuid.UUID
	Frequency  domain.TrafficFrequency
	Type       domain.TrafficType
	StartDate  time.Time
	EndDate    *time.Time
}

// Validate checks the input.
func (in AddTrafficPatternInput) Validate() error {
	var errs []domain.FieldError

	if in.AccountID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "account_id", Message: "is required"})
	}
	if in.BusinessID == uuid.Nil {
		errs = append(errs, domain.FieldError{Field: "business_id", Message: "is required"})
	}
	if !in.Frequency.IsValid() {
		errs = append(errs, domain.FieldError{Field: "frequency", Message: "is not a valid frequency"})
	}
	if !in.Type.IsValid() {
		errs = append(errs, domain.FieldError{Field: "type", Message: "is not a valid traffic type"})
	}
	if in.StartDate.IsZero() {
		errs = append(errs, domain.FieldError{Field: "start_date", Message: "is required"})
	}
	if in.EndDate != nil && !in.EndDate.After(in.StartDate) {
		errs = append(errs, domain.FieldError{Field: "end_date", Message: "must be after start_date"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
