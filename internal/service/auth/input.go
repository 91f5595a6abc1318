package auth

import (
	"strings"

	"github.com/Freskan23/cuentascontrol/internal/domain"
)

// RegisterInput holds registration parameters.
type RegisterInput struct {
	Email    string
	Username string
	Password string
}

// Validate checks the input. Email must already be normalized.
func (in RegisterInput) Validate() error {
	var errs []domain.FieldError

	if in.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "is required"})
	} else if !strings.Contains(in.Email, "@") {
		errs = append(errs, domain.FieldError{Field: "email", Message: "is not a valid address"})
	}
	if in.Username == "" {
		errs = append(errs, domain.FieldError{Field: "username", Message: "is required"})
	} else if len(in.Username) > 64 {
		errs = append(errs, domain.FieldError{Field: "username", Message: "must not exceed 64 characters"})
	}
	if len(in.Password) < 8 {
		errs = append(errs, domain.FieldError{Field: "password", Message: "must be at least 8 characters"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// LoginInput holds login parameters.
type LoginInput struct {
	Email    string
	Password string
}

// Validate checks the input.
func (in LoginInput) Validate() error {
	var errs []domain.FieldError

	if in.Email == "" {
		errs = append(errs, domain.FieldError{Field: "email", Message: "is required"})
	}
	if in.Password == "" {
		errs = append(errs, domain.FieldError{Field: "password", Message: "is required"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}
