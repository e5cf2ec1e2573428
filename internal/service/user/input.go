package user

import (
	"net/mail"
	"strings"

	"github.com/brunovale/catalog-backend/internal/domain"
)

const (
	maxNameLen     = 127
	minPasswordLen = 8
)

// CreateInput holds the fields for self-service registration. The role set
// is not accepted here; every new account gets the operator role.
type CreateInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

// Validate checks all fields and collects all errors.
func (i *CreateInput) Validate() error {
	var errs []domain.FieldError

	errs = append(errs, validateName("first_name", i.FirstName)...)
	errs = append(errs, validateName("last_name", i.LastName)...)
	errs = append(errs, validateEmail(i.Email)...)

	if len(i.Password) < minPasswordLen {
		errs = append(errs, domain.FieldError{Field: "password", Message: "too short (min 8)"})
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

// UpdateInput holds the fields for an admin profile update. RoleIDs is the
// user's FULL role set and replaces whatever was stored before. The password
// is not touched here; it changes only through the recovery flow.
type UpdateInput struct {
	FirstName string
	LastName  string
	Email     string
	RoleIDs   []int64
}

// Validate checks all fields and collects all errors.
func (i *UpdateInput) Validate() error {
	var errs []domain.FieldError

	errs = append(errs, validateName("first_name", i.FirstName)...)
	errs = append(errs, validateName("last_name", i.LastName)...)
	errs = append(errs, validateEmail(i.Email)...)

	if len(i.RoleIDs) == 0 {
		errs = append(errs, domain.FieldError{Field: "role_ids", Message: "at least one role required"})
	}
	for _, id := range i.RoleIDs {
		if id <= 0 {
			errs = append(errs, domain.FieldError{Field: "role_ids", Message: "ids must be positive"})
			break
		}
	}

	if len(errs) > 0 {
		return domain.NewValidationErrors(errs)
	}
	return nil
}

func validateName(field, value string) []domain.FieldError {
	value = strings.TrimSpace(value)
	if value == "" {
		return []domain.FieldError{{Field: field, Message: "required"}}
	}
	if len(value) > maxNameLen {
		return []domain.FieldError{{Field: field, Message: "too long (max 127)"}}
	}
	return nil
}

func validateEmail(value string) []domain.FieldError {
	value = strings.TrimSpace(value)
	if value == "" {
		return []domain.FieldError{{Field: "email", Message: "required"}}
	}
	if addr, err := mail.ParseAddress(value); err != nil || addr.Address != value {
		return []domain.FieldError{{Field: "email", Message: "invalid address"}}
	}
	return nil
}
