package user

import (
	"regexp"
	"strings"

	"github.com/araufdev/business-management/internal"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CreateUserDTO is the multipart form payload for creating a user. The
// profile-picture reference is filled by the handler after the upload.
type CreateUserDTO struct {
	FirstName         string
	LastName          string
	Email             string
	Phone             string
	Password          string
	Role              string
	Company           string
	ProfilePictureURL *string
}

func (dto *CreateUserDTO) Validate() error {
	if dto.FirstName == "" || dto.LastName == "" || dto.Email == "" || dto.Password == "" {
		return internal.NewValidationError("First name, last name, email, and password are required", internal.ErrCodeMissingFields)
	}
	if !emailPattern.MatchString(dto.Email) {
		return internal.NewValidationError("Invalid email format", internal.ErrCodeInvalidEmail)
	}
	return nil
}

// UpdateUserDTO is an explicit partial patch: only set (non-nil) fields are
// written, everything else keeps its current value. Password is only changed
// when a non-empty value is supplied.
type UpdateUserDTO struct {
	FirstName         *string
	LastName          *string
	Email             *string
	Phone             *string
	Password          *string
	Role              *string
	Company           *string
	ProfilePictureURL *string
}

func (dto *UpdateUserDTO) Validate() error {
	if dto.Email != nil && !emailPattern.MatchString(*dto.Email) {
		return internal.NewValidationError("Invalid email format", internal.ErrCodeInvalidEmail)
	}
	return nil
}

// HasChanges reports whether the patch names at least one field.
func (dto *UpdateUserDTO) HasChanges() bool {
	if dto.FirstName != nil || dto.LastName != nil || dto.Email != nil ||
		dto.Phone != nil || dto.Role != nil || dto.Company != nil ||
		dto.ProfilePictureURL != nil {
		return true
	}
	return dto.Password != nil && strings.TrimSpace(*dto.Password) != ""
}
