package role

import (
	"strings"

	"github.com/araufdev/business-management/internal"
)

// CreateRoleDTO is the request payload for creating a role.
type CreateRoleDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (dto *CreateRoleDTO) Validate() error {
	dto.Name = strings.TrimSpace(dto.Name)
	if dto.Name == "" {
		return internal.NewValidationError("Role name is required", internal.ErrCodeMissingFields)
	}
	return nil
}

// UpdateRoleDTO is the request payload for updating a role's name/description.
type UpdateRoleDTO struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (dto *UpdateRoleDTO) Validate() error {
	dto.Name = strings.TrimSpace(dto.Name)
	if dto.Name == "" {
		return internal.NewValidationError("Role name is required", internal.ErrCodeMissingFields)
	}
	return nil
}

// ReplaceModulesDTO carries the full replacement grant set for a role. A nil
// Modules means the field was absent from the request body, which is rejected;
// an empty list is valid and means "no module access".
type ReplaceModulesDTO struct {
	Modules []string `json:"modules"`
}

func (dto *ReplaceModulesDTO) Validate() error {
	if dto.Modules == nil {
		return internal.NewValidationError("Modules must be an array", internal.ErrCodeValidationFailed)
	}
	return nil
}
