package role

import (
	"time"

	roleDatamodel "github.com/araufdev/business-management/internal/core/datamodel/role"
)

// Role is a named permission bundle. Exactly one protected role exists after
// provisioning (the seeded "Admin" role); protection is a first-class flag set
// once at provisioning, never derived from the display name.
type Role struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsProtected bool      `json:"is_protected"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func NewRole(name, description string) *Role {
	now := time.Now()
	return &Role{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func ToDataModel(r *Role) *roleDatamodel.Role {
	return &roleDatamodel.Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsProtected: r.IsProtected,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModel(r *roleDatamodel.Role) *Role {
	return &Role{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		IsProtected: r.IsProtected,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
