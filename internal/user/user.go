package user

import (
	"time"

	userDatamodel "github.com/araufdev/business-management/internal/core/datamodel/user"
)

// SystemAdminEmail identifies the protected system-admin account. The account
// is provisioned by the seeder and can never be deleted.
const SystemAdminEmail = "admin@digious.com"

type User struct {
	ID                int64     `json:"id"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	Email             string    `json:"email"`
	Phone             *string   `json:"phone"`
	PasswordHash      string    `json:"-"`
	Company           *string   `json:"company"`
	ProfilePictureURL *string   `json:"profile_picture_url"`
	RoleID            *int64    `json:"role_id"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (u *User) IsSystemAdmin() bool {
	return u.Email == SystemAdminEmail
}

// UserWithRole is the administration-view projection: a user joined with the
// name and description of the assigned role.
type UserWithRole struct {
	User
	RoleName        *string `json:"role_name"`
	RoleDescription *string `json:"role_description"`
}

func ToDataModel(u *User) *userDatamodel.User {
	return &userDatamodel.User{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		Phone:             u.Phone,
		PasswordHash:      u.PasswordHash,
		Company:           u.Company,
		ProfilePictureURL: u.ProfilePictureURL,
		RoleID:            u.RoleID,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:                u.ID,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Email:             u.Email,
		Phone:             u.Phone,
		PasswordHash:      u.PasswordHash,
		Company:           u.Company,
		ProfilePictureURL: u.ProfilePictureURL,
		RoleID:            u.RoleID,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}
