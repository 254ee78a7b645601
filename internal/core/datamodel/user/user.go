package user

import "time"

type User struct {
	ID                int64     `gorm:"primaryKey"`
	FirstName         string    `gorm:"column:first_name;not null"`
	LastName          string    `gorm:"column:last_name;not null"`
	Email             string    `gorm:"column:email;uniqueIndex;not null"`
	Phone             *string   `gorm:"column:phone"`
	PasswordHash      string    `gorm:"column:password_hash;not null"`
	Company           *string   `gorm:"column:company"`
	ProfilePictureURL *string   `gorm:"column:profile_picture_url"`
	RoleID            *int64    `gorm:"column:role_id"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
