package role

import "time"

type Role struct {
	ID          int64     `gorm:"primaryKey"`
	Name        string    `gorm:"column:name;uniqueIndex;not null"`
	Description string    `gorm:"column:description"`
	IsProtected bool      `gorm:"column:is_protected;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Role) TableName() string {
	return "roles"
}

// RoleModule is a single grant: the owning role may access the named module.
// (role_id, module) is unique.
type RoleModule struct {
	ID        int64     `gorm:"primaryKey"`
	RoleID    int64     `gorm:"column:role_id;not null;uniqueIndex:idx_role_module"`
	Module    string    `gorm:"column:module;not null;uniqueIndex:idx_role_module"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (RoleModule) TableName() string {
	return "role_modules"
}
