package postgres

import (
	roleDatamodel "github.com/araufdev/business-management/internal/core/datamodel/role"
	userDatamodel "github.com/araufdev/business-management/internal/core/datamodel/user"
	"github.com/araufdev/business-management/internal/role"
	"gorm.io/gorm"
)

type RoleRepository struct {
	db *gorm.DB
}

func NewRoleRepository(db *gorm.DB) role.RepositoryAPI {
	return &RoleRepository{db: db}
}

func (r *RoleRepository) GetAll() ([]*roleDatamodel.Role, error) {
	var roles []*roleDatamodel.Role
	err := r.db.Order("name ASC").Find(&roles).Error
	return roles, err
}

func (r *RoleRepository) GetByID(id int64) (*roleDatamodel.Role, error) {
	var data roleDatamodel.Role
	err := r.db.Where("id = ?", id).First(&data).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &data, nil
}

func (r *RoleRepository) GetByName(name string) (*roleDatamodel.Role, error) {
	var data roleDatamodel.Role
	err := r.db.Where("name = ?", name).First(&data).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &data, nil
}

func (r *RoleRepository) Create(data *roleDatamodel.Role) error {
	return r.db.Create(data).Error
}

func (r *RoleRepository) Update(data *roleDatamodel.Role) error {
	return r.db.Save(data).Error
}

// DeleteWithGuard counts referencing users and deletes the role plus its
// grants only when the count is zero. Both steps run inside one transaction so
// a user assigned between check and delete cannot orphan a role reference.
func (r *RoleRepository) DeleteWithGuard(id int64) (int64, error) {
	var userCount int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&userDatamodel.User{}).Where("role_id = ?", id).Count(&userCount).Error; err != nil {
			return err
		}
		if userCount > 0 {
			return nil
		}
		if err := tx.Where("role_id = ?", id).Delete(&roleDatamodel.RoleModule{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&roleDatamodel.Role{}).Error
	})
	return userCount, err
}

func (r *RoleRepository) GetModules(roleID int64) ([]string, error) {
	var modules []string
	err := r.db.Model(&roleDatamodel.RoleModule{}).
		Where("role_id = ?", roleID).
		Order("module ASC").
		Pluck("module", &modules).Error
	return modules, err
}

// ReplaceModules runs the delete-then-insert inside one transaction so a
// concurrent GetModules never observes a partial grant set.
func (r *RoleRepository) ReplaceModules(roleID int64, modules []string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", roleID).Delete(&roleDatamodel.RoleModule{}).Error; err != nil {
			return err
		}
		if len(modules) == 0 {
			return nil
		}
		grants := make([]roleDatamodel.RoleModule, 0, len(modules))
		for _, m := range modules {
			grants = append(grants, roleDatamodel.RoleModule{RoleID: roleID, Module: m})
		}
		return tx.Create(&grants).Error
	})
}
