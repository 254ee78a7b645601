package postgres

import (
	userDatamodel "github.com/araufdev/business-management/internal/core/datamodel/user"
	"github.com/araufdev/business-management/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll() ([]*user.UserWithRole, error) {
	rows, err := r.db.Model(&userDatamodel.User{}).
		Select("users.*, roles.name AS role_name, roles.description AS role_description").
		Joins("LEFT JOIN roles ON users.role_id = roles.id").
		Order("users.created_at DESC").
		Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*user.UserWithRole
	for rows.Next() {
		var row struct {
			userDatamodel.User
			RoleName        *string
			RoleDescription *string
		}
		if err := r.db.ScanRows(rows, &row); err != nil {
			return nil, err
		}
		entry := &user.UserWithRole{
			User:            *user.FromDataModel(&row.User),
			RoleName:        row.RoleName,
			RoleDescription: row.RoleDescription,
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *UserRepository) GetByID(id int64) (*userDatamodel.User, error) {
	var data userDatamodel.User
	err := r.db.Where("id = ?", id).First(&data).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &data, nil
}

func (r *UserRepository) GetByEmail(email string) (*userDatamodel.User, error) {
	var data userDatamodel.User
	err := r.db.Where("email = ?", email).First(&data).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &data, nil
}

func (r *UserRepository) Create(data *userDatamodel.User) error {
	return r.db.Create(data).Error
}

func (r *UserRepository) UpdateFields(id int64, fields map[string]interface{}) error {
	return r.db.Model(&userDatamodel.User{}).Where("id = ?", id).Updates(fields).Error
}

func (r *UserRepository) Delete(id int64) error {
	return r.db.Where("id = ?", id).Delete(&userDatamodel.User{}).Error
}
