package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/araufdev/business-management/internal"
	roleDatamodel "github.com/araufdev/business-management/internal/core/datamodel/role"
	userDatamodel "github.com/araufdev/business-management/internal/core/datamodel/user"
	"github.com/araufdev/business-management/internal/core/events"
	"golang.org/x/crypto/bcrypt"
)

type RepositoryAPI interface {
	GetAll() ([]*UserWithRole, error)
	GetByID(id int64) (*userDatamodel.User, error)
	GetByEmail(email string) (*userDatamodel.User, error)
	Create(u *userDatamodel.User) error
	// UpdateFields writes only the named columns.
	UpdateFields(id int64, fields map[string]interface{}) error
	Delete(id int64) error
}

// RoleResolver looks role names up against the Role Store. A nil result means
// the name does not resolve.
type RoleResolver interface {
	GetByName(name string) (*roleDatamodel.Role, error)
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo       RepositoryAPI
	roles      RoleResolver
	bus        Publisher
	bcryptCost int
	logger     *slog.Logger
}

func NewService(repo RepositoryAPI, roles RoleResolver, bus Publisher, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:       repo,
		roles:      roles,
		bus:        bus,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

func (s *Service) resolveRole(name string) (*int64, error) {
	data, err := s.roles.GetByName(name)
	if err != nil {
		s.logger.Error("failed to resolve role name", "role", name, "error", err)
		return nil, internal.NewStoreError("Failed to validate role", err)
	}
	if data == nil {
		msg := fmt.Sprintf("Role %q does not exist. Please select a valid role.", name)
		return nil, internal.NewValidationError(msg, internal.ErrCodeUnknownRoleName)
	}
	return &data.ID, nil
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(dto.Email)
	if err != nil {
		s.logger.Error("failed to check email", "email", dto.Email, "error", err)
		return nil, internal.NewStoreError("Failed to validate email", err)
	}
	if existing != nil {
		return nil, internal.ErrEmailTaken
	}

	var roleID *int64
	if dto.Role != "" {
		roleID, err = s.resolveRole(dto.Role)
		if err != nil {
			return nil, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(dto.Password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, internal.NewStoreError("Failed to create user", err)
	}

	now := time.Now()
	data := &userDatamodel.User{
		FirstName:         dto.FirstName,
		LastName:          dto.LastName,
		Email:             dto.Email,
		Phone:             optional(dto.Phone),
		PasswordHash:      string(hash),
		Company:           optional(dto.Company),
		ProfilePictureURL: dto.ProfilePictureURL,
		RoleID:            roleID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.repo.Create(data); err != nil {
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, internal.NewStoreError("Failed to create user", err)
	}

	if s.bus != nil && roleID != nil {
		if err := s.bus.Publish(ctx, events.NewUserRoleChangedEvent(data.ID, roleID)); err != nil {
			s.logger.Warn("failed to publish user role changed event", "user_id", data.ID, "error", err)
		}
	}

	s.logger.Info("user created", "user_id", data.ID, "email", data.Email)
	return FromDataModel(data), nil
}

func (s *Service) Update(ctx context.Context, id int64, dto UpdateUserDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	data, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load user", "user_id", id, "error", err)
		return internal.NewStoreError("Failed to validate user", err)
	}
	if data == nil {
		return internal.ErrUserNotFound
	}
	if !dto.HasChanges() {
		return internal.NewValidationError("No fields to update", internal.ErrCodeValidationFailed)
	}

	if dto.Email != nil {
		conflict, err := s.repo.GetByEmail(*dto.Email)
		if err != nil {
			s.logger.Error("failed to check email", "email", *dto.Email, "error", err)
			return internal.NewStoreError("Failed to validate email", err)
		}
		if conflict != nil && conflict.ID != id {
			return internal.NewConflictError("Email already in use by another user", internal.ErrCodeEmailTaken)
		}
	}

	fields := map[string]interface{}{}
	if dto.FirstName != nil {
		fields["first_name"] = *dto.FirstName
	}
	if dto.LastName != nil {
		fields["last_name"] = *dto.LastName
	}
	if dto.Email != nil {
		fields["email"] = *dto.Email
	}
	if dto.Phone != nil {
		fields["phone"] = optional(*dto.Phone)
	}
	if dto.Company != nil {
		fields["company"] = optional(*dto.Company)
	}
	if dto.ProfilePictureURL != nil {
		fields["profile_picture_url"] = *dto.ProfilePictureURL
	}

	var roleChanged *int64
	if dto.Role != nil && *dto.Role != "" {
		roleID, err := s.resolveRole(*dto.Role)
		if err != nil {
			return err
		}
		fields["role_id"] = *roleID
		roleChanged = roleID
	}

	if dto.Password != nil && strings.TrimSpace(*dto.Password) != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*dto.Password), s.bcryptCost)
		if err != nil {
			s.logger.Error("failed to hash password", "error", err)
			return internal.NewStoreError("Failed to update user", err)
		}
		fields["password_hash"] = string(hash)
	}

	// HasChanges catches the fully empty patch; this guards patches whose only
	// supplied fields collapse to nothing, like an empty role name.
	if len(fields) == 0 {
		return internal.NewValidationError("No fields to update", internal.ErrCodeValidationFailed)
	}
	fields["updated_at"] = time.Now()

	if err := s.repo.UpdateFields(id, fields); err != nil {
		s.logger.Error("failed to update user", "user_id", id, "error", err)
		return internal.NewStoreError("Failed to update user", err)
	}

	if s.bus != nil && roleChanged != nil {
		if err := s.bus.Publish(ctx, events.NewUserRoleChangedEvent(id, roleChanged)); err != nil {
			s.logger.Warn("failed to publish user role changed event", "user_id", id, "error", err)
		}
	}

	s.logger.Info("user updated", "user_id", id)
	return nil
}

func (s *Service) Delete(id int64) error {
	data, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load user", "user_id", id, "error", err)
		return internal.NewStoreError("Failed to validate user", err)
	}
	if data == nil {
		return internal.ErrUserNotFound
	}
	if data.Email == SystemAdminEmail {
		s.logger.Warn("delete rejected for system admin account", "user_id", id)
		return internal.ErrUserProtected
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete user", "user_id", id, "error", err)
		return internal.NewStoreError("Failed to delete user", err)
	}

	s.logger.Info("user deleted", "user_id", id, "email", data.Email)
	return nil
}

func (s *Service) List() ([]*UserWithRole, error) {
	users, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.NewStoreError("Failed to fetch users", err)
	}
	return users, nil
}

func (s *Service) GetByID(id int64) (*User, error) {
	data, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load user", "user_id", id, "error", err)
		return nil, internal.NewStoreError("Failed to fetch user", err)
	}
	if data == nil {
		return nil, internal.ErrUserNotFound
	}
	return FromDataModel(data), nil
}

// optional maps an empty form value to NULL.
func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
