package role

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/araufdev/business-management/internal"
	roleDatamodel "github.com/araufdev/business-management/internal/core/datamodel/role"
	"github.com/araufdev/business-management/internal/core/events"
	"github.com/araufdev/business-management/internal/module"
)

type RepositoryAPI interface {
	GetAll() ([]*roleDatamodel.Role, error)
	GetByID(id int64) (*roleDatamodel.Role, error)
	GetByName(name string) (*roleDatamodel.Role, error)
	Create(role *roleDatamodel.Role) error
	Update(role *roleDatamodel.Role) error
	// DeleteWithGuard deletes the role and its grants unless users still
	// reference it. It returns the number of referencing users; a non-zero
	// count means nothing was deleted. Count and delete run in one
	// transaction.
	DeleteWithGuard(id int64) (int64, error)
	GetModules(roleID int64) ([]string, error)
	// ReplaceModules atomically discards the role's grant set and writes the
	// given one.
	ReplaceModules(roleID int64, modules []string) error
}

type Publisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo   RepositoryAPI
	bus    Publisher
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, bus Publisher, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		bus:    bus,
		logger: logger,
	}
}

func (s *Service) Create(dto CreateRoleDTO) (*Role, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByName(dto.Name)
	if err != nil {
		s.logger.Error("failed to check role name", "name", dto.Name, "error", err)
		return nil, internal.NewStoreError("Failed to validate role", err)
	}
	if existing != nil {
		return nil, internal.ErrRoleNameTaken
	}

	r := NewRole(dto.Name, dto.Description)
	data := ToDataModel(r)
	if err := s.repo.Create(data); err != nil {
		s.logger.Error("failed to create role", "name", dto.Name, "error", err)
		return nil, internal.NewStoreError("Failed to create role", err)
	}

	s.logger.Info("role created", "role_id", data.ID, "name", data.Name)
	return FromDataModel(data), nil
}

func (s *Service) Update(id int64, dto UpdateRoleDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	data, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load role", "role_id", id, "error", err)
		return internal.NewStoreError("Failed to validate role", err)
	}
	if data == nil {
		return internal.ErrRoleNotFound
	}
	if data.IsProtected {
		s.logger.Warn("update rejected for protected role", "role_id", id)
		return internal.ErrRoleProtected
	}

	conflict, err := s.repo.GetByName(dto.Name)
	if err != nil {
		s.logger.Error("failed to check role name", "name", dto.Name, "error", err)
		return internal.NewStoreError("Failed to validate role name", err)
	}
	if conflict != nil && conflict.ID != id {
		return internal.ErrRoleNameTaken
	}

	data.Name = dto.Name
	data.Description = dto.Description
	if err := s.repo.Update(data); err != nil {
		s.logger.Error("failed to update role", "role_id", id, "error", err)
		return internal.NewStoreError("Failed to update role", err)
	}

	s.logger.Info("role updated", "role_id", id, "name", dto.Name)
	return nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	data, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load role", "role_id", id, "error", err)
		return internal.NewStoreError("Failed to validate role", err)
	}
	if data == nil {
		return internal.ErrRoleNotFound
	}
	if data.IsProtected {
		s.logger.Warn("delete rejected for protected role", "role_id", id)
		return internal.ErrRoleProtectedDelete
	}

	userCount, err := s.repo.DeleteWithGuard(id)
	if err != nil {
		s.logger.Error("failed to delete role", "role_id", id, "error", err)
		return internal.NewStoreError("Failed to delete role", err)
	}
	if userCount > 0 {
		msg := fmt.Sprintf("Cannot delete role. %d user(s) are assigned to this role.", userCount)
		return internal.NewConflictError(msg, internal.ErrCodeRoleInUse).
			WithDetails(internal.RoleInUseDetails{UserCount: userCount})
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.NewRoleDeletedEvent(id, data.Name)); err != nil {
			s.logger.Warn("failed to publish role deleted event", "role_id", id, "error", err)
		}
	}

	s.logger.Info("role deleted", "role_id", id, "name", data.Name)
	return nil
}

func (s *Service) List() ([]*Role, error) {
	dataRoles, err := s.repo.GetAll()
	if err != nil {
		s.logger.Error("failed to list roles", "error", err)
		return nil, internal.NewStoreError("Failed to fetch roles", err)
	}

	roles := make([]*Role, 0, len(dataRoles))
	for _, data := range dataRoles {
		roles = append(roles, FromDataModel(data))
	}
	return roles, nil
}

func (s *Service) GetByID(id int64) (*Role, error) {
	data, err := s.repo.GetByID(id)
	if err != nil {
		s.logger.Error("failed to load role", "role_id", id, "error", err)
		return nil, internal.NewStoreError("Failed to fetch role", err)
	}
	if data == nil {
		return nil, internal.ErrRoleNotFound
	}
	return FromDataModel(data), nil
}

// GetModules returns the role's grant set, ascending. An unknown role or a
// role without grants yields an empty list, not an error.
func (s *Service) GetModules(roleID int64) ([]string, error) {
	modules, err := s.repo.GetModules(roleID)
	if err != nil {
		s.logger.Error("failed to fetch role modules", "role_id", roleID, "error", err)
		return nil, internal.NewStoreError("Failed to fetch modules", err)
	}
	if modules == nil {
		modules = []string{}
	}
	return modules, nil
}

// ReplaceModules swaps the role's entire grant set for the given one. The
// replacement is atomic: concurrent readers see either the old set or the new
// set, never a partial mix. Replaying the same call is a no-op.
func (s *Service) ReplaceModules(ctx context.Context, roleID int64, dto ReplaceModulesDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}

	valid, unknown := module.Normalize(dto.Modules)
	if len(unknown) > 0 {
		msg := fmt.Sprintf("Unknown module(s): %v", unknown)
		return internal.NewValidationError(msg, internal.ErrCodeUnknownModule)
	}

	data, err := s.repo.GetByID(roleID)
	if err != nil {
		s.logger.Error("failed to load role", "role_id", roleID, "error", err)
		return internal.NewStoreError("Failed to validate role", err)
	}
	if data == nil {
		return internal.ErrRoleNotFound
	}

	if err := s.repo.ReplaceModules(roleID, valid); err != nil {
		s.logger.Error("failed to replace role modules", "role_id", roleID, "error", err)
		return internal.NewStoreError("Failed to update modules", err)
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, events.NewRoleModulesReplacedEvent(roleID, valid)); err != nil {
			s.logger.Warn("failed to publish modules replaced event", "role_id", roleID, "error", err)
		}
	}

	s.logger.Info("role modules replaced", "role_id", roleID, "modules", valid)
	return nil
}
