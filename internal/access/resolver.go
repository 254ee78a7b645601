// Package access derives the effective module list for a user by resolving
// user -> role -> module grants. This derivation is the single source of
// truth: clients hold a pull-based snapshot of it and refresh on demand,
// nothing is ever persisted per user.
package access

import (
	"log/slog"

	"github.com/araufdev/business-management/internal"
	userDatamodel "github.com/araufdev/business-management/internal/core/datamodel/user"
)

type UserReader interface {
	GetByID(id int64) (*userDatamodel.User, error)
}

type GrantReader interface {
	GetModules(roleID int64) ([]string, error)
}

type Resolver struct {
	users  UserReader
	grants GrantReader
	logger *slog.Logger
}

func NewResolver(users UserReader, grants GrantReader, logger *slog.Logger) *Resolver {
	return &Resolver{
		users:  users,
		grants: grants,
		logger: logger,
	}
}

// ResolveModules returns the sorted, deduplicated module list the user may
// access. A user without a role, an unknown user, or a role without grants
// all yield the empty list; absence of access is a valid state, not an error.
func (r *Resolver) ResolveModules(userID int64) ([]string, error) {
	u, err := r.users.GetByID(userID)
	if err != nil {
		r.logger.Error("failed to load user for module resolution", "user_id", userID, "error", err)
		return nil, internal.NewStoreError("Failed to fetch modules", err)
	}
	if u == nil || u.RoleID == nil {
		return []string{}, nil
	}

	modules, err := r.grants.GetModules(*u.RoleID)
	if err != nil {
		r.logger.Error("failed to load role grants", "user_id", userID, "role_id", *u.RoleID, "error", err)
		return nil, internal.NewStoreError("Failed to fetch modules", err)
	}
	if modules == nil {
		modules = []string{}
	}
	return modules, nil
}
