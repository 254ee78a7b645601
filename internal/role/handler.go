package role

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/araufdev/business-management/internal"
	"github.com/araufdev/business-management/internal/transport"
	"github.com/araufdev/business-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	Create(dto CreateRoleDTO) (*Role, error)
	Update(id int64, dto UpdateRoleDTO) error
	Delete(ctx context.Context, id int64) error
	List() ([]*Role, error)
	GetByID(id int64) (*Role, error)
	GetModules(roleID int64) ([]string, error)
	ReplaceModules(ctx context.Context, roleID int64, dto ReplaceModulesDTO) error
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) roleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid role ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid role ID")
		return 0, false
	}
	return id, true
}

// ListRoles handles GET /roles
func (h *Handler) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.List()
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, roles)
}

// GetRole handles GET /roles/{id}
func (h *Handler) GetRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}

	role, err := h.Service.GetByID(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, role)
}

// CreateRole handles POST /roles
func (h *Handler) CreateRole(w http.ResponseWriter, r *http.Request) {
	var dto CreateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("CreateRole: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	role, err := h.Service.Create(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteData(w, http.StatusCreated, role)
}

// UpdateRole handles PUT /roles/{id}
func (h *Handler) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}

	var dto UpdateRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("UpdateRole: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.Update(id, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteMessage(w, http.StatusOK, "Role updated successfully")
}

// DeleteRole handles DELETE /roles/{id}
func (h *Handler) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("role deleted", "role_id", id, "actor_id", internal.UserIDFromContext(r.Context()))
	h.WriteMessage(w, http.StatusOK, "Role deleted successfully")
}

// GetRoleModules handles GET /roles/{id}/modules
func (h *Handler) GetRoleModules(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}

	modules, err := h.Service.GetModules(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteData(w, http.StatusOK, modules)
}

// ReplaceRoleModules handles PUT /roles/{id}/modules
func (h *Handler) ReplaceRoleModules(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}

	var dto ReplaceModulesDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.Logger.Error("ReplaceRoleModules: invalid request body", "error", err)
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ReplaceModules(r.Context(), id, dto); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.Logger.Info("role modules replaced", "role_id", id, "actor_id", internal.UserIDFromContext(r.Context()))
	h.WriteMessage(w, http.StatusOK, "Modules updated successfully")
}
