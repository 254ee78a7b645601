package access

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/araufdev/business-management/internal/transport"
	"github.com/araufdev/business-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ResolverAPI interface {
	ResolveModules(userID int64) ([]string, error)
}

type Handler struct {
	*transport.BaseHandler
	Resolver ResolverAPI
}

func NewHandler(resolver ResolverAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Resolver:    resolver,
	}
}

// RefreshModules handles GET /user-modules/{userID}. The response replaces the
// client's cached module list wholesale.
func (h *Handler) RefreshModules(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "userID")
	userID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.Logger.Error("invalid user ID", "id", idStr)
		h.WriteError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	modules, err := h.Resolver.ResolveModules(userID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteData(w, http.StatusOK, modules)
}
