package auth

import (
	"log/slog"
	"net/http"
)

// ModuleGuard gates route groups on the caller's effective module list. The
// list is resolved fresh for every request by the auth middleware, so an
// administrator revoking a grant takes effect on the next request even while
// the client's cached copy is stale.
type ModuleGuard struct {
	logger *slog.Logger
}

func NewModuleGuard(logger *slog.Logger) *ModuleGuard {
	return &ModuleGuard{logger: logger}
}

func (g *ModuleGuard) Require(moduleName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				g.logger.Warn("module guard: user not found in context", "module", moduleName)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if !user.HasModule(moduleName) {
				g.logger.WarnContext(r.Context(), "access denied: module not granted",
					"user_id", user.ID,
					"module", moduleName,
					"user_modules", user.Modules)
				http.Error(w, "Forbidden: module access not granted", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
