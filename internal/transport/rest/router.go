package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/araufdev/business-management/internal/access"
	"github.com/araufdev/business-management/internal/auth"
	"github.com/araufdev/business-management/internal/role"
	"github.com/araufdev/business-management/internal/transport/middleware"
	"github.com/araufdev/business-management/internal/transport/swagger"
	"github.com/araufdev/business-management/internal/user"
	"github.com/go-chi/chi"
)

type RouterDeps struct {
	DB             *sql.DB
	AllowedOrigins string
	AuthHandler    *auth.Handler
	RoleHandler    *role.Handler
	UserHandler    *user.Handler
	AccessHandler  *access.Handler
	Logger         *slog.Logger
}

// RegisterAllRoutes mounts the API. Role and user administration plus the
// module-refresh endpoint sit behind authentication; the privileges surface
// itself is gated on the settings module.
func RegisterAllRoutes(router *chi.Mux, deps RouterDeps) {
	healthHandler := NewHealthHandler(deps.DB)
	guard := auth.NewModuleGuard(deps.Logger)

	router.Use(middleware.CORS(deps.AllowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(deps.Logger))
	router.Use(middleware.RecoveryMiddleware(deps.Logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		if deps.AuthHandler != nil {
			r.Route("/auth", func(sr chi.Router) {
				sr.Post("/login", deps.AuthHandler.Login)
				sr.Post("/refresh", deps.AuthHandler.RefreshToken)
				sr.Post("/logout", deps.AuthHandler.Logout)
			})
		}

		if deps.AuthHandler == nil {
			return
		}

		r.Group(func(pr chi.Router) {
			pr.Use(deps.AuthHandler.AuthMiddleware)

			// Any signed-in user may refresh its own module snapshot.
			if deps.AccessHandler != nil {
				pr.Get("/user-modules/{userID}", deps.AccessHandler.RefreshModules)
			}

			// Privileges administration requires the settings module.
			pr.Group(func(ar chi.Router) {
				ar.Use(guard.Require("settings"))

				if deps.RoleHandler != nil {
					ar.Route("/roles", func(rr chi.Router) {
						rr.Get("/", deps.RoleHandler.ListRoles)
						rr.Post("/", deps.RoleHandler.CreateRole)
						rr.Get("/{id}", deps.RoleHandler.GetRole)
						rr.Put("/{id}", deps.RoleHandler.UpdateRole)
						rr.Delete("/{id}", deps.RoleHandler.DeleteRole)
						rr.Get("/{id}/modules", deps.RoleHandler.GetRoleModules)
						rr.Put("/{id}/modules", deps.RoleHandler.ReplaceRoleModules)
					})
				}

				if deps.UserHandler != nil {
					ar.Route("/users", func(ur chi.Router) {
						ur.Get("/", deps.UserHandler.ListUsers)
						ur.Post("/", deps.UserHandler.CreateUser)
						ur.Get("/{id}", deps.UserHandler.GetUser)
						ur.Put("/{id}", deps.UserHandler.UpdateUser)
						ur.Delete("/{id}", deps.UserHandler.DeleteUser)
					})
				}
			})
		})
	})
}
