package role_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	roleDatamodel "github.com/araufdev/business-management/internal/core/datamodel/role"
	userDatamodel "github.com/araufdev/business-management/internal/core/datamodel/user"
	"github.com/araufdev/business-management/internal/role"
	rolePostgres "github.com/araufdev/business-management/internal/role/postgres"
	"github.com/araufdev/business-management/internal/transport"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

var _ = Describe("Role Handler Integration", func() {
	var (
		db      *gorm.DB
		repo    role.RepositoryAPI
		service *role.Service
		handler *role.Handler
		router  *chi.Mux
		slogger *slog.Logger
	)

	do := func(method, target string, body interface{}) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		if body != nil {
			Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())
		}
		req := httptest.NewRequest(method, target, &buf)
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	decode := func(w *httptest.ResponseRecorder) transport.Envelope {
		var env transport.Envelope
		Expect(json.NewDecoder(w.Body).Decode(&env)).To(Succeed())
		return env
	}

	BeforeEach(func() {
		var err error
		slogger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))

		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormLogger.Default.LogMode(gormLogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&roleDatamodel.Role{}, &roleDatamodel.RoleModule{}, &userDatamodel.User{})
		Expect(err).NotTo(HaveOccurred())

		repo = rolePostgres.NewRoleRepository(db)
		service = role.NewService(repo, nil, slogger)
		handler = role.NewHandler(service)

		router = chi.NewRouter()
		router.Route("/roles", func(r chi.Router) {
			r.Get("/", handler.ListRoles)
			r.Post("/", handler.CreateRole)
			r.Get("/{id}", handler.GetRole)
			r.Put("/{id}", handler.UpdateRole)
			r.Delete("/{id}", handler.DeleteRole)
			r.Get("/{id}/modules", handler.GetRoleModules)
			r.Put("/{id}/modules", handler.ReplaceRoleModules)
		})
	})

	seedRole := func(name string, protected bool) int64 {
		data := &roleDatamodel.Role{Name: name, IsProtected: protected}
		Expect(repo.Create(data)).To(Succeed())
		return data.ID
	}

	Describe("POST /roles", func() {
		It("should create a role and return 201 with the role payload", func() {
			w := do(http.MethodPost, "/roles", role.CreateRoleDTO{Name: "Sales", Description: "Sales staff"})

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Header().Get("Content-Type")).To(ContainSubstring("application/json"))

			env := decode(w)
			Expect(env.Success).To(BeTrue())

			payload, ok := env.Data.(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(payload["name"]).To(Equal("Sales"))
			Expect(payload["id"]).NotTo(BeZero())
		})

		It("should reject a duplicate name with 409", func() {
			seedRole("Sales", false)

			w := do(http.MethodPost, "/roles", role.CreateRoleDTO{Name: "Sales"})
			Expect(w.Code).To(Equal(http.StatusConflict))

			env := decode(w)
			Expect(env.Success).To(BeFalse())
			Expect(env.Message).NotTo(BeEmpty())
		})

		It("should reject a blank name with 400", func() {
			w := do(http.MethodPost, "/roles", role.CreateRoleDTO{Name: "  "})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w).Message).To(Equal("Role name is required"))
		})
	})

	Describe("PUT /roles/{id}", func() {
		It("should update the role and return a success message", func() {
			id := seedRole("Sales", false)

			w := do(http.MethodPut, fmt.Sprintf("/roles/%d", id), role.UpdateRoleDTO{Name: "Field Sales"})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w).Message).To(Equal("Role updated successfully"))
		})

		It("should return 403 for the protected role", func() {
			id := seedRole("Admin", true)

			w := do(http.MethodPut, fmt.Sprintf("/roles/%d", id), role.UpdateRoleDTO{Name: "Root"})
			Expect(w.Code).To(Equal(http.StatusForbidden))

			env := decode(w)
			Expect(env.Success).To(BeFalse())
			Expect(env.Message).To(ContainSubstring("Cannot edit Admin role"))
		})

		It("should return 404 for an unknown role", func() {
			w := do(http.MethodPut, "/roles/999", role.UpdateRoleDTO{Name: "Ghost"})
			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should return 400 for a non-numeric id", func() {
			w := do(http.MethodPut, "/roles/abc", role.UpdateRoleDTO{Name: "Sales"})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("DELETE /roles/{id}", func() {
		It("should delete an unreferenced role", func() {
			id := seedRole("Sales", false)

			w := do(http.MethodDelete, fmt.Sprintf("/roles/%d", id), nil)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w).Message).To(Equal("Role deleted successfully"))

			got, err := repo.GetByID(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(BeNil())
		})

		It("should return 403 for the protected role", func() {
			id := seedRole("Admin", true)

			w := do(http.MethodDelete, fmt.Sprintf("/roles/%d", id), nil)
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decode(w).Message).To(ContainSubstring("Cannot delete Admin role"))
		})

		It("should return 409 with the user count when users are assigned", func() {
			id := seedRole("Sales", false)
			for i := 0; i < 2; i++ {
				u := &userDatamodel.User{
					FirstName:    "Test",
					LastName:     fmt.Sprintf("User%d", i),
					Email:        fmt.Sprintf("user%d@example.com", i),
					PasswordHash: "x",
					RoleID:       &id,
				}
				Expect(db.Create(u).Error).To(Succeed())
			}

			w := do(http.MethodDelete, fmt.Sprintf("/roles/%d", id), nil)
			Expect(w.Code).To(Equal(http.StatusConflict))

			env := decode(w)
			Expect(env.Success).To(BeFalse())
			Expect(env.Message).To(Equal("Cannot delete role. 2 user(s) are assigned to this role."))
			Expect(env.UserCount).NotTo(BeNil())
			Expect(*env.UserCount).To(Equal(int64(2)))

			got, err := repo.GetByID(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).NotTo(BeNil())
		})
	})

	Describe("GET and PUT /roles/{id}/modules", func() {
		It("should return an empty list for a role without grants", func() {
			id := seedRole("Sales", false)

			w := do(http.MethodGet, fmt.Sprintf("/roles/%d/modules", id), nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			env := decode(w)
			Expect(env.Success).To(BeTrue())
			Expect(env.Data).To(HaveLen(0))
		})

		It("should persist a replacement grant set and read it back sorted", func() {
			id := seedRole("Sales", false)

			w := do(http.MethodPut, fmt.Sprintf("/roles/%d/modules", id),
				role.ReplaceModulesDTO{Modules: []string{"invoices", "customers", "stock"}})
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w).Message).To(Equal("Modules updated successfully"))

			w = do(http.MethodGet, fmt.Sprintf("/roles/%d/modules", id), nil)
			env := decode(w)
			Expect(env.Data).To(Equal([]interface{}{"customers", "invoices", "stock"}))
		})

		It("should discard the previous grant set on replace", func() {
			id := seedRole("Sales", false)

			w := do(http.MethodPut, fmt.Sprintf("/roles/%d/modules", id),
				role.ReplaceModulesDTO{Modules: []string{"dashboard", "settings"}})
			Expect(w.Code).To(Equal(http.StatusOK))

			w = do(http.MethodPut, fmt.Sprintf("/roles/%d/modules", id),
				role.ReplaceModulesDTO{Modules: []string{"expenses"}})
			Expect(w.Code).To(Equal(http.StatusOK))

			w = do(http.MethodGet, fmt.Sprintf("/roles/%d/modules", id), nil)
			Expect(decode(w).Data).To(Equal([]interface{}{"expenses"}))
		})

		It("should reject unknown module names with 400", func() {
			id := seedRole("Sales", false)

			w := do(http.MethodPut, fmt.Sprintf("/roles/%d/modules", id),
				role.ReplaceModulesDTO{Modules: []string{"customers", "warehouse"}})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w).Message).To(ContainSubstring("warehouse"))
		})

		It("should reject a body without a modules array", func() {
			id := seedRole("Sales", false)

			w := do(http.MethodPut, fmt.Sprintf("/roles/%d/modules", id), map[string]interface{}{})
			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w).Message).To(Equal("Modules must be an array"))
		})
	})

	Describe("GET /roles", func() {
		It("should list roles ordered by name", func() {
			seedRole("Support", false)
			seedRole("Admin", true)

			w := do(http.MethodGet, "/roles", nil)
			Expect(w.Code).To(Equal(http.StatusOK))

			env := decode(w)
			items, ok := env.Data.([]interface{})
			Expect(ok).To(BeTrue())
			Expect(items).To(HaveLen(2))

			first, ok := items[0].(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(first["name"]).To(Equal("Admin"))
			Expect(first["is_protected"]).To(Equal(true))
		})
	})
})
