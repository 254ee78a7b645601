package user_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"

	roleDatamodel "github.com/araufdev/business-management/internal/core/datamodel/role"
	userDatamodel "github.com/araufdev/business-management/internal/core/datamodel/user"
	"github.com/araufdev/business-management/internal/transport"
	"github.com/araufdev/business-management/internal/user"
	userPostgres "github.com/araufdev/business-management/internal/user/postgres"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// MockImageStore implements user.ImageStore for testing
type MockImageStore struct {
	uploads    []string
	shouldFail bool
	failError  error
}

func (m *MockImageStore) UploadProfilePicture(ctx context.Context, filename, contentType string, content io.Reader) (string, error) {
	if m.shouldFail {
		return "", m.failError
	}
	m.uploads = append(m.uploads, filename)
	return "https://cdn.example.com/user-profiles/" + filename, nil
}

type formBody struct {
	buf    bytes.Buffer
	writer *multipart.Writer
}

func newFormBody() *formBody {
	fb := &formBody{}
	fb.writer = multipart.NewWriter(&fb.buf)
	return fb
}

func (fb *formBody) field(key, value string) *formBody {
	Expect(fb.writer.WriteField(key, value)).To(Succeed())
	return fb
}

func (fb *formBody) file(key, filename string, content []byte) *formBody {
	part, err := fb.writer.CreateFormFile(key, filename)
	Expect(err).NotTo(HaveOccurred())
	_, err = part.Write(content)
	Expect(err).NotTo(HaveOccurred())
	return fb
}

func (fb *formBody) request(method, target string) *http.Request {
	Expect(fb.writer.Close()).To(Succeed())
	req := httptest.NewRequest(method, target, &fb.buf)
	req.Header.Set("Content-Type", fb.writer.FormDataContentType())
	return req
}

var _ = Describe("User Handler Integration", func() {
	var (
		db      *gorm.DB
		repo    user.RepositoryAPI
		service *user.Service
		handler *user.Handler
		images  *MockImageStore
		router  *chi.Mux
		slogger *slog.Logger
	)

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

		Expect(db.Create(&roleDatamodel.Role{Name: "Sales"}).Error).To(Succeed())

		repo = userPostgres.NewUserRepository(db)
		roleResolver := &dbRoleResolver{db: db}
		service = user.NewService(repo, roleResolver, nil, bcrypt.MinCost, slogger)
		images = &MockImageStore{}
		handler = user.NewHandler(service, images)

		router = chi.NewRouter()
		router.Route("/users", func(r chi.Router) {
			r.Get("/", handler.ListUsers)
			r.Post("/", handler.CreateUser)
			r.Get("/{id}", handler.GetUser)
			r.Put("/{id}", handler.UpdateUser)
			r.Delete("/{id}", handler.DeleteUser)
		})
	})

	Describe("POST /users", func() {
		It("should create a user from a multipart form", func() {
			req := newFormBody().
				field("firstName", "Ari").
				field("lastName", "Rauf").
				field("email", "ari@example.com").
				field("password", "secret123").
				field("role", "Sales").
				request(http.MethodPost, "/users")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))

			env := decode(w)
			Expect(env.Success).To(BeTrue())

			payload, ok := env.Data.(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(payload["email"]).To(Equal("ari@example.com"))
			Expect(payload).NotTo(HaveKey("passwordHash"))
			Expect(payload["role_id"]).NotTo(BeNil())
		})

		It("should upload the profile picture and store its URL", func() {
			req := newFormBody().
				field("firstName", "Ari").
				field("lastName", "Rauf").
				field("email", "ari@example.com").
				field("password", "secret123").
				file("profilePicture", "avatar.png", []byte("fake-png")).
				request(http.MethodPost, "/users")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(images.uploads).To(Equal([]string{"avatar.png"}))

			stored, err := repo.GetByEmail("ari@example.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.ProfilePictureURL).NotTo(BeNil())
			Expect(*stored.ProfilePictureURL).To(Equal("https://cdn.example.com/user-profiles/avatar.png"))
		})

		It("should reject an unknown role name with 400", func() {
			req := newFormBody().
				field("firstName", "Ari").
				field("lastName", "Rauf").
				field("email", "ari@example.com").
				field("password", "secret123").
				field("role", "Ghost").
				request(http.MethodPost, "/users")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(decode(w).Message).To(ContainSubstring("Ghost"))
		})

		It("should reject a duplicate email with 409", func() {
			seed := func() *httptest.ResponseRecorder {
				req := newFormBody().
					field("firstName", "Ari").
					field("lastName", "Rauf").
					field("email", "ari@example.com").
					field("password", "secret123").
					request(http.MethodPost, "/users")
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)
				return w
			}

			Expect(seed().Code).To(Equal(http.StatusCreated))
			Expect(seed().Code).To(Equal(http.StatusConflict))
		})
	})

	Describe("PUT /users/{id}", func() {
		var id int64

		BeforeEach(func() {
			phone := "0811"
			data := &userDatamodel.User{
				FirstName:    "Ari",
				LastName:     "Rauf",
				Email:        "ari@example.com",
				Phone:        &phone,
				PasswordHash: "x",
			}
			Expect(repo.Create(data)).To(Succeed())
			id = data.ID
		})

		It("should apply only the supplied fields", func() {
			req := newFormBody().
				field("firstName", "Arif").
				request(http.MethodPut, fmt.Sprintf("/users/%d", id))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w).Message).To(Equal("User updated successfully"))

			got, err := repo.GetByID(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.FirstName).To(Equal("Arif"))
			Expect(got.LastName).To(Equal("Rauf"))
			Expect(got.Phone).NotTo(BeNil())
		})

		It("should clear an optional field sent as empty", func() {
			req := newFormBody().
				field("phone", "").
				request(http.MethodPut, fmt.Sprintf("/users/%d", id))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			got, err := repo.GetByID(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Phone).To(BeNil())
		})

		It("should ignore an empty password field", func() {
			req := newFormBody().
				field("firstName", "Arif").
				field("password", "").
				request(http.MethodPut, fmt.Sprintf("/users/%d", id))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			got, err := repo.GetByID(id)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.PasswordHash).To(Equal("x"))
		})

		It("should return 404 for an unknown user", func() {
			req := newFormBody().
				field("firstName", "Ghost").
				request(http.MethodPut, "/users/999")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("DELETE /users/{id}", func() {
		It("should delete a regular user", func() {
			data := &userDatamodel.User{FirstName: "Ari", LastName: "Rauf", Email: "ari@example.com", PasswordHash: "x"}
			Expect(repo.Create(data)).To(Succeed())

			req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/users/%d", data.ID), nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(decode(w).Message).To(Equal("User deleted successfully"))
		})

		It("should return 403 for the system admin account", func() {
			data := &userDatamodel.User{FirstName: "System", LastName: "Admin", Email: user.SystemAdminEmail, PasswordHash: "x"}
			Expect(repo.Create(data)).To(Succeed())

			req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/users/%d", data.ID), nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(decode(w).Message).To(ContainSubstring("System Admin"))
		})
	})

	Describe("GET /users", func() {
		It("should list users with their role names", func() {
			var role roleDatamodel.Role
			Expect(db.Where("name = ?", "Sales").First(&role).Error).To(Succeed())

			data := &userDatamodel.User{FirstName: "Ari", LastName: "Rauf", Email: "ari@example.com", PasswordHash: "x", RoleID: &role.ID}
			Expect(repo.Create(data)).To(Succeed())

			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			env := decode(w)
			items, ok := env.Data.([]interface{})
			Expect(ok).To(BeTrue())
			Expect(items).To(HaveLen(1))

			first, ok := items[0].(map[string]interface{})
			Expect(ok).To(BeTrue())
			Expect(first["role_name"]).To(Equal("Sales"))
		})
	})
})

// dbRoleResolver backs user.RoleResolver with the test database.
type dbRoleResolver struct {
	db *gorm.DB
}

func (r *dbRoleResolver) GetByName(name string) (*roleDatamodel.Role, error) {
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
