package auth_test

import (
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/araufdev/business-management/internal"
	"github.com/araufdev/business-management/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AuthMiddleware", func() {
	var (
		mockRepo *MockRepository
		resolver *MockModuleResolver
		handler  *auth.Handler
	)

	BeforeEach(func() {
		mockRepo = NewMockRepository()
		resolver = &MockModuleResolver{modules: make(map[int64][]string)}
		tokenGen := auth.NewJWTTokenGenerator(
			"test-access-secret-test-access-secret",
			"test-refresh-secret-test-refresh-secret",
			15*time.Minute,
			24*time.Hour,
		)
		service := auth.NewService(mockRepo, resolver, tokenGen)
		handler = auth.NewHandler(service)

		mockRepo.AddUser("ari@example.com", "secret123", 1)
		resolver.modules[1] = []string{"customers", "settings"}
	})

	login := func() string {
		resp, err := handler.Service.Authenticate(auth.LoginDTO{Email: "ari@example.com", Password: "secret123"})
		Expect(err).NotTo(HaveOccurred())
		return resp.Tokens.AccessToken
	}

	It("should load the session user and stash the acting user id in context", func() {
		var (
			sessionUser *auth.SessionUser
			actorID     string
		)
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionUser, _ = auth.UserFromContext(r.Context())
			actorID = internal.UserIDFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+login())
		w := httptest.NewRecorder()
		handler.AuthMiddleware(next).ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(sessionUser).NotTo(BeNil())
		Expect(sessionUser.Email).To(Equal("ari@example.com"))
		Expect(sessionUser.Modules).To(Equal([]string{"customers", "settings"}))
		Expect(actorID).To(Equal("1"))
	})

	It("should return 401 when the token is missing", func() {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Fail("next handler must not run")
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		w := httptest.NewRecorder()
		handler.AuthMiddleware(next).ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})

	It("should return 401 for a garbage token", func() {
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Fail("next handler must not run")
		})

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		w := httptest.NewRecorder()
		handler.AuthMiddleware(next).ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
