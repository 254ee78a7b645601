package auth_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/araufdev/business-management/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ModuleGuard", func() {
	var (
		guard *auth.ModuleGuard
		next  http.Handler
	)

	BeforeEach(func() {
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		guard = auth.NewModuleGuard(logger)
		next = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})

	serve := func(user *auth.SessionUser, moduleName string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if user != nil {
			req = req.WithContext(auth.ContextWithUser(req.Context(), user))
		}
		w := httptest.NewRecorder()
		guard.Require(moduleName)(next).ServeHTTP(w, req)
		return w
	}

	It("should pass requests from users holding the module", func() {
		user := &auth.SessionUser{ID: 1, Email: "ari@example.com", Modules: []string{"settings", "invoices"}}
		w := serve(user, "settings")
		Expect(w.Code).To(Equal(http.StatusOK))
	})

	It("should return 403 when the module is not granted", func() {
		user := &auth.SessionUser{ID: 1, Email: "ari@example.com", Modules: []string{"invoices"}}
		w := serve(user, "settings")
		Expect(w.Code).To(Equal(http.StatusForbidden))
		Expect(w.Body.String()).To(ContainSubstring("module access not granted"))
	})

	It("should return 403 for a user with no modules at all", func() {
		user := &auth.SessionUser{ID: 1, Email: "ari@example.com"}
		w := serve(user, "dashboard")
		Expect(w.Code).To(Equal(http.StatusForbidden))
	})

	It("should return 401 when no session user is in the context", func() {
		w := serve(nil, "settings")
		Expect(w.Code).To(Equal(http.StatusUnauthorized))
	})
})
