package access_test

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/araufdev/business-management/internal/access"
	userDatamodel "github.com/araufdev/business-management/internal/core/datamodel/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestAccessResolver(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Access Resolver Suite")
}

// MockUserReader implements access.UserReader for testing
type MockUserReader struct {
	users      map[int64]*userDatamodel.User
	shouldFail bool
	failError  error
}

func (m *MockUserReader) GetByID(id int64) (*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.users[id], nil
}

// MockGrantReader implements access.GrantReader for testing
type MockGrantReader struct {
	grants     map[int64][]string
	shouldFail bool
	failError  error
}

func (m *MockGrantReader) GetModules(roleID int64) ([]string, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.grants[roleID], nil
}

var _ = Describe("Resolver", func() {
	var (
		users    *MockUserReader
		grants   *MockGrantReader
		resolver *access.Resolver
	)

	roleID := int64(5)

	BeforeEach(func() {
		users = &MockUserReader{users: make(map[int64]*userDatamodel.User)}
		grants = &MockGrantReader{grants: make(map[int64][]string)}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		resolver = access.NewResolver(users, grants, logger)
	})

	Describe("ResolveModules", func() {
		It("should resolve user -> role -> grants", func() {
			users.users[1] = &userDatamodel.User{ID: 1, RoleID: &roleID}
			grants.grants[roleID] = []string{"invoices", "stock"}

			modules, err := resolver.ResolveModules(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(modules).To(Equal([]string{"invoices", "stock"}))
		})

		It("should return an empty list for an unknown user", func() {
			modules, err := resolver.ResolveModules(99)
			Expect(err).NotTo(HaveOccurred())
			Expect(modules).NotTo(BeNil())
			Expect(modules).To(BeEmpty())
		})

		It("should return an empty list for a user without a role", func() {
			users.users[1] = &userDatamodel.User{ID: 1}

			modules, err := resolver.ResolveModules(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(modules).To(BeEmpty())
		})

		It("should return an empty list for a role without grants", func() {
			users.users[1] = &userDatamodel.User{ID: 1, RoleID: &roleID}

			modules, err := resolver.ResolveModules(1)
			Expect(err).NotTo(HaveOccurred())
			Expect(modules).NotTo(BeNil())
			Expect(modules).To(BeEmpty())
		})

		It("should propagate store failures", func() {
			users.shouldFail = true
			users.failError = errors.New("database error")

			_, err := resolver.ResolveModules(1)
			Expect(err).To(HaveOccurred())
		})
	})
})
