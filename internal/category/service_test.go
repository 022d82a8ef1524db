package category_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/category"
	"github.com/frahmantamala/expense-tracker-client/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCategory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Category Client Suite")
}

// MockPublicAPI serves queued pages first, then a fixed response.
type MockPublicAPI struct {
	status int
	body   string
	pages  []string
	err    error
	paths  []string
}

func (m *MockPublicAPI) DoPublic(_ context.Context, _ string, path string, _ any) (*http.Response, error) {
	m.paths = append(m.paths, path)
	if m.err != nil {
		return nil, m.err
	}
	body := m.body
	if len(m.pages) > 0 {
		body, m.pages = m.pages[0], m.pages[1:]
	}
	rec := httptest.NewRecorder()
	rec.WriteHeader(m.status)
	_, _ = io.WriteString(rec, body)
	return rec.Result(), nil
}

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		api     *MockPublicAPI
		service *category.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		api = &MockPublicAPI{
			status: http.StatusOK,
			body:   `[{"id":1,"name":"Food","description":"Meals"},{"id":2,"name":"Transport","description":null}]`,
		}
		service = category.NewService(api, logger.Discard())
	})

	Describe("List", func() {
		It("should return every category", func() {
			// When
			categories, err := service.List(ctx)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(categories).To(Equal([]category.Category{
				{ID: 1, Name: "Food", Description: "Meals"},
				{ID: 2, Name: "Transport"},
			}))
			Expect(api.paths).To(Equal([]string{category.PathCategories + "?skip=0&limit=100"}))
		})

		It("should keep fetching while pages come back full", func() {
			// Given
			full := make([]string, category.DefaultPageSize)
			for i := range full {
				full[i] = fmt.Sprintf(`{"id":%d,"name":"Category %d"}`, i+1, i+1)
			}
			api.pages = []string{"[" + strings.Join(full, ",") + "]", `[{"id":101,"name":"Pets"}]`}

			// When
			categories, err := service.List(ctx)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(categories).To(HaveLen(category.DefaultPageSize + 1))
			Expect(categories[category.DefaultPageSize].Name).To(Equal("Pets"))
			Expect(api.paths).To(HaveLen(2))
			Expect(api.paths[1]).To(Equal(category.PathCategories + "?skip=100&limit=100"))
		})

		It("should return an empty list when there are none", func() {
			api.body = "[]"

			categories, err := service.List(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(categories).NotTo(BeNil())
			Expect(categories).To(BeEmpty())
		})

		It("should report failures to the caller", func() {
			api.status = http.StatusInternalServerError

			_, err := service.List(ctx)

			Expect(errors.Is(err, apperrors.ErrUnexpectedResponse)).To(BeTrue())
		})
	})

	Describe("Resolve", func() {
		It("should match by id", func() {
			c, err := service.Resolve(ctx, "2")

			Expect(err).NotTo(HaveOccurred())
			Expect(c.Name).To(Equal("Transport"))
		})

		It("should match by name ignoring case", func() {
			c, err := service.Resolve(ctx, "food")

			Expect(err).NotTo(HaveOccurred())
			Expect(c.ID).To(Equal(int64(1)))
		})

		It("should fail for unknown references", func() {
			_, err := service.Resolve(ctx, "Rent")

			Expect(err).To(HaveOccurred())
		})
	})
})
