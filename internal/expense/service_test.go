package expense_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/expense"
	"github.com/frahmantamala/expense-tracker-client/pkg/logger"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestExpense(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Expense Client Suite")
}

type recordedCall struct {
	Method string
	Path   string
	Body   map[string]any
}

// mockAPI answers each call with the next queued response.
type mockAPI struct {
	calls     []recordedCall
	responses []*http.Response
	err       error
}

func (m *mockAPI) queue(status int, body string) {
	rec := httptest.NewRecorder()
	rec.WriteHeader(status)
	_, _ = io.WriteString(rec, body)
	m.responses = append(m.responses, rec.Result())
}

func (m *mockAPI) Do(_ context.Context, method, path string, body any) (*http.Response, error) {
	call := recordedCall{Method: method, Path: path}
	if body != nil {
		raw, _ := json.Marshal(body)
		_ = json.Unmarshal(raw, &call.Body)
	}
	m.calls = append(m.calls, call)

	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, fmt.Errorf("no response queued for %s %s", method, path)
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, nil
}

const groceries = `{"id":1,"user_id":9,"description":"Groceries","amount":45.5,"category_id":2,
	"date":"2024-01-15T10:30:00.123456","category":{"id":2,"name":"Food","description":null}}`

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		api     *mockAPI
		service *expense.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		api = &mockAPI{}
		service = expense.NewService(api, logger.Discard())
	})

	Describe("List", func() {
		It("should decode expenses with their category", func() {
			// Given
			api.queue(http.StatusOK, "["+groceries+"]")

			// When
			expenses, err := service.List(ctx)

			// Then
			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(1))
			Expect(expenses[0].Description).To(Equal("Groceries"))
			Expect(expenses[0].Amount.Equal(decimal.RequireFromString("45.5"))).To(BeTrue())
			name, ok := expenses[0].CategoryName()
			Expect(ok).To(BeTrue())
			Expect(name).To(Equal("Food"))
			Expect(api.calls[0].Path).To(Equal("/api/expenses/?skip=0&limit=100"))
		})

		It("should walk pages until a short one", func() {
			full := make([]string, expense.DefaultPageSize)
			for i := range full {
				full[i] = fmt.Sprintf(`{"id":%d,"amount":1,"category_id":1,"date":"2024-01-01"}`, i+1)
			}
			api.queue(http.StatusOK, "["+strings.Join(full, ",")+"]")
			api.queue(http.StatusOK, "["+groceries+"]")

			expenses, err := service.List(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).To(HaveLen(expense.DefaultPageSize + 1))
			Expect(api.calls).To(HaveLen(2))
			Expect(api.calls[1].Path).To(Equal("/api/expenses/?skip=100&limit=100"))
		})

		It("should return an empty list, not nil, when there are none", func() {
			api.queue(http.StatusOK, "[]")

			expenses, err := service.List(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(expenses).NotTo(BeNil())
			Expect(expenses).To(BeEmpty())
		})

		It("should surface gateway errors", func() {
			api.err = apperrors.ErrSessionExpired

			_, err := service.List(ctx)

			Expect(errors.Is(err, apperrors.ErrSessionExpired)).To(BeTrue())
		})

		It("should report unexpected statuses", func() {
			api.queue(http.StatusInternalServerError, `{"detail":"boom"}`)

			_, err := service.List(ctx)

			Expect(errors.Is(err, apperrors.ErrUnexpectedResponse)).To(BeTrue())
		})
	})

	Describe("Create", func() {
		It("should send amount as a number with the category id", func() {
			api.queue(http.StatusOK, groceries)

			created, err := service.Create(ctx, expense.ExpenseDTO{
				Description: "Groceries",
				Amount:      decimal.RequireFromString("45.50"),
				CategoryID:  2,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).To(Equal(int64(1)))
			Expect(api.calls[0].Method).To(Equal(http.MethodPost))
			Expect(api.calls[0].Body).To(HaveKeyWithValue("amount", 45.5))
			Expect(api.calls[0].Body).To(HaveKeyWithValue("category_id", float64(2)))
		})

		It("should reject a negative amount without calling the API", func() {
			_, err := service.Create(ctx, expense.ExpenseDTO{Amount: decimal.NewFromInt(-1), CategoryID: 2})

			Expect(errors.Is(err, apperrors.ErrInvalidInput)).To(BeTrue())
			Expect(api.calls).To(BeEmpty())
		})

		It("should require a category", func() {
			_, err := service.Create(ctx, expense.ExpenseDTO{Amount: decimal.NewFromInt(5)})

			Expect(errors.Is(err, apperrors.ErrInvalidInput)).To(BeTrue())
		})
	})

	Describe("Update", func() {
		It("should replace the expense with PUT", func() {
			api.queue(http.StatusOK, groceries)

			_, err := service.Update(ctx, 1, expense.ExpenseDTO{Description: "Groceries", Amount: decimal.NewFromInt(10), CategoryID: 2})

			Expect(err).NotTo(HaveOccurred())
			Expect(api.calls[0].Method).To(Equal(http.MethodPut))
			Expect(api.calls[0].Path).To(Equal("/api/expenses/1"))
		})

		It("should report a missing expense", func() {
			api.queue(http.StatusNotFound, `{"detail":"Expense not found"}`)

			_, err := service.Update(ctx, 99, expense.ExpenseDTO{Amount: decimal.NewFromInt(10), CategoryID: 2})

			Expect(err).To(MatchError(expense.ErrExpenseNotFound))
		})
	})

	Describe("Delete", func() {
		It("should delete by id", func() {
			api.queue(http.StatusOK, `{"message":"Expense deleted successfully"}`)

			Expect(service.Delete(ctx, 1)).To(Succeed())
			Expect(api.calls[0].Method).To(Equal(http.MethodDelete))
		})

		It("should report a missing expense", func() {
			api.queue(http.StatusNotFound, `{}`)

			Expect(service.Delete(ctx, 1)).To(MatchError(expense.ErrExpenseNotFound))
		})
	})

	Describe("Get", func() {
		It("should fetch a single expense", func() {
			api.queue(http.StatusOK, groceries)

			got, err := service.Get(ctx, 1)

			Expect(err).NotTo(HaveOccurred())
			Expect(got.Date.Year()).To(Equal(2024))
			Expect(got.Date.Month().String()).To(Equal("January"))
		})
	})
})
