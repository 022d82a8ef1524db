package rest_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/aggregate"
	"github.com/frahmantamala/expense-tracker-client/internal/category"
	"github.com/frahmantamala/expense-tracker-client/internal/chart"
	"github.com/frahmantamala/expense-tracker-client/internal/dashboard"
	"github.com/frahmantamala/expense-tracker-client/internal/expense"
	"github.com/frahmantamala/expense-tracker-client/internal/salary"
	"github.com/frahmantamala/expense-tracker-client/internal/session"
	"github.com/frahmantamala/expense-tracker-client/internal/transport"
	"github.com/frahmantamala/expense-tracker-client/internal/transport/middleware"
	"github.com/frahmantamala/expense-tracker-client/internal/transport/rest"
	"github.com/frahmantamala/expense-tracker-client/pkg/logger"
	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"
)

func TestRest(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Preview Server Suite")
}

type stubExpenses struct {
	items []expense.Expense
	err   error
}

func (s *stubExpenses) List(context.Context) ([]expense.Expense, error) { return s.items, s.err }

type stubSalaries struct {
	items []salary.Salary
	err   error
}

func (s *stubSalaries) List(context.Context) ([]salary.Salary, error) { return s.items, s.err }

type stubCategories struct{}

func (stubCategories) List(context.Context) ([]category.Category, error) {
	return []category.Category{{ID: 1, Name: "Food"}}, nil
}

type probeFunc func(ctx context.Context, method, path string, body any) (*http.Response, error)

func (f probeFunc) DoPublic(ctx context.Context, method, path string, body any) (*http.Response, error) {
	return f(ctx, method, path, body)
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.Local)
}

var _ = Describe("Preview router", func() {
	var (
		ctx       context.Context
		persister *session.MemoryPersister
		store     *session.Store
		expenses  *stubExpenses
		salaries  *stubSalaries
		board     *dashboard.Dashboard
		probe     probeFunc
		router    *chi.Mux
	)

	serve := func(method, target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
		return rec
	}

	BeforeEach(func() {
		ctx = context.Background()
		persister = session.NewMemoryPersister()
		store = session.NewStore(persister, logger.Discard())
		expenses = &stubExpenses{items: []expense.Expense{
			{ID: 1, Amount: decimal.NewFromInt(30), Date: day(2024, time.January, 5), CategoryID: 1, Category: &expense.Category{ID: 1, Name: "Food"}},
			{ID: 2, Amount: decimal.NewFromInt(10), Date: day(2024, time.January, 9), CategoryID: 2, Category: &expense.Category{ID: 2, Name: "Transport"}},
			{ID: 3, Amount: decimal.NewFromInt(99), Date: day(2024, time.February, 1), CategoryID: 1, Category: &expense.Category{ID: 1, Name: "Food"}},
		}}
		salaries = &stubSalaries{items: []salary.Salary{
			{ID: 1, Amount: decimal.NewFromInt(100), Date: day(2024, time.January, 1)},
		}}
		board = dashboard.New(expenses, salaries, stubCategories{}, aggregate.MonthSelector{Month: 0, Year: 2024}, logger.Discard())
		board.Load(ctx)

		probe = func(context.Context, string, string, any) (*http.Response, error) {
			rec := httptest.NewRecorder()
			rec.WriteHeader(http.StatusOK)
			return rec.Result(), nil
		}

		base := transport.NewBaseHandler(logger.Discard())
		router = chi.NewRouter()
		rest.RegisterAllRoutes(router, rest.RouteDeps{
			Health:  rest.NewHealthHandler(base, nil, probeFunc(func(ctx context.Context, m, p string, b any) (*http.Response, error) { return probe(ctx, m, p, b) })),
			Preview: rest.NewPreviewHandler(base, board),
			Session: store,
			Logger:  logger.Discard(),
		})
	})

	Context("without a session", func() {
		It("should reject snapshot requests with 401", func() {
			rec := serve(http.MethodGet, "/api/snapshot")

			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(ContainSubstring("UNAUTHENTICATED"))
		})

		It("should still serve the API contract and health", func() {
			Expect(serve(http.MethodGet, "/openapi.yml").Body.String()).To(ContainSubstring("openapi: 3"))
			Expect(serve(http.MethodGet, "/ping").Code).To(Equal(http.StatusOK))
		})
	})

	Context("with a session", func() {
		BeforeEach(func() {
			Expect(store.Set(ctx, "tok", session.Identity{ID: 1, Username: "alice"})).To(Succeed())
		})

		It("should return the monthly snapshot for the selected month", func() {
			// When
			rec := serve(http.MethodGet, "/api/snapshot")

			// Then
			Expect(rec.Code).To(Equal(http.StatusOK))
			var body struct {
				Label   string `json:"label"`
				Summary struct {
					ExpenseTotal decimal.Decimal `json:"expense_total"`
					NetBalance   decimal.Decimal `json:"net_balance"`
				} `json:"summary"`
				Bar chart.BarChart `json:"bar"`
			}
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Label).To(Equal("January 2024"))
			Expect(body.Summary.ExpenseTotal.Equal(decimal.NewFromInt(40))).To(BeTrue())
			Expect(body.Summary.NetBalance.Equal(decimal.NewFromInt(60))).To(BeTrue())
			Expect(body.Bar.Bars).To(HaveLen(2))
			Expect(body.Bar.Bars[0].Name).To(Equal("Food"))
		})

		It("should honour an explicit month without moving the selection", func() {
			rec := serve(http.MethodGet, "/api/snapshot?month=2024-02")

			Expect(rec.Body.String()).To(ContainSubstring("February 2024"))
			Expect(board.Month()).To(Equal(aggregate.MonthSelector{Month: 0, Year: 2024}))
		})

		It("should reject a malformed month", func() {
			rec := serve(http.MethodGet, "/api/snapshot?month=jan")

			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
			Expect(rec.Body.String()).To(ContainSubstring("month"))
		})

		It("should report a failed list as a warning after refresh", func() {
			// Given
			salaries.err = errors.New("boom")

			// When
			rec := serve(http.MethodGet, "/api/snapshot?refresh=true")

			// Then
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("salaries unavailable"))
		})

		It("should answer 401 when the API rejects the session during a refresh", func() {
			// Given the gateway has seen a 401 for the expense list
			expenses.err = apperrors.ErrSessionExpired

			// When
			rec := serve(http.MethodGet, "/api/snapshot?refresh=true")

			// Then
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
			Expect(rec.Body.String()).To(ContainSubstring(string(apperrors.ErrCodeSessionExpired)))
			Expect(rec.Body.String()).NotTo(ContainSubstring("summary"))
		})

		It("should wrap month navigation across the year boundary", func() {
			rec := serve(http.MethodPost, "/api/month/previous")

			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Body.String()).To(ContainSubstring("December 2023"))
			Expect(board.Month()).To(Equal(aggregate.MonthSelector{Month: 11, Year: 2023}))
		})

		It("should render the charts as svg", func() {
			bar := serve(http.MethodGet, "/charts/bar.svg")
			pie := serve(http.MethodGet, "/charts/pie.svg?month=2023-06")

			Expect(bar.Header().Get("Content-Type")).To(Equal("image/svg+xml"))
			Expect(bar.Body.String()).To(ContainSubstring("Food"))
			Expect(pie.Body.String()).To(ContainSubstring(chart.PiePlaceholder))
		})

		It("should stop serving once another process logs out", func() {
			// Given another process sharing the same persisted entries
			other := session.NewStore(persister, logger.Discard())
			other.Restore(ctx)
			other.Clear(ctx)

			// When
			rec := serve(http.MethodGet, "/charts/bar.svg")

			// Then
			Expect(rec.Code).To(Equal(http.StatusUnauthorized))
		})
	})

	Context("health", func() {
		It("should be unhealthy when the expense API is unreachable", func() {
			probe = func(context.Context, string, string, any) (*http.Response, error) {
				return nil, errors.New("dial tcp: connection refused")
			}

			rec := serve(http.MethodGet, "/health")

			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
			var body rest.HealthResponse
			Expect(json.Unmarshal(rec.Body.Bytes(), &body)).To(Succeed())
			Expect(body.Components["expense_api"].Status).To(Equal(rest.HealthUnhealthy))
			Expect(body.Components["session_store"].Status).To(Equal(rest.HealthSkipped))
		})
	})

	Context("request ids", func() {
		It("should echo a caller supplied id", func() {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/ping", strings.NewReader(""))
			req.Header.Set(middleware.HeaderRequestID, "abc-123")

			router.ServeHTTP(rec, req)

			Expect(rec.Header().Get(middleware.HeaderRequestID)).To(Equal("abc-123"))
		})
	})
})
