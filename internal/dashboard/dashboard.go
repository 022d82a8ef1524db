// Package dashboard keeps the fetched lists and the selected month, and
// derives the monthly snapshot shown by the CLI report and preview server.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	apperrors "github.com/frahmantamala/expense-tracker-client/internal"
	"github.com/frahmantamala/expense-tracker-client/internal/aggregate"
	"github.com/frahmantamala/expense-tracker-client/internal/category"
	"github.com/frahmantamala/expense-tracker-client/internal/chart"
	"github.com/frahmantamala/expense-tracker-client/internal/core/events"
	"github.com/frahmantamala/expense-tracker-client/internal/expense"
	"github.com/frahmantamala/expense-tracker-client/internal/salary"
	"golang.org/x/sync/errgroup"
)

// FetchResult keeps a list fetch failure visible even though the list
// itself degrades to empty.
type FetchResult[T any] struct {
	Items []T
	Err   error
}

func (r FetchResult[T]) Failed() bool {
	return r.Err != nil
}

type ExpenseLister interface {
	List(ctx context.Context) ([]expense.Expense, error)
}

type SalaryLister interface {
	List(ctx context.Context) ([]salary.Salary, error)
}

type CategoryLister interface {
	List(ctx context.Context) ([]category.Category, error)
}

type Dashboard struct {
	expenseSource  ExpenseLister
	salarySource   SalaryLister
	categorySource CategoryLister
	logger         *slog.Logger

	mu         sync.RWMutex
	expenses   FetchResult[expense.Expense]
	salaries   FetchResult[salary.Salary]
	categories FetchResult[category.Category]
	month      aggregate.MonthSelector
}

func New(expenses ExpenseLister, salaries SalaryLister, categories CategoryLister, month aggregate.MonthSelector, logger *slog.Logger) *Dashboard {
	return &Dashboard{
		expenseSource:  expenses,
		salarySource:   salaries,
		categorySource: categories,
		logger:         logger,
		month:          month,
		expenses:       FetchResult[expense.Expense]{Items: []expense.Expense{}},
		salaries:       FetchResult[salary.Salary]{Items: []salary.Salary{}},
		categories:     FetchResult[category.Category]{Items: []category.Category{}},
	}
}

// Load fetches all three lists concurrently. A failing fetch leaves its
// list empty and never stops the others, so Load itself does not fail.
func (d *Dashboard) Load(ctx context.Context) {
	var g errgroup.Group
	g.Go(func() error {
		d.RefreshExpenses(ctx)
		return nil
	})
	g.Go(func() error {
		d.RefreshSalaries(ctx)
		return nil
	})
	g.Go(func() error {
		d.RefreshCategories(ctx)
		return nil
	})
	_ = g.Wait()
}

func (d *Dashboard) RefreshExpenses(ctx context.Context) {
	items, err := d.expenseSource.List(ctx)
	result := degrade(items, err)
	if err != nil {
		d.logger.Warn("expense list unavailable, showing none", "error", err)
	}
	d.mu.Lock()
	d.expenses = result
	d.mu.Unlock()
}

func (d *Dashboard) RefreshSalaries(ctx context.Context) {
	items, err := d.salarySource.List(ctx)
	result := degrade(items, err)
	if err != nil {
		d.logger.Warn("salary list unavailable, showing none", "error", err)
	}
	d.mu.Lock()
	d.salaries = result
	d.mu.Unlock()
}

func (d *Dashboard) RefreshCategories(ctx context.Context) {
	items, err := d.categorySource.List(ctx)
	result := degrade(items, err)
	if err != nil {
		d.logger.Warn("category list unavailable, showing none", "error", err)
	}
	d.mu.Lock()
	d.categories = result
	d.mu.Unlock()
}

func degrade[T any](items []T, err error) FetchResult[T] {
	if err != nil || items == nil {
		return FetchResult[T]{Items: []T{}, Err: err}
	}
	return FetchResult[T]{Items: items}
}

// Reset drops every list, e.g. once the session has ended.
func (d *Dashboard) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.expenses = FetchResult[expense.Expense]{Items: []expense.Expense{}}
	d.salaries = FetchResult[salary.Salary]{Items: []salary.Salary{}}
	d.categories = FetchResult[category.Category]{Items: []category.Category{}}
}

// Subscribe resets the dashboard whenever the session is cleared.
func (d *Dashboard) Subscribe(bus *events.EventBus) {
	bus.Subscribe(events.EventTypeSessionCleared, func(_ context.Context, e events.Event) error {
		d.logger.Debug("session cleared, dropping dashboard data", "event_id", e.EventID())
		d.Reset()
		return nil
	})
}

// SessionExpired reports whether the last fetch of a user list was refused
// because the API no longer accepts the credential.
func (d *Dashboard) SessionExpired() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return errors.Is(d.expenses.Err, apperrors.ErrSessionExpired) ||
		errors.Is(d.salaries.Err, apperrors.ErrSessionExpired)
}

func (d *Dashboard) Expenses() FetchResult[expense.Expense] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return FetchResult[expense.Expense]{Items: slices.Clone(d.expenses.Items), Err: d.expenses.Err}
}

func (d *Dashboard) Salaries() FetchResult[salary.Salary] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return FetchResult[salary.Salary]{Items: slices.Clone(d.salaries.Items), Err: d.salaries.Err}
}

func (d *Dashboard) Categories() FetchResult[category.Category] {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return FetchResult[category.Category]{Items: slices.Clone(d.categories.Items), Err: d.categories.Err}
}

func (d *Dashboard) Month() aggregate.MonthSelector {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.month
}

func (d *Dashboard) SetMonth(sel aggregate.MonthSelector) {
	d.mu.Lock()
	d.month = sel
	d.mu.Unlock()
}

// Step moves the selected month and returns the new selection.
func (d *Dashboard) Step(delta int) aggregate.MonthSelector {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.month = d.month.Step(delta)
	return d.month
}

// Snapshot is the derived view for the selected month.
type Snapshot struct {
	Summary  aggregate.Summary `json:"summary"`
	Expenses []expense.Expense `json:"expenses"`
	Salaries []salary.Salary   `json:"salaries"`
	Bar      chart.BarChart    `json:"bar"`
	Pie      chart.PieChart    `json:"pie"`
}

func (d *Dashboard) Snapshot() Snapshot {
	return d.SnapshotFor(d.Month())
}

// SnapshotFor derives the view for month without changing the selection.
func (d *Dashboard) SnapshotFor(month aggregate.MonthSelector) Snapshot {
	d.mu.RLock()
	expenses := d.expenses.Items
	salaries := d.salaries.Items
	d.mu.RUnlock()

	summary := aggregate.Summarize(expenses, salaries, month)
	return Snapshot{
		Summary:  summary,
		Expenses: slices.AppendSeq([]expense.Expense{}, aggregate.FilterByMonth(expenses, month)),
		Salaries: slices.AppendSeq([]salary.Salary{}, aggregate.FilterByMonth(salaries, month)),
		Bar:      chart.Bar(summary.Categories),
		Pie:      chart.Pie(summary.Categories),
	}
}
