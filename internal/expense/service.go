package expense

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	expenseDatamodel "github.com/frahmantamala/expense-tracker-client/internal/core/datamodel/expense"
	"github.com/frahmantamala/expense-tracker-client/internal/gateway"
)

const PathExpenses = "/api/expenses/"

// API is the authenticated transport the service talks through.
type API interface {
	Do(ctx context.Context, method, path string, body any) (*http.Response, error)
}

type Service struct {
	api      API
	pageSize int
	logger   *slog.Logger
}

func NewService(api API, logger *slog.Logger) *Service {
	return &Service{
		api:      api,
		pageSize: DefaultPageSize,
		logger:   logger,
	}
}

// ListPage returns one page of the user's expenses in server order.
func (s *Service) ListPage(ctx context.Context, skip, limit int) ([]Expense, error) {
	path := fmt.Sprintf("%s?skip=%d&limit=%d", PathExpenses, skip, limit)
	resp, err := s.api.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var raw []expenseDatamodel.Expense
	if err := gateway.Decode(resp, &raw); err != nil {
		s.logger.Error("failed to list expenses", "error", err, "skip", skip)
		return nil, err
	}
	return FromDataModelSlice(raw), nil
}

// List walks every page until the server returns a short one.
func (s *Service) List(ctx context.Context) ([]Expense, error) {
	var all []Expense
	for skip := 0; ; skip += s.pageSize {
		page, err := s.ListPage(ctx, skip, s.pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < s.pageSize {
			break
		}
	}

	s.logger.Debug("retrieved expenses", "count", len(all))
	if all == nil {
		all = []Expense{}
	}
	return all, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Expense, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, itemPath(id), nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrExpenseNotFound
	}

	var raw expenseDatamodel.Expense
	if err := gateway.Decode(resp, &raw); err != nil {
		return nil, err
	}
	out := FromDataModel(&raw)
	return &out, nil
}

func (s *Service) Create(ctx context.Context, dto ExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.api.Do(ctx, http.MethodPost, PathExpenses, dto.toInput())
	if err != nil {
		return nil, err
	}

	var raw expenseDatamodel.Expense
	if err := gateway.Decode(resp, &raw); err != nil {
		s.logger.Error("failed to create expense", "error", err)
		return nil, err
	}

	created := FromDataModel(&raw)
	s.logger.Info("expense created",
		"expense_id", created.ID,
		"amount", created.Amount.String(),
		"category_id", created.CategoryID)
	return &created, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto ExpenseDTO) (*Expense, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.api.Do(ctx, http.MethodPut, itemPath(id), dto.toInput())
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrExpenseNotFound
	}

	var raw expenseDatamodel.Expense
	if err := gateway.Decode(resp, &raw); err != nil {
		s.logger.Error("failed to update expense", "error", err, "expense_id", id)
		return nil, err
	}

	updated := FromDataModel(&raw)
	s.logger.Info("expense updated", "expense_id", id)
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	resp, err := s.api.Do(ctx, http.MethodDelete, itemPath(id), nil)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return ErrExpenseNotFound
	}
	if err := gateway.Decode(resp, nil); err != nil {
		s.logger.Error("failed to delete expense", "error", err, "expense_id", id)
		return err
	}

	s.logger.Info("expense deleted", "expense_id", id)
	return nil
}

func itemPath(id int64) string {
	return fmt.Sprintf("%s%d", PathExpenses, id)
}
