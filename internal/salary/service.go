package salary

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	salaryDatamodel "github.com/frahmantamala/expense-tracker-client/internal/core/datamodel/salary"
	"github.com/frahmantamala/expense-tracker-client/internal/gateway"
)

const PathSalaries = "/api/salaries/"

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

func (s *Service) ListPage(ctx context.Context, skip, limit int) ([]Salary, error) {
	path := fmt.Sprintf("%s?skip=%d&limit=%d", PathSalaries, skip, limit)
	resp, err := s.api.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var raw []salaryDatamodel.Salary
	if err := gateway.Decode(resp, &raw); err != nil {
		s.logger.Error("failed to list salaries", "error", err, "skip", skip)
		return nil, err
	}
	return FromDataModelSlice(raw), nil
}

func (s *Service) List(ctx context.Context) ([]Salary, error) {
	all := []Salary{}
	for skip := 0; ; skip += s.pageSize {
		page, err := s.ListPage(ctx, skip, s.pageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < s.pageSize {
			return all, nil
		}
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Salary, error) {
	resp, err := s.api.Do(ctx, http.MethodGet, itemPath(id), nil)
	if err != nil {
		return nil, err
	}
	return s.decodeOne(resp)
}

func (s *Service) Create(ctx context.Context, dto SalaryDTO) (*Salary, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.api.Do(ctx, http.MethodPost, PathSalaries, dto.toInput())
	if err != nil {
		return nil, err
	}

	created, err := s.decodeOne(resp)
	if err != nil {
		s.logger.Error("failed to create salary", "error", err)
		return nil, err
	}
	s.logger.Info("salary created", "salary_id", created.ID, "amount", created.Amount.String())
	return created, nil
}

func (s *Service) Update(ctx context.Context, id int64, dto SalaryDTO) (*Salary, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	resp, err := s.api.Do(ctx, http.MethodPut, itemPath(id), dto.toInput())
	if err != nil {
		return nil, err
	}

	updated, err := s.decodeOne(resp)
	if err != nil {
		s.logger.Error("failed to update salary", "error", err, "salary_id", id)
		return nil, err
	}
	s.logger.Info("salary updated", "salary_id", id)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	resp, err := s.api.Do(ctx, http.MethodDelete, itemPath(id), nil)
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return ErrSalaryNotFound
	}
	if err := gateway.Decode(resp, nil); err != nil {
		s.logger.Error("failed to delete salary", "error", err, "salary_id", id)
		return err
	}
	s.logger.Info("salary deleted", "salary_id", id)
	return nil
}

func (s *Service) decodeOne(resp *http.Response) (*Salary, error) {
	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrSalaryNotFound
	}
	var raw salaryDatamodel.Salary
	if err := gateway.Decode(resp, &raw); err != nil {
		return nil, err
	}
	out := FromDataModel(&raw)
	return &out, nil
}

func itemPath(id int64) string {
	return fmt.Sprintf("%s%d", PathSalaries, id)
}
