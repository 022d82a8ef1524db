package category

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	categoryDatamodel "github.com/frahmantamala/expense-tracker-client/internal/core/datamodel/category"
	"github.com/frahmantamala/expense-tracker-client/internal/gateway"
)

const PathCategories = "/api/expenses/categories/"

// DefaultPageSize matches the API's own default limit.
const DefaultPageSize = 100

// PublicAPI sends calls that need no credential.
type PublicAPI interface {
	DoPublic(ctx context.Context, method, path string, body any) (*http.Response, error)
}

type Service struct {
	api      PublicAPI
	pageSize int
	logger   *slog.Logger
}

func NewService(api PublicAPI, logger *slog.Logger) *Service {
	return &Service{
		api:      api,
		pageSize: DefaultPageSize,
		logger:   logger,
	}
}

func (s *Service) ListPage(ctx context.Context, skip, limit int) ([]Category, error) {
	resp, err := s.api.DoPublic(ctx, http.MethodGet, fmt.Sprintf("%s?skip=%d&limit=%d", PathCategories, skip, limit), nil)
	if err != nil {
		return nil, err
	}

	var raw []categoryDatamodel.Category
	if err := gateway.Decode(resp, &raw); err != nil {
		s.logger.Error("failed to get categories", "error", err, "skip", skip)
		return nil, err
	}
	return FromDataModelSlice(raw), nil
}

// List walks every page until the server returns a short one.
func (s *Service) List(ctx context.Context) ([]Category, error) {
	all := []Category{}
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

	s.logger.Debug("retrieved categories", "count", len(all))
	return all, nil
}

// Resolve finds a category by id or case-insensitive name.
func (s *Service) Resolve(ctx context.Context, ref string) (Category, error) {
	categories, err := s.List(ctx)
	if err != nil {
		return Category{}, err
	}

	if id, parseErr := strconv.ParseInt(strings.TrimSpace(ref), 10, 64); parseErr == nil {
		if c, ok := Find(categories, id); ok {
			return c, nil
		}
	}
	for _, c := range categories {
		if strings.EqualFold(c.Name, strings.TrimSpace(ref)) {
			return c, nil
		}
	}
	return Category{}, fmt.Errorf("unknown category %q", ref)
}
