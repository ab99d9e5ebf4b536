package costcategories

import (
	"context"
	"fmt"
	"strings"

	"github.com/mailom-erp/mailom-erp/internal/masterdata/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, includeInactive bool) ([]CostCategory, error) {
	return s.repo.List(ctx, includeInactive)
}

func (s *Service) Get(ctx context.Context, id int64) (CostCategory, error) {
	if id <= 0 {
		return CostCategory{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, category CostCategory) (CostCategory, error) {
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return CostCategory{}, fmt.Errorf("%w: category name is required", shared.ErrValidation)
	}
	return s.repo.Create(ctx, category)
}

func (s *Service) Update(ctx context.Context, id int64, category CostCategory) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	category.Name = strings.TrimSpace(category.Name)
	if category.Name == "" {
		return fmt.Errorf("%w: category name is required", shared.ErrValidation)
	}
	return s.repo.Update(ctx, id, category)
}

func (s *Service) Remove(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Remove(ctx, id)
}
