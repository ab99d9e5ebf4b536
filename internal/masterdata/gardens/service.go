package gardens

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Garden, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Garden, error) {
	if id <= 0 {
		return Garden{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, garden Garden) (Garden, error) {
	if err := s.validate(&garden); err != nil {
		return Garden{}, err
	}
	return s.repo.Create(ctx, garden)
}

func (s *Service) Update(ctx context.Context, id int64, garden Garden) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := s.validate(&garden); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, garden)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) validate(garden *Garden) error {
	garden.Name = strings.TrimSpace(garden.Name)
	if garden.Name == "" {
		return fmt.Errorf("%w: garden name is required", shared.ErrValidation)
	}
	if garden.Kind == "" {
		garden.Kind = KindSupplier
	}
	if !ValidKind(garden.Kind) {
		return fmt.Errorf("%w: unknown garden kind %q", shared.ErrValidation, garden.Kind)
	}
	return nil
}
