package customers

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters, typ string) ([]Customer, int, error) {
	return s.repo.List(ctx, filters, typ)
}

func (s *Service) Get(ctx context.Context, id int64) (Customer, error) {
	if id <= 0 {
		return Customer{}, shared.ErrInvalidID
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, c Customer) (Customer, error) {
	if err := validate(&c); err != nil {
		return Customer{}, err
	}
	return s.repo.Create(ctx, c)
}

func (s *Service) Update(ctx context.Context, id int64, c Customer) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	if err := validate(&c); err != nil {
		return err
	}
	return s.repo.Update(ctx, id, c)
}

func (s *Service) Deactivate(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.ErrInvalidID
	}
	return s.repo.Deactivate(ctx, id)
}

func validate(c *Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("%w: customer name is required", shared.ErrValidation)
	}
	if c.Type == "" {
		c.Type = TypeCustomer
	}
	switch c.Type {
	case TypeCustomer, TypeSupplier, TypeOther:
	default:
		return fmt.Errorf("%w: unknown contact type %q", shared.ErrValidation, c.Type)
	}
	return nil
}
