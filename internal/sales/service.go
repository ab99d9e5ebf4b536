package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/mailom-erp/mailom-erp/internal/inventory"
	"github.com/mailom-erp/mailom-erp/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters) ([]Sale, int, error)
	Get(ctx context.Context, id int64) (Sale, error)
	Create(ctx context.Context, s Sale) (int64, error)
	SetStatus(ctx context.Context, id int64, status Status) error
}

// InventoryPort is the stock integration a sale drives.
type InventoryPort interface {
	Get(ctx context.Context, id int64) (inventory.Product, error)
	MarkSold(ctx context.Context, id int64) error
	Release(ctx context.Context, id int64) error
}

// InvalidationPort bumps analytics cache versions after writes.
type InvalidationPort interface {
	Invalidate(ctx context.Context) error
}

// Service orchestrates the sale lifecycle.
type Service struct {
	repo       RepositoryPort
	stock      InventoryPort
	audit      *shared.AuditLogger
	invalidate InvalidationPort
}

// NewService constructs the service.
func NewService(repo RepositoryPort, stock InventoryPort, audit *shared.AuditLogger, invalidate InvalidationPort) *Service {
	return &Service{repo: repo, stock: stock, audit: audit, invalidate: invalidate}
}

// CreateInput describes a new sale. The realized amount is always derived
// as price + shipping + installation + other add-ons, never accepted from
// the client.
type CreateInput struct {
	ProductID    int64
	CustomerID   int64
	SaleDate     time.Time
	Price        float64
	Shipping     float64
	Installation float64
	OtherCosts   float64
	Status       Status
	Note         string
	ActorID      int64
}

// RealizedAmount sums the sale components, coercing malformed values to zero.
func (in CreateInput) RealizedAmount() float64 {
	return shared.SafeAmount(in.Price) + shared.SafeAmount(in.Shipping) +
		shared.SafeAmount(in.Installation) + shared.SafeAmount(in.OtherCosts)
}

// List returns sales in scope.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Sale, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one sale.
func (s *Service) Get(ctx context.Context, id int64) (Sale, error) {
	if id <= 0 {
		return Sale{}, ErrValidation
	}
	return s.repo.Get(ctx, id)
}

// Create records a sale against an available product. Creating a sale as
// COMPLETED immediately marks the product sold.
func (s *Service) Create(ctx context.Context, input CreateInput) (Sale, error) {
	if input.ProductID <= 0 || input.CustomerID <= 0 {
		return Sale{}, fmt.Errorf("%w: product and customer are required", ErrValidation)
	}
	if input.Price < 0 || input.Shipping < 0 || input.Installation < 0 || input.OtherCosts < 0 {
		return Sale{}, fmt.Errorf("%w: amounts must not be negative", ErrValidation)
	}
	if input.SaleDate.IsZero() {
		input.SaleDate = time.Now()
	}
	if input.Status == "" {
		input.Status = StatusPending
	}
	if !ValidStatus(input.Status) || input.Status == StatusCancelled {
		return Sale{}, fmt.Errorf("%w: cannot create a sale as %q", ErrValidation, input.Status)
	}

	product, err := s.stock.Get(ctx, input.ProductID)
	if err != nil {
		return Sale{}, err
	}
	if product.Status != inventory.StatusAvailable && product.Status != inventory.StatusReserved {
		return Sale{}, fmt.Errorf("%w: product %s is %s", ErrProductUnavailable, product.Code, product.Status)
	}

	id, err := s.repo.Create(ctx, Sale{
		ProductID:      input.ProductID,
		CustomerID:     input.CustomerID,
		SaleDate:       input.SaleDate,
		Price:          input.Price,
		Shipping:       input.Shipping,
		Installation:   input.Installation,
		OtherCosts:     input.OtherCosts,
		RealizedAmount: input.RealizedAmount(),
		Status:         input.Status,
		Note:           input.Note,
	})
	if err != nil {
		return Sale{}, err
	}

	if input.Status == StatusCompleted {
		if err := s.stock.MarkSold(ctx, input.ProductID); err != nil {
			return Sale{}, err
		}
	}

	s.recordAudit(ctx, input.ActorID, "SALE_CREATE", id, map[string]any{
		"productId": input.ProductID, "realizedAmount": input.RealizedAmount(),
	})
	s.bumpAnalytics(ctx)
	return s.repo.Get(ctx, id)
}

// Complete marks a pending sale as realized and its product as sold.
func (s *Service) Complete(ctx context.Context, id int64, actorID int64) (Sale, error) {
	sale, err := s.repo.Get(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	if sale.Status != StatusPending {
		return Sale{}, fmt.Errorf("%w: only pending sales can be completed", ErrInvalidState)
	}
	if err := s.repo.SetStatus(ctx, id, StatusCompleted); err != nil {
		return Sale{}, err
	}
	if err := s.stock.MarkSold(ctx, sale.ProductID); err != nil {
		return Sale{}, err
	}
	s.recordAudit(ctx, actorID, "SALE_COMPLETE", id, nil)
	s.bumpAnalytics(ctx)
	return s.repo.Get(ctx, id)
}

// Cancel voids a sale and puts the product back on the shelf so it can be
// sold again. A resold product keeps its cancelled sale rows; only the
// completed ones ever count as revenue.
func (s *Service) Cancel(ctx context.Context, id int64, actorID int64) (Sale, error) {
	sale, err := s.repo.Get(ctx, id)
	if err != nil {
		return Sale{}, err
	}
	if sale.Status == StatusCancelled {
		return Sale{}, fmt.Errorf("%w: sale is already cancelled", ErrInvalidState)
	}
	if err := s.repo.SetStatus(ctx, id, StatusCancelled); err != nil {
		return Sale{}, err
	}
	if err := s.stock.Release(ctx, sale.ProductID); err != nil {
		return Sale{}, err
	}
	s.recordAudit(ctx, actorID, "SALE_CANCEL", id, nil)
	s.bumpAnalytics(ctx)
	return s.repo.Get(ctx, id)
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "sale",
		EntityID: fmt.Sprintf("%d", entityID),
		Meta:     meta,
	})
}

func (s *Service) bumpAnalytics(ctx context.Context) {
	if s.invalidate == nil {
		return
	}
	_ = s.invalidate.Invalidate(ctx)
}
