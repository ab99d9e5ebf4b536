package inventory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailom-erp/mailom-erp/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	List(ctx context.Context, filters ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, p Product) (int64, error)
	CreateBatch(ctx context.Context, products []Product) ([]int64, error)
	Update(ctx context.Context, id int64, p Product) error
	SetStatus(ctx context.Context, id int64, status Status) error
	MarkDeadBefore(ctx context.Context, cutoff time.Time) ([]int64, error)
}

// InvalidationPort bumps analytics cache versions after writes.
type InvalidationPort interface {
	Invalidate(ctx context.Context) error
}

// Service manages tree stock.
type Service struct {
	repo       RepositoryPort
	audit      *shared.AuditLogger
	invalidate InvalidationPort
}

// NewService constructs the service.
func NewService(repo RepositoryPort, audit *shared.AuditLogger, invalidate InvalidationPort) *Service {
	return &Service{repo: repo, audit: audit, invalidate: invalidate}
}

// CreateInput describes a single product registration.
type CreateInput struct {
	Code        string
	Name        string
	Description string
	HeightM     float64
	TrunkSizeCm float64
	PotWidthM   float64
	PotHeightM  float64
	Location    string
	Cost        float64
	Price       float64
	PurchaseID  int64
	GardenID    int64
	ActorID     int64
}

// BatchInput creates N products out of one purchase, dividing the declared
// total cost evenly across the units.
type BatchInput struct {
	PurchaseID int64
	GardenID   int64
	TotalCost  float64
	Name       string
	CodePrefix string
	Count      int
	Price      float64
	Location   string
	ActorID    int64
}

// List returns products in scope.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	return s.repo.List(ctx, filters)
}

// Get returns one product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, ErrValidation
	}
	return s.repo.Get(ctx, id)
}

// Create registers a single product. The cost is stored as entered; it is a
// snapshot and stays untouched by later purchase edits.
func (s *Service) Create(ctx context.Context, input CreateInput) (Product, error) {
	input.Code = strings.TrimSpace(input.Code)
	input.Name = strings.TrimSpace(input.Name)
	if input.Code == "" || input.Name == "" {
		return Product{}, fmt.Errorf("%w: code and name are required", ErrValidation)
	}
	if input.Cost < 0 || input.Price < 0 {
		return Product{}, fmt.Errorf("%w: cost and price must not be negative", ErrValidation)
	}

	id, err := s.repo.Create(ctx, Product{
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		HeightM:     input.HeightM,
		TrunkSizeCm: input.TrunkSizeCm,
		PotWidthM:   input.PotWidthM,
		PotHeightM:  input.PotHeightM,
		Location:    input.Location,
		Cost:        shared.SafeAmount(input.Cost),
		Price:       shared.SafeAmount(input.Price),
		Status:      StatusAvailable,
		PurchaseID:  input.PurchaseID,
		GardenID:    input.GardenID,
	})
	if err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, input.ActorID, "PRODUCT_CREATE", id, map[string]any{"code": input.Code})
	s.bumpAnalytics(ctx)
	return s.repo.Get(ctx, id)
}

// CreateBatch registers Count products from one purchase. Each unit gets
// cost = TotalCost / Count, zero-guarded, with codes <prefix>-001 onwards.
func (s *Service) CreateBatch(ctx context.Context, input BatchInput) ([]Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.CodePrefix = strings.TrimSpace(input.CodePrefix)
	if input.Name == "" || input.CodePrefix == "" {
		return nil, fmt.Errorf("%w: name and code prefix are required", ErrValidation)
	}
	if input.Count <= 0 {
		return nil, fmt.Errorf("%w: count must be positive", ErrValidation)
	}
	if input.PurchaseID <= 0 {
		return nil, fmt.Errorf("%w: purchase is required", ErrValidation)
	}

	unitCost := shared.SafeDivide(shared.SafeAmount(input.TotalCost), float64(input.Count))
	batch := make([]Product, 0, input.Count)
	for i := 1; i <= input.Count; i++ {
		batch = append(batch, Product{
			Code:       fmt.Sprintf("%s-%03d", input.CodePrefix, i),
			Name:       input.Name,
			Location:   input.Location,
			Cost:       unitCost,
			Price:      shared.SafeAmount(input.Price),
			Status:     StatusAvailable,
			PurchaseID: input.PurchaseID,
			GardenID:   input.GardenID,
		})
	}

	ids, err := s.repo.CreateBatch(ctx, batch)
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, input.ActorID, "PRODUCT_BATCH_CREATE", input.PurchaseID, map[string]any{
		"count": input.Count, "unitCost": unitCost,
	})
	s.bumpAnalytics(ctx)

	products := make([]Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}

// Update rewrites descriptive fields. Cost is deliberately not updatable
// here, so the creation-time snapshot stays intact.
func (s *Service) Update(ctx context.Context, id int64, input CreateInput) (Product, error) {
	if id <= 0 {
		return Product{}, ErrValidation
	}
	input.Code = strings.TrimSpace(input.Code)
	input.Name = strings.TrimSpace(input.Name)
	if input.Code == "" || input.Name == "" {
		return Product{}, fmt.Errorf("%w: code and name are required", ErrValidation)
	}
	if input.Price < 0 {
		return Product{}, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	err := s.repo.Update(ctx, id, Product{
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		HeightM:     input.HeightM,
		TrunkSizeCm: input.TrunkSizeCm,
		PotWidthM:   input.PotWidthM,
		PotHeightM:  input.PotHeightM,
		Location:    input.Location,
		Price:       shared.SafeAmount(input.Price),
		GardenID:    input.GardenID,
	})
	if err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, input.ActorID, "PRODUCT_UPDATE", id, map[string]any{"code": input.Code})
	s.bumpAnalytics(ctx)
	return s.repo.Get(ctx, id)
}

// ChangeStatus applies a manual status transition.
func (s *Service) ChangeStatus(ctx context.Context, id int64, to Status, actorID int64) error {
	if id <= 0 {
		return ErrValidation
	}
	if !ValidStatus(to) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, to)
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !CanTransition(current.Status, to) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, to)
	}
	if current.Status == to {
		return nil
	}
	if err := s.repo.SetStatus(ctx, id, to); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "PRODUCT_STATUS", id, map[string]any{
		"from": current.Status, "to": to,
	})
	s.bumpAnalytics(ctx)
	return nil
}

// MarkSold transitions a product to SOLD on behalf of a completed sale.
// Sales completion bypasses the manual transition table.
func (s *Service) MarkSold(ctx context.Context, id int64) error {
	return s.repo.SetStatus(ctx, id, StatusSold)
}

// Release puts a sold or reserved product back on the shelf, used when a
// sale is cancelled and the tree becomes available for resale.
func (s *Service) Release(ctx context.Context, id int64) error {
	return s.repo.SetStatus(ctx, id, StatusAvailable)
}

// WriteOffStale marks long-unsold available stock as dead and returns how
// many products were written off.
func (s *Service) WriteOffStale(ctx context.Context, olderThan time.Duration) (int, error) {
	ids, err := s.repo.MarkDeadBefore(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	if len(ids) > 0 {
		s.recordAudit(ctx, 0, "PRODUCT_DEAD_SCAN", ids[0], map[string]any{"count": len(ids)})
		s.bumpAnalytics(ctx)
	}
	return len(ids), nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "product",
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
