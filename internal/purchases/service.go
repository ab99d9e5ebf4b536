package purchases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mailom-erp/mailom-erp/internal/shared"
)

// RepositoryPort describes repository operations used by Service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	List(ctx context.Context, filters ListFilters) ([]Purchase, map[int64][]CostLine, map[int64][]ProductRef, int, error)
	Get(ctx context.Context, id int64) (Purchase, []CostLine, []ProductRef, error)
	CodeExists(ctx context.Context, code string, excludeID int64) (bool, error)
}

// InvalidationPort bumps analytics cache versions after writes.
type InvalidationPort interface {
	Invalidate(ctx context.Context) error
}

// Service orchestrates the purchase lifecycle.
type Service struct {
	repo       RepositoryPort
	audit      *shared.AuditLogger
	invalidate InvalidationPort
}

// NewService constructs the service.
func NewService(repo RepositoryPort, audit *shared.AuditLogger, invalidate InvalidationPort) *Service {
	return &Service{repo: repo, audit: audit, invalidate: invalidate}
}

// CostLineInput is one breakdown line on create/update payloads.
type CostLineInput struct {
	CategoryID  int64
	Amount      float64
	Description string
}

// CreateInput describes a new purchase.
type CreateInput struct {
	Code          string
	GardenID      int64
	DestinationID int64
	SupplierRef   string
	PurchaseDate  time.Time
	TotalCost     float64
	Status        Status
	Note          string
	CostLines     []CostLineInput
	ActorID       int64
}

// UpdateInput mirrors CreateInput for edits. The cost breakdown is replaced
// wholesale with the submitted lines.
type UpdateInput = CreateInput

// Detail bundles a purchase with its lines, products and derived metrics.
type Detail struct {
	Purchase  Purchase     `json:"purchase"`
	CostLines []CostLine   `json:"productCosts"`
	Products  []ProductRef `json:"products"`
	Metrics   Metrics      `json:"metrics"`
}

// List returns purchases in scope with metrics attached to each.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Detail, int, error) {
	purchases, lines, products, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, 0, err
	}
	details := make([]Detail, 0, len(purchases))
	for _, p := range purchases {
		details = append(details, Detail{
			Purchase:  p,
			CostLines: lines[p.ID],
			Products:  products[p.ID],
			Metrics:   ComputeMetrics(p, lines[p.ID], products[p.ID]),
		})
	}
	return details, total, nil
}

// Get returns one purchase with its full breakdown and metrics.
func (s *Service) Get(ctx context.Context, id int64) (Detail, error) {
	if id <= 0 {
		return Detail{}, ErrValidation
	}
	p, lines, products, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	return Detail{
		Purchase:  p,
		CostLines: lines,
		Products:  products,
		Metrics:   ComputeMetrics(p, lines, products),
	}, nil
}

// Create persists a purchase and its cost breakdown in one transaction.
func (s *Service) Create(ctx context.Context, input CreateInput) (Detail, error) {
	if err := s.validate(&input); err != nil {
		return Detail{}, err
	}
	taken, err := s.repo.CodeExists(ctx, input.Code, 0)
	if err != nil {
		return Detail{}, err
	}
	if taken {
		return Detail{}, ErrDuplicateCode
	}

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err = tx.CreatePurchase(ctx, Purchase{
			Code:          input.Code,
			GardenID:      input.GardenID,
			DestinationID: input.DestinationID,
			SupplierRef:   input.SupplierRef,
			PurchaseDate:  input.PurchaseDate,
			TotalCost:     input.TotalCost,
			Status:        input.Status,
			Note:          input.Note,
		})
		if err != nil {
			return err
		}
		return s.insertLines(ctx, tx, id, input.CostLines)
	})
	if err != nil {
		return Detail{}, err
	}

	s.recordAudit(ctx, input.ActorID, "PURCHASE_CREATE", id, map[string]any{
		"code": input.Code, "totalCost": input.TotalCost,
	})
	s.bumpAnalytics(ctx)
	return s.Get(ctx, id)
}

// Update rewrites the purchase header and replaces the entire cost
// breakdown with the submitted lines.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) (Detail, error) {
	if id <= 0 {
		return Detail{}, ErrValidation
	}
	if err := s.validate(&input); err != nil {
		return Detail{}, err
	}
	taken, err := s.repo.CodeExists(ctx, input.Code, id)
	if err != nil {
		return Detail{}, err
	}
	if taken {
		return Detail{}, ErrDuplicateCode
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.UpdatePurchase(ctx, id, Purchase{
			Code:          input.Code,
			GardenID:      input.GardenID,
			DestinationID: input.DestinationID,
			SupplierRef:   input.SupplierRef,
			PurchaseDate:  input.PurchaseDate,
			TotalCost:     input.TotalCost,
			Status:        input.Status,
			Note:          input.Note,
		}); err != nil {
			return err
		}
		if err := tx.DeleteCostLines(ctx, id); err != nil {
			return err
		}
		return s.insertLines(ctx, tx, id, input.CostLines)
	})
	if err != nil {
		return Detail{}, err
	}

	s.recordAudit(ctx, input.ActorID, "PURCHASE_UPDATE", id, map[string]any{
		"code": input.Code, "totalCost": input.TotalCost, "costLines": len(input.CostLines),
	})
	s.bumpAnalytics(ctx)
	return s.Get(ctx, id)
}

// Delete removes a purchase that has no products attached.
func (s *Service) Delete(ctx context.Context, id int64, actorID int64) error {
	if id <= 0 {
		return ErrValidation
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		count, err := tx.CountProducts(ctx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrHasProducts
		}
		return tx.DeletePurchase(ctx, id)
	})
	if err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "PURCHASE_DELETE", id, nil)
	s.bumpAnalytics(ctx)
	return nil
}

func (s *Service) insertLines(ctx context.Context, tx TxRepository, purchaseID int64, lines []CostLineInput) error {
	for _, line := range lines {
		if err := tx.InsertCostLine(ctx, CostLine{
			PurchaseID:  purchaseID,
			CategoryID:  line.CategoryID,
			Amount:      line.Amount,
			Description: line.Description,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) validate(input *CreateInput) error {
	input.Code = strings.TrimSpace(input.Code)
	if input.Code == "" {
		return fmt.Errorf("%w: purchase code is required", ErrValidation)
	}
	if input.GardenID <= 0 {
		return fmt.Errorf("%w: garden is required", ErrValidation)
	}
	if input.PurchaseDate.IsZero() {
		return fmt.Errorf("%w: purchase date is required", ErrValidation)
	}
	if input.TotalCost < 0 {
		return fmt.Errorf("%w: total cost must not be negative", ErrValidation)
	}
	if input.Status == "" {
		input.Status = StatusPending
	}
	if !ValidStatus(input.Status) {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, input.Status)
	}
	for _, line := range input.CostLines {
		if line.CategoryID <= 0 {
			return fmt.Errorf("%w: cost line category is required", ErrValidation)
		}
		if line.Amount < 0 {
			return fmt.Errorf("%w: cost line amount must not be negative", ErrValidation)
		}
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, entityID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "purchase",
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
