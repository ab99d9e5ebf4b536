package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mailom-erp/mailom-erp/internal/shared"
)

// InvalidationPort bumps the analytics cache after a successful import.
type InvalidationPort interface {
	Invalidate(ctx context.Context) error
}

// RepositoryPort abstracts persistence for tests.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// Result reports what an import created.
type Result struct {
	Gardens   int `json:"gardens"`
	Purchases int `json:"purchases"`
	CostLines int `json:"costLines"`
	Products  int `json:"products"`
	Dropped   int `json:"droppedRows"`
}

// Service parses nursery workbooks and loads them into the database.
type Service struct {
	logger     *slog.Logger
	repo       RepositoryPort
	audit      *shared.AuditLogger
	invalidate InvalidationPort
}

// NewService constructs the import service.
func NewService(logger *slog.Logger, repo RepositoryPort, audit *shared.AuditLogger, invalidate InvalidationPort) *Service {
	return &Service{logger: logger, repo: repo, audit: audit, invalidate: invalidate}
}

// Preview parses the workbook and returns the plan without writing
// anything. This backs the dry-run mode of the endpoint.
func (s *Service) Preview(ctx context.Context, reader io.Reader) (Plan, error) {
	rows, dropped, err := ParseWorkbook(reader)
	if err != nil {
		return Plan{}, err
	}
	return BuildPlan(rows, dropped), nil
}

// Import parses the workbook and persists gardens, purchases, cost lines
// and products in one transaction.
func (s *Service) Import(ctx context.Context, reader io.Reader, actorID int64) (Result, error) {
	plan, err := s.Preview(ctx, reader)
	if err != nil {
		return Result{}, err
	}
	result := Result{Dropped: plan.DroppedRows}

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		categoryIDs := make(map[string]int64, len(costCategorySeed))
		for _, c := range costCategorySeed {
			id, err := tx.EnsureCostCategory(ctx, c.Name, c.NameEn)
			if err != nil {
				return fmt.Errorf("importer: ensure category %q: %w", c.Name, err)
			}
			categoryIDs[c.Name] = id
		}

		gardenIDs := make(map[string]int64)
		for _, name := range plan.Gardens {
			id, err := tx.EnsureGarden(ctx, name)
			if err != nil {
				return fmt.Errorf("importer: ensure garden %q: %w", name, err)
			}
			gardenIDs[name] = id
			result.Gardens++
		}

		for _, purchase := range plan.Purchases {
			purchaseID, err := tx.InsertPurchase(ctx, purchase.Code,
				gardenIDs[purchase.GardenName], purchase.Date, purchase.SupplierRef, purchase.TotalCost)
			if err != nil {
				return fmt.Errorf("importer: purchase %q: %w", purchase.Code, err)
			}
			result.Purchases++

			for name, amount := range purchase.CostSummary {
				categoryID, ok := categoryIDs[name]
				if !ok {
					continue
				}
				description := name + " สำหรับการซื้อ " + purchase.Code
				if err := tx.InsertCostLine(ctx, purchaseID, categoryID, amount, description); err != nil {
					return fmt.Errorf("importer: cost line %q: %w", name, err)
				}
				result.CostLines++
			}

			for i, tree := range purchase.Trees {
				code := productCode(tree, purchase.Code, i+1)
				if err := tx.InsertProduct(ctx, purchaseID, gardenIDs[purchase.GardenName], code, tree); err != nil {
					return fmt.Errorf("importer: product %q: %w", code, err)
				}
				result.Products++
			}
		}
		return nil
	})
	if err != nil {
		return Result{}, err
	}

	s.logger.InfoContext(ctx, "excel import completed",
		slog.Int("purchases", result.Purchases),
		slog.Int("products", result.Products),
		slog.Int("dropped", result.Dropped))

	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID: actorID,
			Action:  "EXCEL_IMPORT",
			Entity:  "purchase",
			Meta: map[string]any{
				"purchases": result.Purchases,
				"products":  result.Products,
			},
		})
	}
	if s.invalidate != nil {
		_ = s.invalidate.Invalidate(ctx)
	}
	return result, nil
}

// ImportFile runs Import against a file on disk. The background task uses
// this after the upload has been spooled.
func (s *Service) ImportFile(ctx context.Context, path string, actorID int64) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("importer: open %s: %w", path, err)
	}
	defer f.Close()
	return s.Import(ctx, f, actorID)
}
