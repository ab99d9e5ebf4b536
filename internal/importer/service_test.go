package importer

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryTx struct {
	categories map[string]int64
	gardens    map[string]int64
	purchases  []string
	costLines  map[string]float64
	products   []string
	nextID     int64
}

func newMemoryTx() *memoryTx {
	return &memoryTx{
		categories: make(map[string]int64),
		gardens:    make(map[string]int64),
		costLines:  make(map[string]float64),
		nextID:     1,
	}
}

func (m *memoryTx) EnsureCostCategory(ctx context.Context, name, nameEn string) (int64, error) {
	if id, ok := m.categories[name]; ok {
		return id, nil
	}
	m.nextID++
	m.categories[name] = m.nextID
	return m.nextID, nil
}

func (m *memoryTx) EnsureGarden(ctx context.Context, name string) (int64, error) {
	if id, ok := m.gardens[name]; ok {
		return id, nil
	}
	m.nextID++
	m.gardens[name] = m.nextID
	return m.nextID, nil
}

func (m *memoryTx) InsertPurchase(ctx context.Context, code string, gardenID int64, at time.Time, ref string, total float64) (int64, error) {
	m.purchases = append(m.purchases, code)
	m.nextID++
	return m.nextID, nil
}

func (m *memoryTx) InsertCostLine(ctx context.Context, purchaseID, categoryID int64, amount float64, description string) error {
	m.costLines[description] = amount
	return nil
}

func (m *memoryTx) InsertProduct(ctx context.Context, purchaseID, gardenID int64, code string, tree TreeRow) error {
	m.products = append(m.products, code)
	return nil
}

type memoryRepo struct {
	tx *memoryTx
}

func (m *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, m.tx)
}

type stubInvalidator struct {
	bumps int
}

func (s *stubInvalidator) Invalidate(ctx context.Context) error {
	s.bumps++
	return nil
}

func TestImportPersistsPlan(t *testing.T) {
	repo := &memoryRepo{tx: newMemoryTx()}
	bumper := &stubInvalidator{}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, nil, bumper)

	reader := buildWorkbook(t, map[string][][]any{
		"สวนพี่ทิต": {
			{"ชื่อต้นไม้", "ราคา", "ค่าขนส่ง", "ต้นทุน/ต้น", "วันลงไม้"},
			{"ตะแบก", 30000, 2500, 32500, "2568-01-15"},
			{"มะขาม", 20000, 2000, 22000, "2568-01-15"},
		},
	})

	result, err := svc.Import(context.Background(), reader, 42)
	require.NoError(t, err)
	require.Equal(t, 1, result.Gardens)
	require.Equal(t, 1, result.Purchases)
	require.Equal(t, 2, result.Products)
	require.Equal(t, 2, result.CostLines)
	require.Equal(t, 1, bumper.bumps)

	require.Contains(t, repo.tx.gardens, "สวนพี่ทิต")
	require.Len(t, repo.tx.purchases, 1)
	// Every seeded category exists even if this workbook never used it.
	require.Len(t, repo.tx.categories, len(costCategorySeed))
}

func TestPreviewWritesNothing(t *testing.T) {
	repo := &memoryRepo{tx: newMemoryTx()}
	svc := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)), repo, nil, nil)

	reader := buildWorkbook(t, map[string][][]any{
		"สวนมีสุข": {
			{"ชื่อต้นไม้", "ราคา"},
			{"ยางนา", 1200},
		},
	})

	plan, err := svc.Preview(context.Background(), reader)
	require.NoError(t, err)
	require.Equal(t, 1, plan.TreeCount)
	require.Empty(t, repo.tx.purchases)
	require.Empty(t, repo.tx.gardens)
}
