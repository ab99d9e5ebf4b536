package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	purchases map[int64]Purchase
	lines     map[int64][]CostLine
	products  map[int64][]ProductRef
	nextID    int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		purchases: make(map[int64]Purchase),
		lines:     make(map[int64][]CostLine),
		products:  make(map[int64][]ProductRef),
	}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Purchase, map[int64][]CostLine, map[int64][]ProductRef, int, error) {
	var out []Purchase
	for _, p := range r.purchases {
		if filters.GardenID > 0 && p.GardenID != filters.GardenID {
			continue
		}
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		out = append(out, p)
	}
	return out, r.lines, r.products, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Purchase, []CostLine, []ProductRef, error) {
	p, ok := r.purchases[id]
	if !ok {
		return Purchase{}, nil, nil, ErrNotFound
	}
	return p, append([]CostLine(nil), r.lines[id]...), append([]ProductRef(nil), r.products[id]...), nil
}

func (r *memoryRepo) CodeExists(ctx context.Context, code string, excludeID int64) (bool, error) {
	for id, p := range r.purchases {
		if p.Code == code && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memoryTx) CreatePurchase(ctx context.Context, p Purchase) (int64, error) {
	tx.repo.nextID++
	p.ID = tx.repo.nextID
	tx.repo.purchases[p.ID] = p
	return p.ID, nil
}

func (tx *memoryTx) UpdatePurchase(ctx context.Context, id int64, p Purchase) error {
	if _, ok := tx.repo.purchases[id]; !ok {
		return ErrNotFound
	}
	p.ID = id
	tx.repo.purchases[id] = p
	return nil
}

func (tx *memoryTx) DeleteCostLines(ctx context.Context, purchaseID int64) error {
	delete(tx.repo.lines, purchaseID)
	return nil
}

func (tx *memoryTx) InsertCostLine(ctx context.Context, line CostLine) error {
	tx.repo.nextID++
	line.ID = tx.repo.nextID
	tx.repo.lines[line.PurchaseID] = append(tx.repo.lines[line.PurchaseID], line)
	return nil
}

func (tx *memoryTx) DeletePurchase(ctx context.Context, id int64) error {
	if _, ok := tx.repo.purchases[id]; !ok {
		return ErrNotFound
	}
	delete(tx.repo.purchases, id)
	delete(tx.repo.lines, id)
	return nil
}

func (tx *memoryTx) CountProducts(ctx context.Context, purchaseID int64) (int, error) {
	return len(tx.repo.products[purchaseID]), nil
}

func validInput() CreateInput {
	return CreateInput{
		Code:         "PO-2024-001",
		GardenID:     1,
		PurchaseDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		TotalCost:    42713,
		CostLines: []CostLineInput{
			{CategoryID: 1, Amount: 30000},
			{CategoryID: 2, Amount: 9000},
			{CategoryID: 3, Amount: 271},
			{CategoryID: 4, Amount: 800},
			{CategoryID: 5, Amount: 2500},
		},
	}
}

func TestCreatePurchasePersistsLinesAndMetrics(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	detail, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.Len(t, detail.CostLines, 5)
	require.Equal(t, StatusPending, detail.Purchase.Status)
	require.Equal(t, 42571.0, detail.Metrics.TotalCostFromBreakdown)
	require.Equal(t, 142.0, detail.Metrics.Variance)
}

func TestCreatePurchaseRejectsDuplicateCode(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), validInput())
	require.ErrorIs(t, err, ErrDuplicateCode)
}

func TestUpdateReplacesCostBreakdownWholesale(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	detail, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	input := validInput()
	input.TotalCost = 50000
	input.CostLines = []CostLineInput{{CategoryID: 1, Amount: 48000}}
	updated, err := svc.Update(context.Background(), detail.Purchase.ID, input)
	require.NoError(t, err)

	require.Len(t, updated.CostLines, 1)
	require.Equal(t, 48000.0, updated.Metrics.TotalCostFromBreakdown)
	require.Equal(t, 2000.0, updated.Metrics.Variance)
}

func TestDeleteBlockedWhenProductsExist(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	detail, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	repo.products[detail.Purchase.ID] = []ProductRef{{ID: 1, Code: "T-001"}}

	err = svc.Delete(context.Background(), detail.Purchase.ID, 1)
	require.ErrorIs(t, err, ErrHasProducts)

	_, err = svc.Get(context.Background(), detail.Purchase.ID)
	require.NoError(t, err)
}

func TestDeleteRemovesPurchaseWithoutProducts(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	detail, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), detail.Purchase.ID, 1))
	_, err = svc.Get(context.Background(), detail.Purchase.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	cases := []struct {
		name   string
		mutate func(*CreateInput)
	}{
		{"missing code", func(in *CreateInput) { in.Code = " " }},
		{"missing garden", func(in *CreateInput) { in.GardenID = 0 }},
		{"missing date", func(in *CreateInput) { in.PurchaseDate = time.Time{} }},
		{"negative total", func(in *CreateInput) { in.TotalCost = -1 }},
		{"unknown status", func(in *CreateInput) { in.Status = "SHIPPED" }},
		{"negative line amount", func(in *CreateInput) { in.CostLines[0].Amount = -5 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := validInput()
			tc.mutate(&input)
			_, err := svc.Create(context.Background(), input)
			require.ErrorIs(t, err, ErrValidation)
		})
	}
}
