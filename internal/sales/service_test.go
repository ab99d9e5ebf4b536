package sales

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mailom-erp/mailom-erp/internal/inventory"
)

type mockRepository struct {
	sales  map[int64]*Sale
	nextID int64
}

func newMockRepository() *mockRepository {
	return &mockRepository{sales: make(map[int64]*Sale)}
}

func (r *mockRepository) List(ctx context.Context, filters ListFilters) ([]Sale, int, error) {
	var out []Sale
	for _, s := range r.sales {
		if filters.Status != "" && s.Status != filters.Status {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (r *mockRepository) Get(ctx context.Context, id int64) (Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return Sale{}, ErrNotFound
	}
	return *s, nil
}

func (r *mockRepository) Create(ctx context.Context, s Sale) (int64, error) {
	r.nextID++
	s.ID = r.nextID
	r.sales[s.ID] = &s
	return s.ID, nil
}

func (r *mockRepository) SetStatus(ctx context.Context, id int64, status Status) error {
	s, ok := r.sales[id]
	if !ok {
		return ErrNotFound
	}
	s.Status = status
	return nil
}

type mockStock struct {
	products map[int64]inventory.Product
}

func newMockStock(products ...inventory.Product) *mockStock {
	m := &mockStock{products: make(map[int64]inventory.Product)}
	for _, p := range products {
		m.products[p.ID] = p
	}
	return m
}

func (m *mockStock) Get(ctx context.Context, id int64) (inventory.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return inventory.Product{}, inventory.ErrNotFound
	}
	return p, nil
}

func (m *mockStock) MarkSold(ctx context.Context, id int64) error {
	p := m.products[id]
	p.Status = inventory.StatusSold
	m.products[id] = p
	return nil
}

func (m *mockStock) Release(ctx context.Context, id int64) error {
	p := m.products[id]
	p.Status = inventory.StatusAvailable
	m.products[id] = p
	return nil
}

func availableProduct() inventory.Product {
	return inventory.Product{ID: 1, Code: "TB-001", Name: "Tabebuia", Cost: 3000, Status: inventory.StatusAvailable}
}

func TestCreateSaleDerivesRealizedAmount(t *testing.T) {
	repo := newMockRepository()
	stock := newMockStock(availableProduct())
	svc := NewService(repo, stock, nil, nil)

	sale, err := svc.Create(context.Background(), CreateInput{
		ProductID:    1,
		CustomerID:   2,
		SaleDate:     time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Price:        6000,
		Shipping:     400,
		Installation: 300,
		OtherCosts:   50,
	})
	require.NoError(t, err)
	require.Equal(t, 6750.0, sale.RealizedAmount)
	require.Equal(t, StatusPending, sale.Status)
	require.Equal(t, inventory.StatusAvailable, stock.products[1].Status)
}

func TestCreateCompletedSaleMarksProductSold(t *testing.T) {
	repo := newMockRepository()
	stock := newMockStock(availableProduct())
	svc := NewService(repo, stock, nil, nil)

	sale, err := svc.Create(context.Background(), CreateInput{
		ProductID: 1, CustomerID: 2, Price: 6000, Status: StatusCompleted,
	})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, sale.Status)
	require.Equal(t, inventory.StatusSold, stock.products[1].Status)
}

func TestCreateSaleRejectsUnavailableProduct(t *testing.T) {
	sold := availableProduct()
	sold.Status = inventory.StatusSold
	svc := NewService(newMockRepository(), newMockStock(sold), nil, nil)

	_, err := svc.Create(context.Background(), CreateInput{ProductID: 1, CustomerID: 2, Price: 100})
	require.ErrorIs(t, err, ErrProductUnavailable)
}

func TestCompletePendingSale(t *testing.T) {
	repo := newMockRepository()
	stock := newMockStock(availableProduct())
	svc := NewService(repo, stock, nil, nil)

	sale, err := svc.Create(context.Background(), CreateInput{ProductID: 1, CustomerID: 2, Price: 6000})
	require.NoError(t, err)

	completed, err := svc.Complete(context.Background(), sale.ID, 1)
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, completed.Status)
	require.Equal(t, inventory.StatusSold, stock.products[1].Status)

	_, err = svc.Complete(context.Background(), sale.ID, 1)
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelReleasesProductForResale(t *testing.T) {
	repo := newMockRepository()
	stock := newMockStock(availableProduct())
	svc := NewService(repo, stock, nil, nil)

	first, err := svc.Create(context.Background(), CreateInput{
		ProductID: 1, CustomerID: 2, Price: 6000, Status: StatusCompleted,
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), first.ID, 1)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.Equal(t, inventory.StatusAvailable, stock.products[1].Status)

	// The released tree can be sold again to somebody else.
	second, err := svc.Create(context.Background(), CreateInput{
		ProductID: 1, CustomerID: 3, Price: 6500, Status: StatusCompleted,
	})
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, second.Status)
}

func TestCreateSaleValidation(t *testing.T) {
	svc := NewService(newMockRepository(), newMockStock(availableProduct()), nil, nil)

	_, err := svc.Create(context.Background(), CreateInput{CustomerID: 2, Price: 100})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), CreateInput{ProductID: 1, CustomerID: 2, Price: -1})
	require.ErrorIs(t, err, ErrValidation)

	_, err = svc.Create(context.Background(), CreateInput{
		ProductID: 1, CustomerID: 2, Price: 100, Status: StatusCancelled,
	})
	require.ErrorIs(t, err, ErrValidation)
}
