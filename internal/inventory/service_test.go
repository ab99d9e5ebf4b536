package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	products map[int64]Product
	nextID   int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{products: make(map[int64]Product)}
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Product, int, error) {
	var out []Product
	for _, p := range r.products {
		if filters.Status != "" && p.Status != filters.Status {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Product, error) {
	p, ok := r.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *memoryRepo) Create(ctx context.Context, p Product) (int64, error) {
	for _, existing := range r.products {
		if existing.Code == p.Code {
			return 0, ErrDuplicateCode
		}
	}
	r.nextID++
	p.ID = r.nextID
	p.CreatedAt = time.Now()
	r.products[p.ID] = p
	return p.ID, nil
}

func (r *memoryRepo) CreateBatch(ctx context.Context, products []Product) ([]int64, error) {
	ids := make([]int64, 0, len(products))
	for _, p := range products {
		id, err := r.Create(ctx, p)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, p Product) error {
	existing, ok := r.products[id]
	if !ok {
		return ErrNotFound
	}
	p.ID = id
	p.Cost = existing.Cost
	p.Status = existing.Status
	p.CreatedAt = existing.CreatedAt
	r.products[id] = p
	return nil
}

func (r *memoryRepo) SetStatus(ctx context.Context, id int64, status Status) error {
	p, ok := r.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	r.products[id] = p
	return nil
}

func (r *memoryRepo) MarkDeadBefore(ctx context.Context, cutoff time.Time) ([]int64, error) {
	var ids []int64
	for id, p := range r.products {
		if p.Status == StatusAvailable && p.CreatedAt.Before(cutoff) {
			p.Status = StatusDead
			r.products[id] = p
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func TestCreateBatchDividesDeclaredTotal(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	products, err := svc.CreateBatch(context.Background(), BatchInput{
		PurchaseID: 9,
		TotalCost:  42713,
		Name:       "Tabebuia",
		CodePrefix: "TB",
		Count:      4,
	})
	require.NoError(t, err)
	require.Len(t, products, 4)
	require.Equal(t, "TB-001", products[0].Code)
	require.Equal(t, "TB-004", products[3].Code)
	for _, p := range products {
		require.Equal(t, 42713.0/4, p.Cost)
		require.Equal(t, StatusAvailable, p.Status)
		require.Equal(t, int64(9), p.PurchaseID)
	}
}

func TestCreateBatchRejectsZeroCount(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	_, err := svc.CreateBatch(context.Background(), BatchInput{
		PurchaseID: 1, Name: "Tabebuia", CodePrefix: "TB", Count: 0,
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateKeepsCostSnapshot(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), CreateInput{
		Code: "TB-001", Name: "Tabebuia", Cost: 5000, Price: 9000,
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, CreateInput{
		Code: "TB-001", Name: "Tabebuia rosea", Price: 12000,
	})
	require.NoError(t, err)
	require.Equal(t, 5000.0, updated.Cost)
	require.Equal(t, 12000.0, updated.Price)
}

func TestChangeStatusTransitions(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), CreateInput{
		Code: "TB-001", Name: "Tabebuia",
	})
	require.NoError(t, err)

	require.NoError(t, svc.ChangeStatus(context.Background(), created.ID, StatusReserved, 1))
	require.NoError(t, svc.ChangeStatus(context.Background(), created.ID, StatusAvailable, 1))
	require.NoError(t, svc.ChangeStatus(context.Background(), created.ID, StatusDead, 1))

	err = svc.ChangeStatus(context.Background(), created.ID, StatusAvailable, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestManualTransitionToSoldIsRejected(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), CreateInput{Code: "TB-001", Name: "Tabebuia"})
	require.NoError(t, err)

	err = svc.ChangeStatus(context.Background(), created.ID, StatusSold, 1)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// Sale completion uses the service hook instead.
	require.NoError(t, svc.MarkSold(context.Background(), created.ID))
	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSold, got.Status)
}

func TestWriteOffStale(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)

	created, err := svc.Create(context.Background(), CreateInput{Code: "TB-001", Name: "Tabebuia"})
	require.NoError(t, err)

	old := repo.products[created.ID]
	old.CreatedAt = time.Now().Add(-2 * 365 * 24 * time.Hour)
	repo.products[created.ID] = old

	count, err := svc.WriteOffStale(context.Background(), 365*24*time.Hour)
	require.NoError(t, err)
	require.Equal(t, 1, count)

	got, err := svc.Get(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusDead, got.Status)
}
