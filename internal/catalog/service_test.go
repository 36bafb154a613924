package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daddtdrey/eatai/internal/domain"
	"github.com/Daddtdrey/eatai/internal/inventory"
)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[int64]*domain.Product
	nextID   int64
	lists    int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[int64]*domain.Product), nextID: 1}
}

func (f *fakeProductRepo) CreateProduct(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p.ID = f.nextID
	f.nextID++
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) UpdateProduct(_ context.Context, p *domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[p.ID]; !ok {
		return inventory.ErrProductNotFound
	}
	cp := *p
	f.products[p.ID] = &cp
	return nil
}

func (f *fakeProductRepo) DeleteProduct(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.products[id]; !ok {
		return inventory.ErrProductNotFound
	}
	delete(f.products, id)
	return nil
}

func (f *fakeProductRepo) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[id]
	if !ok {
		return nil, inventory.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) ListProductsByLocation(_ context.Context, location string) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	var out []*domain.Product
	for _, p := range f.products {
		if p.Location == location {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeProductCache struct {
	mu      sync.Mutex
	entries map[string][]*domain.Product
	deletes []string
}

func newFakeProductCache() *fakeProductCache {
	return &fakeProductCache{entries: make(map[string][]*domain.Product)}
}

func (f *fakeProductCache) Get(_ context.Context, location string) ([]*domain.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	products, ok := f.entries[location]
	if !ok {
		return nil, ErrCacheMiss
	}
	return products, nil
}

func (f *fakeProductCache) Set(_ context.Context, location string, products []*domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[location] = products
	return nil
}

func (f *fakeProductCache) Delete(_ context.Context, location string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, location)
	f.deletes = append(f.deletes, location)
	return nil
}

func input(name, vendor, location string) ProductInput {
	return ProductInput{
		Name:     name,
		Price:    1500,
		Stock:    10,
		Vendor:   vendor,
		Location: location,
		Category: "food",
	}
}

func TestCreateProductValidatesAndInvalidates(t *testing.T) {
	repo := newFakeProductRepo()
	cache := newFakeProductCache()
	svc := NewService(repo, cache)

	p, err := svc.CreateProduct(context.Background(), input("Jollof Rice", "Mama Cass Kitchen", "irrua"))
	require.NoError(t, err)
	assert.Equal(t, "Irrua", p.Location)
	assert.NotZero(t, p.ID)
	assert.Contains(t, cache.deletes, "Irrua")

	_, err = svc.CreateProduct(context.Background(), input("", "Mama Cass Kitchen", "Irrua"))
	assert.ErrorIs(t, err, domain.ErrInvalidProduct)
}

func TestUpdateProductMoveInvalidatesBothLocations(t *testing.T) {
	repo := newFakeProductRepo()
	cache := newFakeProductCache()
	svc := NewService(repo, cache)

	p, err := svc.CreateProduct(context.Background(), input("Jollof Rice", "Mama Cass Kitchen", "Irrua"))
	require.NoError(t, err)

	_, err = svc.UpdateProduct(context.Background(), p.ID, input("Jollof Rice", "Mama Cass Kitchen", "Ekpoma"))
	require.NoError(t, err)

	assert.Contains(t, cache.deletes, "Irrua")
	assert.Contains(t, cache.deletes, "Ekpoma")
}

func TestUpdateMissingProduct(t *testing.T) {
	svc := NewService(newFakeProductRepo(), newFakeProductCache())

	_, err := svc.UpdateProduct(context.Background(), 42, input("Jollof Rice", "Mama Cass Kitchen", "Irrua"))
	assert.ErrorIs(t, err, inventory.ErrProductNotFound)
}

func TestListByLocation(t *testing.T) {
	repo := newFakeProductRepo()
	cache := newFakeProductCache()
	svc := NewService(repo, cache)

	_, err := svc.CreateProduct(context.Background(), input("Jollof Rice", "Mama Cass Kitchen", "Irrua"))
	require.NoError(t, err)
	_, err = svc.CreateProduct(context.Background(), input("Suya", "Crunchies Irrua", "Ekpoma"))
	require.NoError(t, err)

	products, err := svc.ListByLocation(context.Background(), "irrua")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Jollof Rice", products[0].Name)

	_, err = svc.ListByLocation(context.Background(), "Lagos")
	assert.ErrorIs(t, err, domain.ErrUnknownLocation)
}

func TestListByLocationServedFromCache(t *testing.T) {
	repo := newFakeProductRepo()
	cache := newFakeProductCache()
	require.NoError(t, cache.Set(context.Background(), "Irrua", []*domain.Product{{ID: 1, Name: "Cached"}}))

	svc := NewService(repo, cache)
	products, err := svc.ListByLocation(context.Background(), "Irrua")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Cached", products[0].Name)
	assert.Zero(t, repo.lists)
}

func TestListByLocationFillsCache(t *testing.T) {
	repo := newFakeProductRepo()
	cache := newFakeProductCache()
	svc := NewService(repo, cache)

	_, err := svc.CreateProduct(context.Background(), input("Jollof Rice", "Mama Cass Kitchen", "Irrua"))
	require.NoError(t, err)

	_, err = svc.ListByLocation(context.Background(), "Irrua")
	require.NoError(t, err)

	// Cache fill is asynchronous
	assert.Eventually(t, func() bool {
		_, cacheErr := cache.Get(context.Background(), "Irrua")
		return cacheErr == nil
	}, time.Second, 10*time.Millisecond)
}
