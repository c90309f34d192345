package rediscache

import (
	"context"
	"sync"
	"testing"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/swiftpos/swiftpos/internal/domain/product"
)

type countingRepo struct {
	mu       sync.Mutex
	products map[string]product.Product
	lists    int
	gets     int
}

func newCountingRepo(products ...product.Product) *countingRepo {
	r := &countingRepo{products: make(map[string]product.Product)}
	for _, p := range products {
		r.products[p.ID] = p
	}
	return r
}

func (r *countingRepo) List(context.Context) ([]product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists++
	out := make([]product.Product, 0, len(r.products))
	for _, p := range r.products {
		out = append(out, p)
	}
	return out, nil
}

func (r *countingRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	p, ok := r.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (r *countingRepo) Create(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *countingRepo) Update(_ context.Context, p *product.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *countingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *countingRepo) SetStock(_ context.Context, id string, stock int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.products[id]
	p.Stock = stock
	r.products[id] = p
	return nil
}

// deadClient points at an address nothing listens on: every command errors,
// exercising the degrade path.
func deadClient() *redis.Client {
	return redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
}

func TestDegradesWhenRedisUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := newCountingRepo(product.Product{
		ID:    "p1",
		Name:  "Coffee",
		Price: decimal.RequireFromString("10.00"),
	})
	cache := NewProductCache(repo, deadClient(), zap.NewNop())

	products, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)

	got, err := cache.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Coffee", got.Name)

	_, err = cache.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestWritesPassThroughWhenRedisUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := newCountingRepo()
	cache := NewProductCache(repo, deadClient(), zap.NewNop())

	p := &product.Product{ID: "p1", Name: "Tea", Price: decimal.RequireFromString("2.00")}
	require.NoError(t, cache.Create(ctx, p))
	require.NoError(t, cache.SetStock(ctx, "p1", 7))

	got, err := cache.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 7, got.Stock)

	require.NoError(t, cache.Delete(ctx, "p1"))
	_, err = cache.GetByID(ctx, "p1")
	assert.ErrorIs(t, err, product.ErrNotFound)
}

func TestConcurrentMissesCollapse(t *testing.T) {
	ctx := context.Background()
	repo := newCountingRepo(product.Product{ID: "p1", Name: "Coffee"})
	cache := NewProductCache(repo, deadClient(), zap.NewNop())

	start := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := cache.GetByID(ctx, "p1")
			assert.NoError(t, err)
		}()
	}
	close(start)
	wg.Wait()

	repo.mu.Lock()
	gets := repo.gets
	repo.mu.Unlock()
	assert.Less(t, gets, 16, "singleflight should collapse concurrent reads")
}
