package cache

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
	"github.com/jazmin-marketing/product-search-backend/internal/infrastructure/catalog"
)

// ProductCache holds the full active product corpus with a single refresh
// timestamp. A stale read triggers one full synchronous paginated refetch
// before serving; the corpus is replaced wholesale, never incrementally.
//
// Refresh policy: the mutex is held for the whole refresh, so concurrent
// callers block on the one in-flight refresh and the last completed
// refresh wins with no torn reads. When a refresh fails and a previous
// corpus exists, the stale corpus is served and the failure logged; with
// no corpus the error propagates.
type ProductCache struct {
	client domain.CatalogClient
	ttl    time.Duration
	now    func() time.Time

	mu          sync.Mutex
	products    []domain.ProductRecord
	refreshedAt time.Time
	valid       bool
}

// Option configures a ProductCache
type Option func(*ProductCache)

// WithClock injects the time source, used by tests
func WithClock(now func() time.Time) Option {
	return func(c *ProductCache) {
		c.now = now
	}
}

// NewProductCache creates a cache over the given catalog client
func NewProductCache(client domain.CatalogClient, ttl time.Duration, opts ...Option) *ProductCache {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}

	c := &ProductCache{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products returns the cached corpus, refreshing it first when stale
func (c *ProductCache) Products(ctx context.Context) ([]domain.ProductRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.valid && c.now().Sub(c.refreshedAt) <= c.ttl {
		return copyProducts(c.products), nil
	}

	products, err := c.fetchAll(ctx)
	if err != nil {
		if len(c.products) > 0 {
			log.Printf("[CACHE] refresh failed, serving stale corpus of %d products: %v", len(c.products), err)
			return copyProducts(c.products), nil
		}
		return nil, err
	}

	c.products = products
	c.refreshedAt = c.now()
	c.valid = true
	log.Printf("[CACHE] corpus refreshed: %d products", len(products))

	return copyProducts(products), nil
}

// Invalidate forces the next read to bypass the cache
func (c *ProductCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid = false
}

// fetchAll walks the paginated listing to exhaustion. Pacing between
// pages is handled by the catalog client's rate limiter.
func (c *ProductCache) fetchAll(ctx context.Context) ([]domain.ProductRecord, error) {
	var products []domain.ProductRecord

	it := catalog.NewIterator(c.client)
	for {
		batch, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return products, nil
		}
		products = append(products, batch...)
	}
}

func copyProducts(products []domain.ProductRecord) []domain.ProductRecord {
	out := make([]domain.ProductRecord, len(products))
	copy(out, products)
	return out
}
