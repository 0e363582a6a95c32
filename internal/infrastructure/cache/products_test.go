package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
)

// pagedCatalog serves a fixed corpus in pages and counts upstream calls
type pagedCatalog struct {
	mu        sync.Mutex
	products  []domain.ProductRecord
	pageSize  int
	pageCalls int
	failNext  bool
}

func (p *pagedCatalog) FetchPage(ctx context.Context, cursor string) (*domain.CatalogPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pageCalls++
	if p.failNext {
		return nil, fmt.Errorf("%w: upstream down", domain.ErrCatalogFetch)
	}

	start := 0
	if cursor != "" {
		fmt.Sscanf(cursor, "c%d", &start)
	}
	end := start + p.pageSize
	if end > len(p.products) {
		end = len(p.products)
	}

	page := &domain.CatalogPage{Products: p.products[start:end]}
	if end < len(p.products) {
		page.NextCursor = fmt.Sprintf("c%d", end)
		page.HasMore = true
	}
	return page, nil
}

func (p *pagedCatalog) Search(ctx context.Context, query string) ([]domain.ProductRecord, error) {
	return nil, errors.New("not used")
}

func (p *pagedCatalog) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pageCalls
}

func corpus(n int) []domain.ProductRecord {
	products := make([]domain.ProductRecord, n)
	for i := range products {
		products[i] = domain.ProductRecord{ID: fmt.Sprintf("p%d", i), Title: fmt.Sprintf("Product %d", i)}
	}
	return products
}

// fakeClock is a settable time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestProductCache(t *testing.T) {
	ctx := context.Background()

	t.Run("collects all pages on first read", func(t *testing.T) {
		upstream := &pagedCatalog{products: corpus(25), pageSize: 10}
		clock := &fakeClock{now: time.Now()}
		c := NewProductCache(upstream, 30*time.Minute, WithClock(clock.Now))

		products, err := c.Products(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(products) != 25 {
			t.Errorf("products = %d, want 25", len(products))
		}
		if upstream.calls() != 3 {
			t.Errorf("upstream page calls = %d, want 3", upstream.calls())
		}
	})

	t.Run("second read within TTL serves cache without upstream calls", func(t *testing.T) {
		upstream := &pagedCatalog{products: corpus(5), pageSize: 10}
		clock := &fakeClock{now: time.Now()}
		c := NewProductCache(upstream, 30*time.Minute, WithClock(clock.Now))

		first, err := c.Products(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		callsAfterFirst := upstream.calls()

		clock.Advance(29 * time.Minute)
		second, err := c.Products(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if upstream.calls() != callsAfterFirst {
			t.Errorf("upstream calls grew from %d to %d within TTL", callsAfterFirst, upstream.calls())
		}
		if len(first) != len(second) {
			t.Fatalf("cached read changed size: %d vs %d", len(first), len(second))
		}
		for i := range first {
			if first[i] != second[i] {
				t.Errorf("cached read differs at %d: %v vs %v", i, first[i], second[i])
			}
		}
	})

	t.Run("read after TTL triggers exactly one refresh", func(t *testing.T) {
		upstream := &pagedCatalog{products: corpus(5), pageSize: 10}
		clock := &fakeClock{now: time.Now()}
		c := NewProductCache(upstream, 30*time.Minute, WithClock(clock.Now))

		if _, err := c.Products(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		callsAfterFirst := upstream.calls()

		clock.Advance(31 * time.Minute)
		if _, err := c.Products(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if upstream.calls() != callsAfterFirst+1 {
			t.Errorf("upstream calls = %d, want %d (one refresh)", upstream.calls(), callsAfterFirst+1)
		}
	})

	t.Run("serves stale corpus when refresh fails", func(t *testing.T) {
		upstream := &pagedCatalog{products: corpus(5), pageSize: 10}
		clock := &fakeClock{now: time.Now()}
		c := NewProductCache(upstream, 30*time.Minute, WithClock(clock.Now))

		if _, err := c.Products(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		clock.Advance(31 * time.Minute)
		upstream.failNext = true

		products, err := c.Products(ctx)
		if err != nil {
			t.Fatalf("expected stale corpus, got error: %v", err)
		}
		if len(products) != 5 {
			t.Errorf("stale products = %d, want 5", len(products))
		}
	})

	t.Run("propagates fetch error when no cache exists", func(t *testing.T) {
		upstream := &pagedCatalog{products: corpus(5), pageSize: 10, failNext: true}
		c := NewProductCache(upstream, 30*time.Minute)

		_, err := c.Products(ctx)
		if !errors.Is(err, domain.ErrCatalogFetch) {
			t.Errorf("error = %v, want ErrCatalogFetch", err)
		}
	})

	t.Run("invalidate forces refetch before TTL", func(t *testing.T) {
		upstream := &pagedCatalog{products: corpus(5), pageSize: 10}
		clock := &fakeClock{now: time.Now()}
		c := NewProductCache(upstream, 30*time.Minute, WithClock(clock.Now))

		if _, err := c.Products(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		callsAfterFirst := upstream.calls()

		c.Invalidate()
		if _, err := c.Products(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if upstream.calls() != callsAfterFirst+1 {
			t.Errorf("upstream calls = %d, want %d after invalidate", upstream.calls(), callsAfterFirst+1)
		}
	})

	t.Run("concurrent readers see a consistent corpus", func(t *testing.T) {
		upstream := &pagedCatalog{products: corpus(30), pageSize: 7}
		c := NewProductCache(upstream, 30*time.Minute)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				products, err := c.Products(ctx)
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if len(products) != 30 {
					t.Errorf("products = %d, want 30", len(products))
				}
			}()
		}
		wg.Wait()

		// one in-flight refresh shared by all callers: 5 pages total
		if upstream.calls() != 5 {
			t.Errorf("upstream page calls = %d, want 5", upstream.calls())
		}
	})
}
