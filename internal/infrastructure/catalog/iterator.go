package catalog

import (
	"context"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
)

// Iterator is a finite, restartable walk over the paginated product
// listing. Each call to Next fetches one batch; the walk ends when the
// upstream reports no more pages. Create a new Iterator to restart from
// the first page.
type Iterator struct {
	client domain.CatalogClient
	cursor string
	done   bool
}

// NewIterator starts a walk from the first page of the listing
func NewIterator(client domain.CatalogClient) *Iterator {
	return &Iterator{client: client}
}

// Next returns the next batch of products. ok is false once the listing
// is exhausted.
func (it *Iterator) Next(ctx context.Context) (batch []domain.ProductRecord, ok bool, err error) {
	if it.done {
		return nil, false, nil
	}

	page, err := it.client.FetchPage(ctx, it.cursor)
	if err != nil {
		return nil, false, err
	}

	it.cursor = page.NextCursor
	if !page.HasMore || page.NextCursor == "" {
		it.done = true
	}
	return page.Products, true, nil
}
