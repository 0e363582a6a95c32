package domain

import (
	"context"
	"image"
)

// CatalogClient defines the interface for the upstream storefront product API
type CatalogClient interface {
	// FetchPage retrieves one page of the full product listing. An empty
	// cursor requests the first page.
	FetchPage(ctx context.Context, cursor string) (*CatalogPage, error)

	// Search runs an upstream relevance search for a free-text query.
	Search(ctx context.Context, query string) ([]ProductRecord, error)
}

// CandidateSource supplies the product corpus to rank against
type CandidateSource interface {
	Products(ctx context.Context) ([]ProductRecord, error)
	Invalidate()
}

// ImageFetcher retrieves raw image bytes for a candidate product
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Moderator is an optional content-classification capability. A nil
// Moderator means moderation is not configured; classifier failures must
// never block a search.
type Moderator interface {
	Classify(ctx context.Context, img image.Image) ([]ModerationLabel, error)
}

// ThumbnailStore persists transient display thumbnails for query images
type ThumbnailStore interface {
	Save(img image.Image) (string, error)
}
