package domain

// ProductRecord represents one product from the upstream storefront catalog
type ProductRecord struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Handle      string  `json:"handle"`
	URL         string  `json:"url"`
	ImageURL    string  `json:"imageUrl,omitempty"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	Description string  `json:"description,omitempty"`
}

// MatchResult is a ProductRecord augmented with its ranking score.
// Produced fresh per search request, never persisted.
type MatchResult struct {
	Product    ProductRecord `json:"product"`
	MatchScore int           `json:"matchScore"`
}

// CatalogPage is one page of the upstream paginated product listing
type CatalogPage struct {
	Products   []ProductRecord
	NextCursor string
	HasMore    bool
}
