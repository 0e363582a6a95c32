package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
)

// pagePayload is the wire format of the storefront listing and search
// endpoints
type pagePayload struct {
	Products   []productPayload `json:"products"`
	NextCursor string           `json:"next_cursor"`
	HasMore    bool             `json:"has_more"`
}

// productPayload is one product as returned by the storefront API
type productPayload struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	ImageURL    string      `json:"image_url"`
	Price       string      `json:"price"`
	Currency    string      `json:"currency"`
	Handle      string      `json:"handle"`
}

// mapProducts converts wire products to domain records. A product with an
// unparseable price makes the whole page malformed.
func mapProducts(payloads []productPayload, baseURL string) ([]domain.ProductRecord, error) {
	products := make([]domain.ProductRecord, 0, len(payloads))
	for _, p := range payloads {
		record, err := mapProduct(p, baseURL)
		if err != nil {
			return nil, err
		}
		products = append(products, record)
	}
	return products, nil
}

// mapProduct converts a single wire product to a domain record
func mapProduct(p productPayload, baseURL string) (domain.ProductRecord, error) {
	price := 0.0
	if p.Price != "" {
		parsed, err := strconv.ParseFloat(p.Price, 64)
		if err != nil {
			return domain.ProductRecord{}, fmt.Errorf("%w: bad price %q for product %s", domain.ErrCatalogFetch, p.Price, p.ID)
		}
		price = parsed
	}

	return domain.ProductRecord{
		ID:          p.ID.String(),
		Title:       p.Title,
		Handle:      p.Handle,
		URL:         canonicalURL(baseURL, p.Handle),
		ImageURL:    p.ImageURL,
		Price:       price,
		Currency:    p.Currency,
		Description: p.Description,
	}, nil
}

// canonicalURL builds the storefront product page URL from its handle
func canonicalURL(baseURL, handle string) string {
	if handle == "" {
		return ""
	}
	if strings.HasPrefix(handle, "http://") || strings.HasPrefix(handle, "https://") {
		return handle
	}
	return strings.TrimSuffix(baseURL, "/") + "/products/" + handle
}
