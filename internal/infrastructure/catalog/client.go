package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
)

// Client handles communication with the storefront product listing API
type Client struct {
	httpClient  *http.Client
	accessToken string
	baseURL     string
	rateLimiter *rate.Limiter
	pageSize    int
	debug       bool
}

// NewClient creates a new storefront catalog client
func NewClient(accessToken, baseURL string, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = 50
	}

	// Storefront APIs typically allow ~2 requests/second sustained; the
	// limiter also paces the page walk during a full corpus refresh.
	limiter := rate.NewLimiter(rate.Limit(2), 4)

	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		accessToken: accessToken,
		baseURL:     baseURL,
		rateLimiter: limiter,
		pageSize:    pageSize,
	}
}

// SetDebug toggles request/response logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// FetchPage retrieves one page of the full product listing. An empty
// cursor requests the first page.
func (c *Client) FetchPage(ctx context.Context, cursor string) (*domain.CatalogPage, error) {
	params := url.Values{}
	params.Add("limit", strconv.Itoa(c.pageSize))
	if cursor != "" {
		params.Add("cursor", cursor)
	}

	reqURL := fmt.Sprintf("%s/products.json?%s", c.baseURL, params.Encode())

	payload, err := c.getWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	products, err := mapProducts(payload.Products, c.baseURL)
	if err != nil {
		return nil, err
	}

	if c.debug {
		log.Printf("[CATALOG] page cursor=%q products=%d hasMore=%v", cursor, len(products), payload.HasMore)
	}

	return &domain.CatalogPage{
		Products:   products,
		NextCursor: payload.NextCursor,
		HasMore:    payload.HasMore,
	}, nil
}

// Search runs an upstream relevance search for a free-text query. The
// upstream order is preserved; sort modifiers are applied by the caller.
func (c *Client) Search(ctx context.Context, query string) ([]domain.ProductRecord, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("limit", strconv.Itoa(c.pageSize))

	reqURL := fmt.Sprintf("%s/products/search.json?%s", c.baseURL, params.Encode())

	payload, err := c.getWithRetry(ctx, reqURL)
	if err != nil {
		return nil, err
	}

	if c.debug {
		log.Printf("[CATALOG] search %q returned %d products", query, len(payload.Products))
	}

	return mapProducts(payload.Products, c.baseURL)
}

// errNotFound marks a 404 so getWithRetry fails fast instead of
// burning attempts on an endpoint that is not there.
var errNotFound = fmt.Errorf("%w: status 404", domain.ErrCatalogFetch)

// getWithRetry executes a GET with rate limiting and up to 3 attempts
// for transient failures. A 404 is not retried.
func (c *Client) getWithRetry(ctx context.Context, reqURL string) (*pagePayload, error) {
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if errors.Is(err, errNotFound) {
				return nil, err
			}
			log.Printf("[CATALOG] request error (attempt %d): %v", attempt, err)
			lastErr = err
			if sleepErr := sleepContext(ctx, exponentialBackoff(attempt)); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		var payload pagePayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return nil, fmt.Errorf("%w: malformed payload: %v", domain.ErrCatalogFetch, err)
		}
		return &payload, nil
	}

	return nil, lastErr
}

// doRequest executes a single HTTP GET and returns the response body
func (c *Client) doRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "ProductSearchRelay/1.0")
	if c.accessToken != "" {
		req.Header.Set("X-Storefront-Access-Token", c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCatalogFetch, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrCatalogFetch, resp.StatusCode)
	}
	return body, nil
}

// exponentialBackoff returns the wait before the next retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}

// sleepContext waits for the duration or until the context is cancelled
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
