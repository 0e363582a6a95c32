package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"time"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
)

// Client calls an external ML content-classification service. It is an
// optional capability: wiring happens only when moderation is configured,
// and the search service treats any error here as non-fatal.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewClient creates a new classifier client
func NewClient(apiKey, baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// classifyResponse is the classifier wire format
type classifyResponse struct {
	Labels []struct {
		Label       string  `json:"label"`
		Probability float64 `json:"probability"`
	} `json:"labels"`
}

// Classify posts the image to the classifier and returns its label
// probabilities
func (c *Client) Classify(ctx context.Context, img image.Image) ([]domain.ModerationLabel, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode image for classification: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1/classify", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode classifier response: %w", err)
	}

	labels := make([]domain.ModerationLabel, len(payload.Labels))
	for i, l := range payload.Labels {
		labels[i] = domain.ModerationLabel{Label: l.Label, Probability: l.Probability}
	}
	return labels, nil
}
