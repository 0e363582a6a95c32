package usecase

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log"
	"sort"
	"strings"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
)

// SearchServiceConfig holds configuration for the search service
type SearchServiceConfig struct {
	ModerationThreshold float64  // disallowed label probability cutoff
	DisallowedLabels    []string // classifier labels that reject a request
}

// SearchService is the entry point for both search paths: a free-text
// query relayed to the upstream catalog, or an uploaded image ranked
// against the cached corpus.
type SearchService struct {
	candidates domain.CandidateSource
	catalog    domain.CatalogClient
	ranker     *Ranker
	moderator  domain.Moderator      // optional, may be nil
	thumbs     domain.ThumbnailStore // optional, may be nil

	moderationThreshold float64
	disallowed          map[string]bool
}

// NewSearchService creates a search service with dependencies. The
// moderator and thumbnail store are optional capabilities and may be nil.
func NewSearchService(
	candidates domain.CandidateSource,
	catalog domain.CatalogClient,
	ranker *Ranker,
	moderator domain.Moderator,
	thumbs domain.ThumbnailStore,
	config SearchServiceConfig,
) *SearchService {
	threshold := config.ModerationThreshold
	if threshold <= 0 {
		threshold = 0.7
	}

	disallowed := make(map[string]bool, len(config.DisallowedLabels))
	for _, label := range config.DisallowedLabels {
		disallowed[strings.ToLower(label)] = true
	}

	return &SearchService{
		candidates:          candidates,
		catalog:             catalog,
		ranker:              ranker,
		moderator:           moderator,
		thumbs:              thumbs,
		moderationThreshold: threshold,
		disallowed:          disallowed,
	}
}

// SearchText relays a free-text query to the upstream catalog search and
// re-sorts the relevance-ordered results locally per the sort modifier.
func (s *SearchService) SearchText(ctx context.Context, query string, order domain.SortOrder) ([]domain.MatchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, domain.ErrInvalidRequest
	}

	products, err := s.catalog.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	results := make([]domain.MatchResult, len(products))
	for i, p := range products {
		results[i] = domain.MatchResult{Product: p}
	}
	sortResults(results, order)
	return results, nil
}

// SearchImage decodes the uploaded image, runs optional content
// moderation, extracts dominant-color features and ranks the cached
// corpus against them. Also writes a transient display thumbnail when a
// store is configured.
func (s *SearchService) SearchImage(ctx context.Context, data []byte) ([]domain.MatchResult, *domain.ImageFeatureSet, error) {
	if len(data) == 0 {
		return nil, nil, domain.ErrInvalidRequest
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}

	if err := s.moderate(ctx, img); err != nil {
		return nil, nil, err
	}

	features := ExtractFromImage(img)

	if s.thumbs != nil {
		if ref, err := s.thumbs.Save(img); err != nil {
			log.Printf("[SEARCH] thumbnail write failed: %v", err)
		} else {
			features.ThumbnailRef = ref
		}
	}

	candidates, err := s.candidates.Products(ctx)
	if err != nil {
		return nil, nil, err
	}

	results := s.ranker.Rank(ctx, features, candidates)
	return results, features, nil
}

// InvalidateCache forces the next candidate fetch to bypass the cache
func (s *SearchService) InvalidateCache() {
	s.candidates.Invalidate()
}

// moderate rejects the request when a configured disallowed label meets or
// exceeds the probability threshold. A classifier failure is logged and ignored;
// it never blocks the search.
func (s *SearchService) moderate(ctx context.Context, img image.Image) error {
	if s.moderator == nil || len(s.disallowed) == 0 {
		return nil
	}

	labels, err := s.moderator.Classify(ctx, img)
	if err != nil {
		log.Printf("[MODERATE] classifier unavailable, proceeding without moderation: %v", err)
		return nil
	}

	for _, l := range labels {
		if s.disallowed[strings.ToLower(l.Label)] && l.Probability >= s.moderationThreshold {
			return fmt.Errorf("%w: %s (%.2f)", domain.ErrModerationRejected, l.Label, l.Probability)
		}
	}
	return nil
}

// sortResults orders text-path results per the sort modifier. Relevance
// keeps the upstream order untouched; all sorts are stable.
func sortResults(results []domain.MatchResult, order domain.SortOrder) {
	switch order {
	case domain.SortPriceAsc:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Product.Price < results[j].Product.Price
		})
	case domain.SortPriceDesc:
		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Product.Price > results[j].Product.Price
		})
	case domain.SortTitleAsc:
		sort.SliceStable(results, func(i, j int) bool {
			return strings.ToLower(results[i].Product.Title) < strings.ToLower(results[j].Product.Title)
		})
	case domain.SortTitleDesc:
		sort.SliceStable(results, func(i, j int) bool {
			return strings.ToLower(results[i].Product.Title) > strings.ToLower(results[j].Product.Title)
		})
	}
}
