package usecase

import (
	"context"
	"fmt"
	"image/color"
	"testing"
	"time"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
)

// fetcherFunc adapts a function to domain.ImageFetcher
type fetcherFunc func(ctx context.Context, url string) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f(ctx, url)
}

var failingFetcher = fetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
	return nil, fmt.Errorf("%w: connection refused", domain.ErrImageFetch)
})

func redQueryFeatures() *domain.ImageFeatureSet {
	return &domain.ImageFeatureSet{
		Buckets: []domain.ColorBucket{{R: 255, G: 0, B: 0, Pct: 100}},
	}
}

func TestRankerFallbacks(t *testing.T) {
	ctx := context.Background()

	t.Run("candidate without image scores lexical only", func(t *testing.T) {
		ranker := NewRanker(failingFetcher, RankerConfig{})
		candidates := []domain.ProductRecord{
			{ID: "1", Title: "Red Cotton Top"},
		}

		results := ranker.Rank(ctx, redQueryFeatures(), candidates)
		if len(results) != 1 {
			t.Fatalf("results = %d, want 1", len(results))
		}
		want := LexicalScore(redQueryFeatures(), "Red Cotton Top")
		if results[0].MatchScore != want {
			t.Errorf("score = %d, want lexical score %d", results[0].MatchScore, want)
		}
	})

	t.Run("failed image fetch falls back to lexical score", func(t *testing.T) {
		ranker := NewRanker(failingFetcher, RankerConfig{})
		candidates := []domain.ProductRecord{
			{ID: "1", Title: "Red Cotton Top", ImageURL: "http://img.example/1.jpg"},
		}

		results := ranker.Rank(ctx, redQueryFeatures(), candidates)
		want := LexicalScore(redQueryFeatures(), "Red Cotton Top")
		if results[0].MatchScore != want {
			t.Errorf("score = %d, want lexical score %d", results[0].MatchScore, want)
		}
	})

	t.Run("timed out fetch falls back to lexical score", func(t *testing.T) {
		slow := fetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
			<-ctx.Done()
			return nil, fmt.Errorf("%w: %v", domain.ErrImageFetch, ctx.Err())
		})
		ranker := NewRanker(slow, RankerConfig{FetchTimeout: 10 * time.Millisecond})
		candidates := []domain.ProductRecord{
			{ID: "1", Title: "Red Scarf", ImageURL: "http://img.example/slow.jpg"},
		}

		results := ranker.Rank(ctx, redQueryFeatures(), candidates)
		want := LexicalScore(redQueryFeatures(), "Red Scarf")
		if results[0].MatchScore != want {
			t.Errorf("score = %d, want lexical score %d", results[0].MatchScore, want)
		}
	})

	t.Run("undecodable candidate image falls back to lexical score", func(t *testing.T) {
		garbage := fetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
			return []byte("not an image"), nil
		})
		ranker := NewRanker(garbage, RankerConfig{})
		candidates := []domain.ProductRecord{
			{ID: "1", Title: "Red Hat", ImageURL: "http://img.example/broken.jpg"},
		}

		results := ranker.Rank(ctx, redQueryFeatures(), candidates)
		want := LexicalScore(redQueryFeatures(), "Red Hat")
		if results[0].MatchScore != want {
			t.Errorf("score = %d, want lexical score %d", results[0].MatchScore, want)
		}
	})
}

func TestRankerVisualPath(t *testing.T) {
	ctx := context.Background()

	t.Run("matching candidate image scores visually with category bonus", func(t *testing.T) {
		redPNG := pngBytes(t, solidImage(8, 8, color.RGBA{R: 255, A: 255}))
		fetcher := fetcherFunc(func(ctx context.Context, url string) ([]byte, error) {
			return redPNG, nil
		})
		ranker := NewRanker(fetcher, RankerConfig{})
		candidates := []domain.ProductRecord{
			{ID: "1", Title: "Red Shirt", ImageURL: "http://img.example/red.png"},
		}

		results := ranker.Rank(ctx, redQueryFeatures(), candidates)

		// identical histograms: 100 * exact weight, plus the flat
		// visual category bonus for "shirt"
		want := int(100*exactMatchWeight) + visualCategoryBonus
		if results[0].MatchScore != want {
			t.Errorf("score = %d, want %d", results[0].MatchScore, want)
		}
	})
}

func TestRankerOrdering(t *testing.T) {
	ctx := context.Background()

	t.Run("sorted descending with stable tie-break on input order", func(t *testing.T) {
		ranker := NewRanker(failingFetcher, RankerConfig{})
		candidates := []domain.ProductRecord{
			{ID: "a", Title: "Ceramic Vase"},    // 0
			{ID: "b", Title: "Red Shirt"},       // color + category
			{ID: "c", Title: "Wooden Bowl"},     // 0, ties with a
			{ID: "d", Title: "Crimson Sweater"}, // category only
		}

		results := ranker.Rank(ctx, redQueryFeatures(), candidates)

		gotIDs := make([]string, len(results))
		for i, r := range results {
			gotIDs[i] = r.Product.ID
		}
		wantIDs := []string{"b", "d", "a", "c"}
		for i := range wantIDs {
			if gotIDs[i] != wantIDs[i] {
				t.Fatalf("order = %v, want %v", gotIDs, wantIDs)
			}
		}

		for i := 1; i < len(results); i++ {
			if results[i].MatchScore > results[i-1].MatchScore {
				t.Errorf("results not descending at %d: %d > %d", i, results[i].MatchScore, results[i-1].MatchScore)
			}
		}
	})

	t.Run("truncates to configured cap", func(t *testing.T) {
		ranker := NewRanker(failingFetcher, RankerConfig{TopN: 3})
		candidates := make([]domain.ProductRecord, 10)
		for i := range candidates {
			candidates[i] = domain.ProductRecord{ID: fmt.Sprintf("p%d", i), Title: "Red Shirt"}
		}

		results := ranker.Rank(ctx, redQueryFeatures(), candidates)
		if len(results) != 3 {
			t.Errorf("results = %d, want 3", len(results))
		}
	})

	t.Run("deterministic across repeated runs", func(t *testing.T) {
		ranker := NewRanker(failingFetcher, RankerConfig{FetchWorkers: 4})
		candidates := []domain.ProductRecord{
			{ID: "1", Title: "Red Shirt", ImageURL: "http://img.example/a.jpg"},
			{ID: "2", Title: "Blue Shirt", ImageURL: "http://img.example/b.jpg"},
			{ID: "3", Title: "Red Cotton Dress"},
			{ID: "4", Title: "Plain Mug"},
		}

		first := ranker.Rank(ctx, redQueryFeatures(), candidates)
		for run := 0; run < 5; run++ {
			again := ranker.Rank(ctx, redQueryFeatures(), candidates)
			for i := range first {
				if again[i].Product.ID != first[i].Product.ID || again[i].MatchScore != first[i].MatchScore {
					t.Fatalf("run %d diverged at %d: got %v, want %v", run, i, again[i], first[i])
				}
			}
		}
	})
}
