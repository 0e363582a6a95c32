package usecase

import (
	"context"
	"log"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
)

// RankerConfig holds tuning knobs for the similarity ranker
type RankerConfig struct {
	TopN         int           // result cap after sorting
	FetchWorkers int           // concurrent candidate image downloads
	FetchTimeout time.Duration // per-candidate download timeout
}

// Ranker scores catalog candidates against a query image's features.
// Candidate images are downloaded concurrently on a bounded worker pool;
// scores are keyed by candidate index so concurrency never changes the
// ranking output for fixed inputs.
type Ranker struct {
	fetcher      domain.ImageFetcher
	topN         int
	fetchWorkers int
	fetchTimeout time.Duration
}

// NewRanker creates a ranker with the given configuration, applying
// defaults for unset values.
func NewRanker(fetcher domain.ImageFetcher, config RankerConfig) *Ranker {
	topN := config.TopN
	if topN <= 0 {
		topN = 12
	}
	workers := config.FetchWorkers
	if workers <= 0 {
		workers = 6
	}
	timeout := config.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Ranker{
		fetcher:      fetcher,
		topN:         topN,
		fetchWorkers: workers,
		fetchTimeout: timeout,
	}
}

// Rank scores every candidate, sorts descending by score with stable
// tie-break on original candidate order, and truncates to the configured
// cap. A failed candidate image download or decode falls back to the
// lexical score for that candidate and never fails the whole request.
func (r *Ranker) Rank(ctx context.Context, features *domain.ImageFeatureSet, candidates []domain.ProductRecord) []domain.MatchResult {
	scores := make([]int, len(candidates))

	pool, err := ants.NewPool(r.fetchWorkers)
	if err != nil {
		log.Printf("[RANK] worker pool unavailable, scoring sequentially: %v", err)
	} else {
		defer pool.Release()
	}

	var wg sync.WaitGroup
	for i := range candidates {
		i := i
		wg.Add(1)
		task := func() {
			defer wg.Done()
			scores[i] = r.scoreCandidate(ctx, features, candidates[i])
		}
		if pool == nil || pool.Submit(task) != nil {
			task()
		}
	}
	wg.Wait()

	results := make([]domain.MatchResult, len(candidates))
	for i, c := range candidates {
		results[i] = domain.MatchResult{Product: c, MatchScore: scores[i]}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].MatchScore > results[j].MatchScore
	})

	if len(results) > r.topN {
		results = results[:r.topN]
	}
	return results
}

// scoreCandidate computes the total match score for one candidate.
// Visual score when the candidate image is reachable, lexical fallback
// otherwise.
func (r *Ranker) scoreCandidate(ctx context.Context, features *domain.ImageFeatureSet, candidate domain.ProductRecord) int {
	if candidate.ImageURL == "" {
		return LexicalScore(features, candidate.Title)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	data, err := r.fetcher.Fetch(fetchCtx, candidate.ImageURL)
	if err != nil {
		log.Printf("[RANK] image fetch failed for %s, using lexical fallback: %v", candidate.ID, err)
		return LexicalScore(features, candidate.Title)
	}

	candidateFeatures, err := ExtractFeatures(data)
	if err != nil {
		log.Printf("[RANK] image decode failed for %s, using lexical fallback: %v", candidate.ID, err)
		return LexicalScore(features, candidate.Title)
	}

	score := CompareHistograms(features.Buckets, candidateFeatures.Buckets)
	if HasCategoryTerm(candidate.Title) {
		score += visualCategoryBonus
	}
	return int(math.Round(score))
}
