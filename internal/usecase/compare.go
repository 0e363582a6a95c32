package usecase

import (
	"math"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
)

// Comparator tuning constants
const (
	// exactMatchWeight multiplies the shared pixel percentage when two
	// buckets land on the same quantized triple
	exactMatchWeight = 3.0

	// nearMatchThreshold is the Euclidean RGB distance below which two
	// distinct buckets still contribute, with linearly decaying weight
	nearMatchThreshold = 100.0
)

// CompareHistograms computes a similarity score between two dominant-color
// summaries. Every pair of buckets contributes: identical quantized triples
// add min(pct) * exactMatchWeight, nearby triples add min(pct) scaled by
// their distance. This is an O(K²) heuristic over small K, not a
// distribution-distance metric. Returns 0 when either summary is empty.
func CompareHistograms(a, b []domain.ColorBucket) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	var total float64
	for _, p := range a {
		for _, q := range b {
			if p.R == q.R && p.G == q.G && p.B == q.B {
				total += math.Min(p.Pct, q.Pct) * exactMatchWeight
				continue
			}
			d := channelDistance(p, q)
			if d < nearMatchThreshold {
				total += math.Min(p.Pct, q.Pct) * (1 - d/nearMatchThreshold)
			}
		}
	}
	return total
}

// channelDistance is the Euclidean distance between two buckets in RGB space
func channelDistance(a, b domain.ColorBucket) float64 {
	dr := float64(a.R) - float64(b.R)
	dg := float64(a.G) - float64(b.G)
	db := float64(a.B) - float64(b.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}
