package domain

// ColorBucket is a quantized RGB triple plus the percentage of sampled
// pixels that fell into that bucket. Channels are rounded to multiples
// of the extractor's bucket width.
type ColorBucket struct {
	R   uint8   `json:"r"`
	G   uint8   `json:"g"`
	B   uint8   `json:"b"`
	Pct float64 `json:"pct"`
}

// ImageFeatureSet holds the dominant-color summary for one image.
// Created once per uploaded image per request; immutable after creation.
type ImageFeatureSet struct {
	Buckets      []ColorBucket `json:"buckets"`
	Width        int           `json:"width"`
	Height       int           `json:"height"`
	ThumbnailRef string        `json:"thumbnailRef,omitempty"`
}

// ModerationLabel is one classifier verdict for an uploaded image
type ModerationLabel struct {
	Label       string  `json:"label"`
	Probability float64 `json:"probability"`
}

// SortOrder selects how text-path search results are ordered
type SortOrder string

const (
	SortRelevance SortOrder = "relevance"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
	SortTitleAsc  SortOrder = "title_asc"
	SortTitleDesc SortOrder = "title_desc"
)

// ParseSortOrder validates a sort modifier. Empty input means relevance.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(s) {
	case "":
		return SortRelevance, nil
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortTitleAsc, SortTitleDesc:
		return SortOrder(s), nil
	}
	return "", ErrInvalidRequest
}
