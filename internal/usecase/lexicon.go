package usecase

import (
	"strings"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
)

// Lexical scoring bonuses. Each is awarded at most once per title no
// matter how many vocabulary terms match.
const (
	colorBonus    = 30 // a dominant color's name appears in the title
	categoryBonus = 30 // a garment/category term appears in the title
	materialBonus = 25 // a material/pattern term appears in the title

	// visualCategoryBonus is the smaller flat category bonus used on the
	// visual scoring path, where the histogram already carries most of
	// the signal
	visualCategoryBonus = 15
)

// colorRule maps a region of quantized RGB space to a canonical color
// name. Rules are evaluated top to bottom and the first match wins, so
// earlier rules shadow later overlapping ones.
type colorRule struct {
	name  string
	match func(r, g, b uint8) bool
}

// colorRules is the canonical ordering: achromatic rules first (black,
// white, gray), then hues from red around the wheel to brown.
var colorRules = []colorRule{
	{"black", func(r, g, b uint8) bool { return r < 64 && g < 64 && b < 64 }},
	{"white", func(r, g, b uint8) bool { return r >= 192 && g >= 192 && b >= 192 }},
	{"gray", func(r, g, b uint8) bool { return chanSpread(r, g, b) <= 32 }},
	{"red", func(r, g, b uint8) bool { return r >= 160 && g < 96 && b < 96 }},
	{"orange", func(r, g, b uint8) bool { return r >= 192 && g >= 96 && g < 176 && b < 96 }},
	{"yellow", func(r, g, b uint8) bool { return r >= 192 && g >= 176 && b < 128 }},
	{"green", func(r, g, b uint8) bool { return g >= 128 && r < 128 && b < 128 }},
	{"cyan", func(r, g, b uint8) bool { return g >= 160 && b >= 160 && r < 128 }},
	{"blue", func(r, g, b uint8) bool { return b >= 128 && r < 128 }},
	{"purple", func(r, g, b uint8) bool { return r >= 96 && b >= 128 && g < 96 }},
	{"pink", func(r, g, b uint8) bool { return r >= 192 && b >= 128 && g >= 96 }},
	{"brown", func(r, g, b uint8) bool { return r >= 96 && r < 192 && g >= 48 && g < 128 && b < 96 }},
}

// categoryTerms is the garment/category vocabulary
var categoryTerms = []string{
	"shirt", "blouse", "dress", "skirt", "jacket", "coat", "sweater",
	"hoodie", "top", "pants", "jeans", "shorts", "shoe", "sneaker",
	"boot", "sandal", "bag", "scarf", "hat", "belt", "jewelry",
}

// materialTerms is the material/pattern vocabulary
var materialTerms = []string{
	"cotton", "denim", "leather", "wool", "silk", "linen", "suede",
	"polyester", "velvet", "striped", "floral", "plaid", "knit",
}

// ColorName maps a quantized RGB triple to its canonical color name.
// Returns "" when no rule matches.
func ColorName(r, g, b uint8) string {
	for _, rule := range colorRules {
		if rule.match(r, g, b) {
			return rule.name
		}
	}
	return ""
}

// LexicalScore computes the vocabulary-based score for a product title
// against the query image's dominant colors. Pure function; zero when
// nothing matches.
func LexicalScore(features *domain.ImageFeatureSet, title string) int {
	folded := strings.ToLower(title)
	score := 0

	if features != nil && dominantColorInTitle(features.Buckets, folded) {
		score += colorBonus
	}
	if containsAny(folded, categoryTerms) {
		score += categoryBonus
	}
	if containsAny(folded, materialTerms) {
		score += materialBonus
	}
	return score
}

// HasCategoryTerm reports whether any garment/category term appears in
// the title. Used by the visual scoring path for its flat bonus.
func HasCategoryTerm(title string) bool {
	return containsAny(strings.ToLower(title), categoryTerms)
}

// dominantColorInTitle reports whether any dominant bucket's color name
// appears in the case-folded title
func dominantColorInTitle(buckets []domain.ColorBucket, folded string) bool {
	for _, bucket := range buckets {
		name := ColorName(bucket.R, bucket.G, bucket.B)
		if name != "" && strings.Contains(folded, name) {
			return true
		}
	}
	return false
}

func containsAny(folded string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(folded, term) {
			return true
		}
	}
	return false
}

// chanSpread returns the difference between the largest and smallest channel
func chanSpread(r, g, b uint8) uint8 {
	return max(r, g, b) - min(r, g, b)
}
