package usecase

import (
	"bytes"
	"fmt"
	"image"
	"sort"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"golang.org/x/image/draw"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
)

// Extractor tuning constants
const (
	// bucketWidth is the quantization step per RGB channel
	bucketWidth = 32

	// maxBuckets caps the retained dominant colors per image
	maxBuckets = 5

	// sampleBound is the longest side after downsampling. Every pixel of
	// the downsampled image is counted, so this bounds extraction cost
	// regardless of the source resolution.
	sampleBound = 64
)

// ExtractFeatures decodes raw image bytes and returns the dominant-color
// summary for the image.
func ExtractFeatures(data []byte) (*domain.ImageFeatureSet, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageDecode, err)
	}
	return ExtractFromImage(img), nil
}

// ExtractFromImage builds the dominant-color summary for an already
// decoded image. Buckets are ordered by descending pixel share and capped
// to maxBuckets; before truncation the shares sum to 100.
func ExtractFromImage(img image.Image) *domain.ImageFeatureSet {
	bounds := img.Bounds()
	sampled := downsample(img)

	counts := make(map[[3]uint8]int)
	total := 0
	sb := sampled.Bounds()
	for y := sb.Min.Y; y < sb.Max.Y; y++ {
		for x := sb.Min.X; x < sb.Max.X; x++ {
			r, g, b, _ := sampled.At(x, y).RGBA()
			key := [3]uint8{
				quantize(uint8(r >> 8)),
				quantize(uint8(g >> 8)),
				quantize(uint8(b >> 8)),
			}
			counts[key]++
			total++
		}
	}

	buckets := make([]domain.ColorBucket, 0, len(counts))
	for key, n := range counts {
		buckets = append(buckets, domain.ColorBucket{
			R:   key[0],
			G:   key[1],
			B:   key[2],
			Pct: float64(n) / float64(total) * 100,
		})
	}

	// Descending by share; equal shares ordered by channel value so the
	// result is deterministic across runs.
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Pct != buckets[j].Pct {
			return buckets[i].Pct > buckets[j].Pct
		}
		a, b := buckets[i], buckets[j]
		if a.R != b.R {
			return a.R < b.R
		}
		if a.G != b.G {
			return a.G < b.G
		}
		return a.B < b.B
	})

	if len(buckets) > maxBuckets {
		buckets = buckets[:maxBuckets]
	}

	return &domain.ImageFeatureSet{
		Buckets: buckets,
		Width:   bounds.Dx(),
		Height:  bounds.Dy(),
	}
}

// quantize rounds a channel value to the nearest multiple of bucketWidth,
// clamped to the valid channel range.
func quantize(v uint8) uint8 {
	q := (int(v) + bucketWidth/2) / bucketWidth * bucketWidth
	if q > 255 {
		q = 255
	}
	return uint8(q)
}

// downsample scales the image to fit within sampleBound on its longest
// side, preserving aspect ratio. Images already within the bound are
// returned unchanged.
func downsample(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= sampleBound && h <= sampleBound {
		return img
	}

	scale := float64(sampleBound) / float64(max(w, h))
	nw := max(int(float64(w)*scale), 1)
	nh := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}
