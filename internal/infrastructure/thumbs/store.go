package thumbs

import (
	"fmt"
	"image"
	"image/jpeg"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// thumbnailSize is the longest side of a stored display thumbnail
const thumbnailSize = 200

// Store writes transient display thumbnails for query images to a local
// directory. Artifacts are uuid-named JPEGs and are swept once they
// exceed the configured age.
type Store struct {
	dir    string
	maxAge time.Duration
}

// NewStore creates the thumbnail directory and starts the age-based sweep
func NewStore(dir string, maxAge time.Duration) (*Store, error) {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail dir: %w", err)
	}

	s := &Store{dir: dir, maxAge: maxAge}
	go s.sweep()
	return s, nil
}

// Save scales the image down and writes it as a uuid-named JPEG,
// returning the artifact name.
func (s *Store) Save(img image.Image) (string, error) {
	name := uuid.NewString() + ".jpg"
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create thumbnail file: %w", err)
	}
	defer f.Close()

	if err := jpeg.Encode(f, scaleDown(img), &jpeg.Options{Quality: 80}); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return name, nil
}

// Path returns the filesystem path of a stored artifact
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, filepath.Base(name))
}

// scaleDown fits the image within thumbnailSize on its longest side
func scaleDown(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= thumbnailSize && h <= thumbnailSize {
		return img
	}

	scale := float64(thumbnailSize) / float64(max(w, h))
	nw := max(int(float64(w)*scale), 1)
	nh := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// sweep removes artifacts older than maxAge every 10 minutes
func (s *Store) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			log.Printf("[THUMBS] sweep failed: %v", err)
			continue
		}
		cutoff := time.Now().Add(-s.maxAge)
		for _, entry := range entries {
			info, err := entry.Info()
			if err != nil || info.IsDir() {
				continue
			}
			if info.ModTime().Before(cutoff) {
				os.Remove(filepath.Join(s.dir, entry.Name()))
			}
		}
	}
}
