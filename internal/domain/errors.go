package domain

import "errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	// (no query and no image, or both at once, or an unknown sort modifier)
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrImageDecode is returned when uploaded or candidate image data cannot be decoded
	ErrImageDecode = errors.New("unable to decode image data")

	// ErrCatalogFetch is returned when the upstream catalog is unreachable
	// or returns a malformed payload
	ErrCatalogFetch = errors.New("catalog fetch failed")

	// ErrImageFetch is returned when a per-candidate image download fails or times out
	ErrImageFetch = errors.New("image fetch failed")

	// ErrModerationRejected is returned when the content classifier flags
	// the uploaded image above the configured threshold
	ErrModerationRejected = errors.New("image rejected by content moderation")
)
