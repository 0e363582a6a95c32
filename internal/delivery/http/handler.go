package http

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jazmin-marketing/product-search-backend/internal/domain"
	"github.com/jazmin-marketing/product-search-backend/internal/usecase"
)

// maxUploadBytes caps the size of an uploaded query image
const maxUploadBytes = 10 << 20

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service *usecase.SearchService
}

// NewHandler creates a new HTTP handler
func NewHandler(service *usecase.SearchService) *Handler {
	return &Handler{service: service}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "product-search-backend",
		"version": "1.0.0",
	})
}

// Search handles both search paths. The request must carry either a
// `query` form/query value or an `image` multipart file, never both.
func (h *Handler) Search(c *gin.Context) {
	query := c.PostForm("query")
	if query == "" {
		query = c.Query("query")
	}

	file, fileErr := c.FormFile("image")
	hasImage := fileErr == nil && file != nil

	switch {
	case query == "" && !hasImage:
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide either a text query or an image"})
		return
	case query != "" && hasImage:
		c.JSON(http.StatusBadRequest, gin.H{"error": "text query and image are mutually exclusive"})
		return
	case hasImage:
		h.searchImage(c, file)
	default:
		h.searchText(c, query)
	}
}

// searchText relays the text query upstream and applies the sort modifier
func (h *Handler) searchText(c *gin.Context, query string) {
	sortParam := c.PostForm("sort")
	if sortParam == "" {
		sortParam = c.Query("sort")
	}

	order, err := domain.ParseSortOrder(sortParam)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown sort modifier: " + sortParam})
		return
	}

	results, err := h.service.SearchText(c.Request.Context(), query, order)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"results": results,
		"count":   len(results),
	})
}

// searchImage ranks the catalog against the uploaded image
func (h *Handler) searchImage(c *gin.Context, file *multipart.FileHeader) {
	if file.Size > maxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "uploaded image too large"})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded image"})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to read uploaded image"})
		return
	}

	results, features, err := h.service.SearchImage(c.Request.Context(), data)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := gin.H{
		"results": results,
		"count":   len(results),
	}
	if features.ThumbnailRef != "" {
		resp["thumbnail"] = features.ThumbnailRef
	}
	c.JSON(http.StatusOK, resp)
}

// InvalidateCache forces the next candidate fetch to bypass the cache
func (h *Handler) InvalidateCache(c *gin.Context) {
	h.service.InvalidateCache()
	c.Status(http.StatusNoContent)
}

// writeError maps domain errors to HTTP status codes
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrImageDecode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrModerationRejected):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCatalogFetch):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
