package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/jazmin-marketing/product-search-backend/config"
	httpDelivery "github.com/jazmin-marketing/product-search-backend/internal/delivery/http"
	"github.com/jazmin-marketing/product-search-backend/internal/domain"
	"github.com/jazmin-marketing/product-search-backend/internal/infrastructure/cache"
	"github.com/jazmin-marketing/product-search-backend/internal/infrastructure/catalog"
	"github.com/jazmin-marketing/product-search-backend/internal/infrastructure/imagefetch"
	"github.com/jazmin-marketing/product-search-backend/internal/infrastructure/moderation"
	"github.com/jazmin-marketing/product-search-backend/internal/infrastructure/thumbs"
	"github.com/jazmin-marketing/product-search-backend/internal/usecase"
)

func main() {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Product Search Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)
	log.Printf("Catalog: %s (page size %d)", cfg.Catalog.BaseURL, cfg.Catalog.PageSize)
	log.Printf("Cache TTL: %s", cfg.Cache.TTL)

	// Initialize infrastructure dependencies
	catalogClient := catalog.NewClient(cfg.Catalog.AccessToken, cfg.Catalog.BaseURL, cfg.Catalog.PageSize)

	// Enable debug mode in development environment
	if cfg.Server.Environment == "development" {
		catalogClient.SetDebug(true)
		log.Printf("Catalog client debug mode enabled")
	}

	productCache := cache.NewProductCache(catalogClient, cfg.Cache.TTL)
	imageFetcher := imagefetch.NewFetcher(cfg.Ranking.FetchTimeout)

	var moderator domain.Moderator
	if cfg.Moderation.Enabled {
		moderator = moderation.NewClient(cfg.Moderation.APIKey, cfg.Moderation.BaseURL)
		log.Printf("Moderation enabled: %s (threshold %.2f, labels %v)",
			cfg.Moderation.BaseURL, cfg.Moderation.Threshold, cfg.Moderation.DisallowedLabels)
	} else {
		log.Printf("Moderation disabled")
	}

	thumbStore, err := thumbs.NewStore(cfg.Thumbnails.Dir, cfg.Thumbnails.MaxAge)
	if err != nil {
		log.Fatalf("Failed to initialize thumbnail store: %v", err)
	}

	// Initialize usecase layer
	ranker := usecase.NewRanker(imageFetcher, usecase.RankerConfig{
		TopN:         cfg.Ranking.TopN,
		FetchWorkers: cfg.Ranking.FetchWorkers,
		FetchTimeout: cfg.Ranking.FetchTimeout,
	})

	searchService := usecase.NewSearchService(
		productCache,
		catalogClient,
		ranker,
		moderator,
		thumbStore,
		usecase.SearchServiceConfig{
			ModerationThreshold: cfg.Moderation.Threshold,
			DisallowedLabels:    cfg.Moderation.DisallowedLabels,
		},
	)

	log.Printf("Ranking: topN=%d, workers=%d, fetch timeout=%s",
		cfg.Ranking.TopN, cfg.Ranking.FetchWorkers, cfg.Ranking.FetchTimeout)

	// Create HTTP handler with dependencies
	handler := httpDelivery.NewHandler(searchService)

	// Setup router
	router := httpDelivery.SetupRouter(cfg, handler)

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	// Set log flags for better debugging
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
