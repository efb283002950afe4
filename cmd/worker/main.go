// Package main provides the entry point for the venuerank service.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm/logger"

	"github.com/thebtf/venuerank/internal/config"
	gormstore "github.com/thebtf/venuerank/internal/db/gorm"
	"github.com/thebtf/venuerank/internal/embedding"
	"github.com/thebtf/venuerank/internal/enrichment"
	"github.com/thebtf/venuerank/internal/facility"
	"github.com/thebtf/venuerank/internal/maintenance"
	"github.com/thebtf/venuerank/internal/recommend"
	"github.com/thebtf/venuerank/internal/telemetry"
	"github.com/thebtf/venuerank/internal/vector/pgvector"
	"github.com/thebtf/venuerank/internal/worker"
)

var Version = "dev"

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	log.Info().
		Str("version", Version).
		Msg("Starting venuerank")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Database (runs migrations)
	store, err := gormstore.NewStore(gormstore.Config{
		DSN:           cfg.PostgresDSN,
		MaxConns:      cfg.MaxConns,
		LogLevel:      logger.Silent,
		EmbeddingDims: cfg.EmbeddingDimensions,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}

	catalogStore := gormstore.NewCatalogStore(store)
	activityStore := gormstore.NewActivityStore(store)

	// Vector store on the same PostgreSQL instance
	vectors, err := pgvector.NewClient(pgvector.Config{DB: store.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create vector store")
	}

	// Embedding pipeline
	provider, err := embedding.NewOpenAIProvider(embedding.OpenAIConfig{
		BaseURL:    cfg.EmbeddingBaseURL,
		APIKey:     cfg.EmbeddingAPIKey,
		Model:      cfg.EmbeddingModel,
		Dimensions: cfg.EmbeddingDimensions,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create embedding provider")
	}
	embedder := embedding.NewService(provider, embedding.NewCache(cfg.EmbeddingCacheSize))

	metrics := telemetry.NewMetrics()

	// Hotel detail enrichment (optional)
	var enricher recommend.Enricher
	if cfg.ProviderBaseURL != "" {
		detailsProvider, err := enrichment.NewHTTPProvider(enrichment.HTTPConfig{
			BaseURL:  cfg.ProviderBaseURL,
			Username: cfg.ProviderUsername,
			Password: cfg.ProviderPassword,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create enrichment provider")
		}
		ttl := time.Duration(cfg.ProviderCacheTTL) * time.Hour
		var cache enrichment.Cache
		if cfg.RedisAddr != "" {
			cache = enrichment.NewRedisCache(cfg.RedisAddr, ttl)
			log.Info().Str("addr", cfg.RedisAddr).Msg("Using Redis enrichment cache")
		} else {
			cache = enrichment.NewMemoryCache(ttl)
		}
		svc := enrichment.NewService(detailsProvider, cache)
		svc.SetMetrics(metrics)
		enricher = svc
	} else {
		log.Info().Msg("No enrichment provider configured, scoring on local data")
	}

	// LLM facility scorer (optional, rule scorer covers its absence)
	var scorer recommend.FacilityScorer
	if cfg.ScoringAPIKey != "" {
		chat, err := facility.NewOpenAIChatClient(facility.ChatConfig{
			BaseURL: cfg.ScoringBaseURL,
			APIKey:  cfg.ScoringAPIKey,
			Model:   cfg.ScoringModel,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create chat client")
		}
		sc, err := facility.NewScorer(chat, cfg.ScoringTokenBudget)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create facility scorer")
		}
		scorer = sc
	} else {
		log.Info().Msg("No scoring API key configured, using rule-based facility scoring")
	}

	// Recommendation engine
	recommender, err := recommend.NewService(recommend.Config{
		CandidateLimit:     cfg.CandidateLimit,
		TrendingLimit:      cfg.TrendingLimit,
		RecomputeQueueSize: cfg.RecomputeQueueSize,
	}, catalogStore, activityStore, vectors, embedder, enricher, scorer)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create recommendation service")
	}
	recommender.SetMetrics(metrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	recommender.Start(ctx)

	// Scheduled maintenance
	maint := maintenance.NewService(activityStore, catalogStore, recommender, cfg, log.Logger)
	go maint.Start(ctx)

	// HTTP service
	svc := worker.NewService(Version, cfg, recommender, catalogStore, store)
	svc.SetMetrics(metrics)
	if err := svc.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start HTTP service")
	}

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := svc.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}

	cancel()
	maint.Stop()
	maint.Wait()
	recommender.Stop()

	if err := vectors.Close(); err != nil {
		log.Error().Err(err).Msg("Vector store close error")
	}
	if err := store.Close(); err != nil {
		log.Error().Err(err).Msg("Database close error")
	}

	log.Info().Msg("Shutdown complete")
}
