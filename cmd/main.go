package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bilgisen/khabar/internal/ai"
	"github.com/bilgisen/khabar/internal/api"
	"github.com/bilgisen/khabar/internal/archive"
	"github.com/bilgisen/khabar/internal/cache"
	"github.com/bilgisen/khabar/internal/config"
	"github.com/bilgisen/khabar/internal/feed"
	"github.com/bilgisen/khabar/internal/logger"
	"github.com/bilgisen/khabar/internal/middleware"
	"github.com/bilgisen/khabar/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	output := "stdout"
	if cfg.LogFile != "" {
		output = cfg.LogFile
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: output,
		Pretty: !cfg.IsProduction(),
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Str("env", cfg.Env).Msg("Starting application...")

	ctx := context.Background()

	// Caches: a long tier for the general listings and a short one for
	// processing runs.
	var listCache, processCache cache.Store
	switch cfg.CacheBackend {
	case "redis":
		redisClient, err := cache.NewRedisClient(cfg.RedisURL, cfg.RedisPrefix, cfg.CacheTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize Redis client")
		}
		defer func() {
			log.Info().Msg("Closing Redis client...")
			if err := redisClient.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing Redis client")
			}
		}()
		if cfg.CacheFlushOnStart {
			if err := redisClient.Clear(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to flush Redis cache")
			} else {
				log.Info().Str("prefix", cfg.RedisPrefix).Msg("Flushed Redis cache")
			}
		}
		listCache = redisClient
		processCache = redisClient.WithTTL(cfg.ProcessCacheTTL)
	default:
		listCache = cache.NewMemory(cfg.CacheTTL, nil)
		processCache = cache.NewMemory(cfg.ProcessCacheTTL, nil)
	}

	store, err := storage.Open(ctx, cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("Failed to open database")
	}
	defer store.Close()

	catalog, err := feed.LoadCatalog(cfg.FeedsConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load feed catalog")
	}
	registry := feed.BuildRegistry(catalog, feed.SourceOptions{
		Timeout:     cfg.FeedTimeout,
		Placeholder: cfg.PlaceholderImage,
		LookupURL:   os.LookupEnv,
	})
	for _, sc := range catalog.Sources {
		if _, ok := os.LookupEnv(sc.URLEnv); !ok {
			log.Warn().Str("source", sc.Name).Str("env", sc.URLEnv).Msg("Feed URL not configured")
		}
	}

	aggregator := feed.NewAggregator(registry, listCache,
		feed.WithWordLimit(cfg.ContentWordLimit),
		feed.WithConcurrency(cfg.MaxConcurrency),
	)

	// LLM backend is optional; without a key the AI routes answer 503.
	var (
		completer  ai.Completer
		summarizer *ai.Summarizer
	)
	if key := cfg.LLMKey(); key != "" {
		switch cfg.LLMProvider {
		case "gemini":
			completer = ai.NewGeminiClient(key, cfg.AIModel, cfg.AITimeout)
		default:
			completer = ai.NewOpenAIClient(cfg.LLMBaseURL, key, cfg.AIModel, cfg.AITimeout)
		}
		summarizer = ai.NewSummarizer(completer, store, cfg.AIModel, nil)
	} else {
		log.Warn().Str("provider", cfg.LLMProvider).Msg("LLM credentials missing, summarization disabled")
	}

	var procOpts []feed.ProcessorOption
	if cfg.SummarizeOnProcess && summarizer != nil {
		procOpts = append(procOpts, feed.WithSummarizer(summarizer))
	}
	if cfg.ArchiveEnabled() {
		s3Client, err := archive.NewR2Client(ctx, archive.Config{
			Endpoint:  cfg.R2EndpointURL(),
			AccessKey: cfg.R2AccessKey,
			SecretKey: cfg.R2SecretKey,
			Bucket:    cfg.R2Bucket,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize R2 client")
		}
		procOpts = append(procOpts, feed.WithArchiver(archive.New(s3Client, cfg.R2Bucket, nil)))
	}
	processor := feed.NewProcessor(aggregator, processCache, storage.NewGate(store, nil), store, procOpts...)

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger())

	api.SetupRoutes(app, api.NewHandlers(api.Deps{
		Aggregator: aggregator,
		Processor:  processor,
		Store:      store,
		Summarizer: summarizer,
		Completer:  completer,
		Model:      cfg.AIModel,
	}), cfg.AdminAPIKey)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
