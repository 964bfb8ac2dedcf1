// Package main is the entry point for the PAI Intelligence Engine API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/pai-labs/engine/internal/api"
	"github.com/pai-labs/engine/internal/config"
	"github.com/pai-labs/engine/internal/embed"
	"github.com/pai-labs/engine/internal/health"
	"github.com/pai-labs/engine/internal/insight"
	"github.com/pai-labs/engine/internal/memory"
	"github.com/pai-labs/engine/internal/middleware"
	"github.com/pai-labs/engine/internal/news"
	sig "github.com/pai-labs/engine/internal/signal"
	"github.com/pai-labs/engine/internal/stats"
	"github.com/pai-labs/engine/internal/tracing"
	"github.com/pai-labs/engine/internal/vector"
)

const version = "0.1.0"

func main() {
	configFile := flag.String("config", "", "path to YAML config file")
	help := flag.Bool("help", false, "display help message")
	flag.Parse()

	if *help {
		fmt.Println("PAI Intelligence Engine API Server")
		fmt.Println()
		fmt.Println("Usage: api [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfg, errs := config.Load(*configFile)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintln(os.Stderr, "config:", err)
		}
		os.Exit(1)
	}

	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	summaryAttrs := make([]any, 0, 2*len(cfg.LogSummary()))
	for key, value := range cfg.LogSummary() {
		summaryAttrs = append(summaryAttrs, key, value)
	}
	logger.Info("configuration loaded", summaryAttrs...)

	// Tracing (no-op provider when disabled)
	exporterType := "otlp-grpc"
	if cfg.OTLPProtocol == "http" {
		exporterType = "otlp-http"
	}
	tracerProvider, err := tracing.NewProvider(tracing.Config{
		ServiceName:  "pai-intelligence-engine",
		Enabled:      cfg.TracingEnabled,
		Environment:  cfg.Env,
		ExporterType: exporterType,
		OTLPEndpoint: cfg.OTLPEndpoint,
		SamplingRate: cfg.TraceSamplingRate,
		InsecureMode: cfg.IsDevelopment(),
	})
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	// Providers and the vector index
	embedder := embed.NewGeminiEmbedder(cfg.GeminiAPIKey, logger, embed.WithModel(cfg.GeminiModel))
	index := vector.NewChromemIndex()
	generator := insight.NewAnthropicGenerator(cfg.AnthropicAPIKey, cfg.AnthropicModel)

	// Metrics
	registry := prometheus.NewRegistry()
	httpMetrics := middleware.NewMetrics()
	if err := httpMetrics.Register(registry); err != nil {
		logger.Error("failed to register HTTP metrics", "error", err)
		os.Exit(1)
	}
	signalMetrics := sig.NewMetrics()
	if err := signalMetrics.Register(registry); err != nil {
		logger.Error("failed to register signal metrics", "error", err)
		os.Exit(1)
	}

	// Services
	memoryStore := memory.NewStore(embedder, index, logger)
	insightService := insight.NewService(memoryStore, generator, logger)
	signalService := sig.NewService(embedder, index, logger, signalMetrics, stats.NewIngestStats())
	crawler := news.NewCrawler(logger)

	feeds, err := config.LoadFeeds(cfg.FeedsFile)
	if err != nil {
		logger.Error("failed to load feed sources", "error", err, "file", cfg.FeedsFile)
		os.Exit(1)
	}
	logger.Info("loaded feed sources", "count", len(feeds))

	// Rate limit store: Redis when configured, in-memory otherwise
	var rateLimitStore middleware.RateLimitStore
	var redisChecker api.HealthChecker
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rateLimitStore = middleware.NewRedisRateLimitStore(client).
			WithLogger(logger).
			WithMetrics(httpMetrics)
		redisChecker = health.NewRedisChecker(client)
		logger.Info("rate limiting backed by redis", "addr", cfg.RedisAddr)
	} else {
		memStore := middleware.NewInMemoryRateLimitStore()
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for range ticker.C {
				memStore.Cleanup()
			}
		}()
		rateLimitStore = memStore
	}

	rateLimit := middleware.DefaultGlobalLimit()
	if cfg.RateLimitPerMinute > 0 {
		rateLimit.RequestsPerWindow = cfg.RateLimitPerMinute
	}

	handlers := api.Handlers{
		Health: api.NewHealthHandlers(api.HealthHandlersConfig{
			IndexChecker: health.NewIndexChecker(index),
			RedisChecker: redisChecker,
			Version:      version,
		}),
		Vector:          api.NewVectorHandlers(embedder),
		Memory:          api.NewMemoryHandlers(memoryStore),
		Insight:         api.NewInsightHandlers(insightService),
		News:            api.NewNewsHandlers(crawler, signalService, feeds),
		Signal:          api.NewSignalHandlers(signalService, index, len(feeds)),
		MetricsRegistry: registry,
	}
	mux := api.NewRouter(handlers)

	// Middleware chain: RequestID -> Tracing -> Logging -> CORS -> HTTPMetrics -> RateLimiter
	handler := middleware.RequestID(
		middleware.Tracing("pai-intelligence-engine")(
			middleware.Logging(logger)(
				middleware.CORS(middleware.CORSConfig{
					AllowedOrigins: cfg.Origins(),
					AllowedMethods: []string{"GET", "POST", "OPTIONS"},
					AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
					MaxAge:         300,
				})(
					middleware.HTTPMetrics(httpMetrics)(
						middleware.RateLimiter(rateLimitStore, rateLimit, middleware.IPKeyFunc(), httpMetrics)(
							mux,
						),
					),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	if err := tracerProvider.Shutdown(ctx); err != nil {
		logger.Error("failed to flush traces", "error", err)
	}

	logger.Info("server stopped")
}
