package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recipe-extraction-api/internal/api"
	"recipe-extraction-api/internal/browser"
	"recipe-extraction-api/internal/cache"
	"recipe-extraction-api/internal/config"
	"recipe-extraction-api/internal/extractor"
	"recipe-extraction-api/internal/fetcher"
	"recipe-extraction-api/internal/logger"
	"recipe-extraction-api/internal/metrics"
	"recipe-extraction-api/internal/recipe"
	"recipe-extraction-api/internal/service"
	"recipe-extraction-api/internal/store"
	"recipe-extraction-api/internal/worker"
)

func main() {
	appConfig, err := config.LoadConfig()
	if err != nil {
		logger.LogError("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.Setup(appConfig.LogLevel, appConfig.LogFormat)

	db, err := store.Open(appConfig.DBDriver, appConfig.DBDSN)
	if err != nil {
		logger.LogError("Failed to open database", "driver", appConfig.DBDriver, "error", err)
		os.Exit(1)
	}

	// Headless rendering is only used for social pages.
	var renderer fetcher.Fetcher
	switch appConfig.Renderer {
	case "rod":
		browserPool, err := browser.NewPool(appConfig.BrowserPoolSize, appConfig.UserAgent)
		if err != nil {
			logger.LogError("Failed to create browser pool", "error", err)
			os.Exit(1)
		}
		defer browserPool.Cleanup()
		renderer = fetcher.NewRodRenderer(browserPool, appConfig.FetchTimeout)
	case "chromedp":
		renderer = fetcher.NewChromedpRenderer(appConfig.UserAgent, appConfig.FetchTimeout)
	}
	httpFetcher := fetcher.NewHTTPFetcher(appConfig.UserAgent, appConfig.FetchTimeout, appConfig.MaxBodyBytes)
	fetchers := fetcher.NewRouter(httpFetcher, renderer)

	strategies := extractor.PageStrategies()
	if appConfig.HasYouTubeConfig() {
		yt, err := extractor.NewYouTubeSource(context.Background(), appConfig.YouTubeAPIKey)
		if err != nil {
			slog.Warn("YouTube client unavailable, skipping video strategy", "error", err)
		} else {
			strategies = append(strategies, extractor.VideoDescriptionStrategy(yt))
		}
	}
	strategies = append(strategies, extractor.DocumentTextStrategy())
	orchestrator := extractor.NewOrchestrator(fetchers, appConfig.FetchTimeout, strategies...)

	var appCache cache.Cache = cache.Noop{}
	switch appConfig.CacheBackend {
	case "memory":
		appCache = cache.NewShardedMemoryCache(appConfig.CacheTTL, 2*appConfig.CacheTTL)
	case "redis":
		redisCache := cache.NewRedisCache(appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
		defer redisCache.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisCache.Ping(pingCtx); err != nil {
			slog.Warn("Redis not reachable, cache lookups will miss until it is", "addr", appConfig.RedisAddr, "error", err)
		}
		cancel()
		appCache = redisCache
	}

	mapper := recipe.NewMapper(appConfig.PlaceholderImageURL)
	repo := store.NewRecipeRepository(db, mapper)
	extraction := service.NewExtraction(orchestrator, repo, mapper, appCache, appConfig.CacheTTL)

	workerPool := worker.NewWorkerPool(extraction, appConfig.WorkerPoolSize, appConfig.WorkerQueueSize)
	workerPool.Start()
	defer workerPool.Stop()

	handler := api.NewRecipeHandler(extraction, workerPool, repo, orchestrator.Strategies())
	router := api.NewRouter(handler, appConfig.RequestTimeout, metrics.Handler())

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appConfig.GetPort()),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: appConfig.RequestTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", appConfig.GetPort(), "strategies", orchestrator.Strategies(),
			"renderer", appConfig.Renderer, "cache", appConfig.CacheBackend, "db", appConfig.DBDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.LogError("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited gracefully")
}
