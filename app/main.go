package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"log/slog"

	"github.com/dkenzhe/curator/app/access"
	"github.com/dkenzhe/curator/app/api"
	"github.com/dkenzhe/curator/app/cache"
	"github.com/dkenzhe/curator/app/catalog"
	"github.com/dkenzhe/curator/app/cfg"
	"github.com/dkenzhe/curator/app/database"
	"github.com/dkenzhe/curator/app/filters"
	"github.com/dkenzhe/curator/app/llm"
	"github.com/dkenzhe/curator/app/recommend"
	"github.com/dkenzhe/curator/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting Curator server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	migrationVersion, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", migrationVersion, "dirty", dirty)

	contentRepo := database.NewContentRepository(db)
	accessRepo := database.NewAccessRepository(db)

	normalizer, err := filters.NewNormalizer()
	if err != nil {
		slog.Error("Failed to load filter vocabulary", "error", err)
		os.Exit(1)
	}

	resultCache := cache.New(time.Duration(appCfg.CacheTTL)*time.Second, appCfg.CacheMaxSize)

	generator := llm.NewClient(appCfg.OpenRouterURL, appCfg.OpenRouterKey, appCfg.OpenRouterModel,
		appCfg.AppURL, time.Duration(appCfg.GeneratorTimeout)*time.Second, appCfg.GeneratorRetries)

	pipeline := recommend.NewPipeline(generator,
		recommend.NewBooksStrategy(catalog.NewBooksClient(appCfg.GoogleBooksKey)),
		recommend.NewMoviesStrategy(catalog.NewMoviesClient(appCfg.TMDBKey)),
		recommend.NewMusicStrategy(catalog.NewMusicClient(appCfg.SpotifyClientID, appCfg.SpotifyClientSecret)),
	)
	local := recommend.NewLocalCatalog(contentRepo)
	accessService := access.NewService(accessRepo)

	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount)
	scheduler := tasks.NewScheduler(resultCache, accessService)
	scheduler.Start()
	defer scheduler.Stop()

	handler := api.NewHandler(normalizer, resultCache, pipeline, local,
		contentRepo, accessService, appCfg.AccessRequired)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		// Generator retries can keep a request open well past a typical
		// response window
		WriteTimeout: 180 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port, "access_required", appCfg.AccessRequired)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	slog.Info("Curator server started")

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}
