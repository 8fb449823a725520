package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/JonMunkholm/catalog/internal/cache"
	"github.com/JonMunkholm/catalog/internal/catalog"
	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/core"
	"github.com/JonMunkholm/catalog/internal/logging"
	"github.com/JonMunkholm/catalog/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open catalog store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStore()

	var listingCache core.ListingCache
	if cfg.CacheEnabled() {
		client, err := cache.NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			// The cache is optional.
			slog.Warn("listing cache disabled", "error", err)
		} else {
			defer client.Close()
			listingCache = cache.NewRedisCache(client, cfg.Cache.TTL)
			slog.Info("listing cache enabled", "ttl", cfg.Cache.TTL)
		}
	}

	service := core.NewService(store, listingCache, cfg)
	server := web.NewServer(service, cfg)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active uploads to complete (with timeout)
		if status := service.UploadLimiterStatus(); status.Active > 0 {
			slog.Info("waiting for uploads to complete", "active", status.Active)
			if err := service.WaitForUploads(shutdownCtx); err != nil {
				slog.Warn("uploads did not complete in time", "error", err)
			} else {
				slog.Info("all uploads completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}

// openStore builds the configured catalog store and returns a func that
// releases its resources.
func openStore(ctx context.Context, cfg *config.Config) (core.Store, func(), error) {
	if strings.EqualFold(cfg.Store.Driver, config.DriverMemory) {
		slog.Warn("using in-memory catalog store; data is lost on restart")
		return catalog.NewMemoryStore(), func() {}, nil
	}

	pool, err := catalog.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	if err := catalog.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, err
	}

	slog.Info("connected to database",
		"max_conns", cfg.Database.MaxConns,
		"min_conns", cfg.Database.MinConns,
	)
	return catalog.NewPostgresStore(pool), pool.Close, nil
}
