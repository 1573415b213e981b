package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"jsonblob/internal/blob"
	"jsonblob/internal/cache"
	"jsonblob/internal/config"
	"jsonblob/internal/server"
	"jsonblob/internal/store"
)

const shutdownTimeout = 10 * time.Second

func newSrvCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "srv",
		Short: "Run the jsonblob API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg == nil {
				return fmt.Errorf("config not initialized")
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := slog.Default().With("component", "server")

			addr, err := server.ListenAddr(cfg.APIURL)
			if err != nil {
				return err
			}

			st, err := openStore(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer st.Close()

			blobCache, err := openCache(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			if blobCache != nil {
				defer blobCache.Close()
			}

			cleanupFrequency, err := cfg.CleanupFrequencyDuration()
			if err != nil {
				return err
			}
			accessTTL, err := cfg.BlobAccessTTLDuration()
			if err != nil {
				return err
			}

			registry := prometheus.NewRegistry()
			registry.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)

			manager := blob.NewManager(st, blob.Options{
				CleanupFrequency: cleanupFrequency,
				AccessTTL:        accessTTL,
				Cache:            blobCache,
				Registerer:       registry,
				Logger:           slog.Default().With("component", "blob"),
			})
			manager.Start()

			srv := server.New(addr, manager, logger, server.Options{
				Engine:          cfg.Engine,
				Version:         version,
				CacheEnabled:    blobCache != nil,
				AdminTokenHash:  cfg.AdminTokenHash,
				MetricsRegistry: registry,
			})

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				shutdownManager(manager, logger)
				return err
			case <-ctx.Done():
			}

			// Drain in-flight requests before the final access-time flush so
			// late reads still land in the pending map.
			logger.Info("shutting down")
			drainCtx, drainCancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer drainCancel()
			if err := srv.Shutdown(drainCtx); err != nil {
				logger.Warn("drain http server", "error", err)
			}
			<-errCh

			shutdownManager(manager, logger)
			return nil
		},
	}
}

// shutdownManager stops background loops and flushes pending access times.
func shutdownManager(manager *blob.Manager, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	manager.Stop(ctx)
	logger.Info("manager stopped")
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.BlobStore, error) {
	switch cfg.Engine {
	case config.EngineMongo:
		logger.Info("connecting to mongodb", "database", cfg.Mongo.Database, "collection", cfg.Mongo.Collection)
		return store.OpenMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection)
	default:
		if cfg.DBPath == "" {
			return nil, fmt.Errorf("db path is required")
		}
		logger.Info("opening database", "path", cfg.DBPath)
		return store.Open(cfg.DBPath)
	}
}

func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*cache.Cache, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	ttl, err := cfg.RedisTTLDuration()
	if err != nil {
		return nil, err
	}
	logger.Info("connecting to redis", "addr", cfg.Redis.Addr, "ttl", ttl)
	return cache.New(ctx, cfg.Redis.Addr, ttl)
}
