package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ruckwell/achievement-service/internal/achievement"
	"github.com/ruckwell/achievement-service/internal/config"
	"github.com/ruckwell/achievement-service/internal/database"
	"github.com/ruckwell/achievement-service/internal/handler"
	"github.com/ruckwell/achievement-service/internal/repository"
	"github.com/ruckwell/achievement-service/internal/server"
	"github.com/ruckwell/achievement-service/internal/store/postgres"
	"github.com/ruckwell/achievement-service/internal/store/supabase"
	"github.com/ruckwell/achievement-service/migrations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	initLogger(cfg)

	repo, store, cleanup, err := buildStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize store gateway", "error", err, "backend", cfg.StoreBackend)
		os.Exit(1)
	}
	defer cleanup()

	svc := achievement.NewService(repo, cfg.CatalogCacheTTL, cfg.UserCacheTTL)

	handler.InitValidator()

	srv := server.NewServer(cfg.Port, cfg.APIKey, nil, store, svc)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-stop:
		slog.Info("Shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped")
}

// buildStore wires the configured store backend: the Supabase PostgREST
// gateway, or a direct PostgreSQL gateway with migrations applied.
func buildStore(cfg *config.Config) (repository.Achievement, handler.ReadinessChecker, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		connString := cfg.GetDBConnString()

		if err := database.MigrateUp(connString, migrations.FS); err != nil {
			return nil, nil, nil, err
		}

		pool, err := database.NewPool(connString, cfg.DBMaxConns, cfg.DBMaxConnIdleTime, cfg.DBMaxConnLifetime)
		if err != nil {
			return nil, nil, nil, err
		}
		return postgres.NewAchievementRepository(pool), pool, pool.Close, nil

	default:
		client := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseAnonKey, cfg.SupabaseServiceKey)
		return supabase.NewAchievementRepository(client), client, func() {}, nil
	}
}
