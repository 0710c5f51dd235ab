package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carvfi/internal/cache"
	"carvfi/internal/config"
	"carvfi/internal/db"
	httpServer "carvfi/internal/http"
	"carvfi/internal/http/handlers"
	"carvfi/internal/http/middleware"
	"carvfi/internal/logger"
	"carvfi/internal/migrations"
	"carvfi/internal/repository"
	"carvfi/internal/service"
	"carvfi/internal/ws"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Log)
	defer logger.Sync()

	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)

	ctx := context.Background()
	store := openStore(ctx, cfg)
	defer store.Close()

	rc := cache.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if rc != nil {
		defer rc.Close()
	}
	middleware.UseRedis(rc)
	lbCache := cache.New(rc)

	hub := ws.NewHub()
	svc := service.NewEngagementService(store, service.Options{
		Location:       cfg.Location,
		ChatDailyLimit: cfg.ChatDailyLimit,
		Cache:          lbCache,
		LeaderboardTTL: cfg.LeaderboardCacheTTL,
		Publisher:      hub,
	})
	if err := svc.SeedPartnerProjects(ctx); err != nil {
		logger.Fatal("failed to seed partner projects", "error", err)
	}

	checks := map[string]handlers.Check{"store": store.Ping}
	if lbCache.Enabled() {
		checks["redis"] = lbCache.Ping
	}
	health := handlers.NewHealthHandler(cfg.AppVersion, checks)

	r := httpServer.NewRouter(cfg)
	httpServer.RegisterRoutes(r, handlers.NewHandler(svc), health, hub, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "version", cfg.AppVersion)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}

// openStore picks postgres when DATABASE_URL is set and the in-memory
// store otherwise.
func openStore(ctx context.Context, cfg *config.Config) repository.Store {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		return repository.NewMemoryStore()
	}

	pool := db.Connect(ctx, cfg.DatabaseURL)
	if err := migrations.Apply(ctx, pool); err != nil {
		pool.Close()
		logger.Fatal("failed to apply migrations", "error", err)
	}
	return repository.NewPostgresStore(pool)
}
