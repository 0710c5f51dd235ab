package main

import (
	"context"
	"flag"

	"carvfi/internal/config"
	"carvfi/internal/db"
	"carvfi/internal/logger"
	"carvfi/internal/repository"
	"carvfi/internal/service"
)

func main() {
	wallet := flag.String("wallet", "7xKXtg2CW87d97TXJSDpbD5jBkheTqA83TZRuJosgAsU", "wallet address of the demo user")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Log)
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool := db.Connect(ctx, cfg.DatabaseURL)
	store := repository.NewPostgresStore(pool)
	defer store.Close()

	svc := service.NewEngagementService(store, service.Options{Location: cfg.Location})
	u, err := svc.ResolveUser(ctx, *wallet)
	if err != nil {
		logger.Fatal("resolve user failed", "error", err)
	}
	logger.Info("user ready",
		"id", u.ID,
		"username", u.Username,
		"wallet", u.WalletAddress,
		"total_points", u.TotalPoints,
		"created_at", u.CreatedAt,
	)

	service.InitJWT(cfg.JWTSecret, cfg.JWTTTL)
	token, err := service.GenerateJWT(u.ID, u.WalletAddress)
	if err != nil {
		logger.Fatal("failed to generate token", "error", err)
	}
	logger.Info("token", "token", token)
}
