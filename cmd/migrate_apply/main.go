package main

import (
	"context"
	"flag"
	"fmt"

	"carvfi/internal/config"
	"carvfi/internal/db"
	"carvfi/internal/logger"
	"carvfi/internal/migrations"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations to DATABASE_URL")
	flag.Parse()

	names, err := migrations.Names()
	if err != nil {
		logger.Fatal("list migrations", "error", err)
	}
	if !*apply {
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg := config.Load()
	logger.Init(cfg.Log)
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		logger.Fatal("DATABASE_URL not set")
	}

	ctx := context.Background()
	pool := db.Connect(ctx, cfg.DatabaseURL)
	defer pool.Close()

	if err := migrations.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", "error", err)
	}
	for _, name := range names {
		fmt.Printf("applied %s\n", name)
	}
}
