package main

import (
	"context"
	"flag"
	"fmt"

	"task_manager/internal/config"
	"task_manager/internal/db"
	"task_manager/internal/logger"
)

func main() {
	apply := flag.Bool("apply", false, "apply migrations (default lists them)")
	flag.Parse()

	names, err := db.MigrationNames()
	if err != nil {
		logger.Fatal("list migrations", "error", err)
	}
	if !*apply {
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("invalid configuration", "error", err)
	}
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	if cfg.InMemory() {
		logger.Fatal("migrations need a postgres DATABASE_URL")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database unavailable", "error", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		pool.Close()
		logger.Fatal("migrations failed", "error", err)
	}
	for _, name := range names {
		fmt.Printf("applied %s\n", name)
	}
}
