package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/nutricoach/backend/config"
	"github.com/nutricoach/backend/internal/database"
	"github.com/nutricoach/backend/internal/logging"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Environment, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	if err := database.RunMigrations(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}
	logger.Info("migrations applied", zap.String("driver", cfg.DBDriver), zap.Int("models", len(database.Models())))
}
