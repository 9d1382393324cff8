package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"elektropregled/common/database"
	commonlogger "elektropregled/common/logger"
	"elektropregled/internal/config"
	"elektropregled/internal/repository"
)

// Creates the elektropregled tables in the configured database. Safe to
// re-run: every statement is IF NOT EXISTS.
func main() {
	cfg := config.Load()

	logger, err := commonlogger.NewLogger(cfg.Log.Level, "console", "elektropregled-migrate")
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Cannot connect to database", zap.Error(err))
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := repository.ApplySchema(ctx, db); err != nil {
		logger.Fatal("Migration failed", zap.Error(err))
	}
	logger.Info("Migration completed",
		zap.String("database", cfg.Database.Database),
		zap.Int("statements", len(repository.Schema())),
	)
}
