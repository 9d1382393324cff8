package main

import (
	"context"
	"flag"
	"os"
	"time"

	"go.uber.org/zap"

	"elektropregled/common/database"
	commonlogger "elektropregled/common/logger"
	commonredis "elektropregled/common/redis"
	"elektropregled/internal/config"
	"elektropregled/internal/domain"
	"elektropregled/internal/repository"
	"elektropregled/internal/seed"
	"elektropregled/internal/service"
	"elektropregled/internal/store"
)

// Loads reference data (facilities, fields, equipment types with their
// checklists, equipment) from a workbook into the configured database.
func main() {
	workbookPath := flag.String("workbook", "testniPodaci.xlsx", "reference data workbook")
	mappingPath := flag.String("mapping", "", "checklist mapping JSON (optional)")
	username := flag.String("user", "", "login name of an account to create or update")
	password := flag.String("password", "", "password of -user")
	firstName := flag.String("first-name", "", "first name of -user")
	lastName := flag.String("last-name", "", "last name of -user")
	admin := flag.Bool("admin", false, "give -user the ADMIN role")
	flag.Parse()

	cfg := config.Load()
	logger, err := commonlogger.NewLogger(cfg.Log.Level, "console", "elektropregled-seed")
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	f, err := os.Open(*workbookPath)
	if err != nil {
		logger.Fatal("Cannot open workbook", zap.String("path", *workbookPath), zap.Error(err))
	}
	wb, err := seed.ReadWorkbook(f)
	f.Close()
	if err != nil {
		logger.Fatal("Cannot read workbook", zap.Error(err))
	}

	var mapping seed.ChecklistMapping
	if *mappingPath != "" {
		mf, err := os.Open(*mappingPath)
		if err != nil {
			logger.Fatal("Cannot open checklist mapping", zap.String("path", *mappingPath), zap.Error(err))
		}
		mapping, err = seed.LoadChecklistMapping(mf)
		mf.Close()
		if err != nil {
			logger.Fatal("Cannot read checklist mapping", zap.Error(err))
		}
	} else {
		logger.Info("No checklist mapping given, every type gets the default checklist")
	}

	var user *domain.User
	if *username != "" {
		if *password == "" {
			logger.Fatal("-password is required with -user")
		}
		hash, err := service.HashPassword(*password)
		if err != nil {
			logger.Fatal("Failed to hash password", zap.Error(err))
		}
		role := domain.RoleWorker
		if *admin {
			role = domain.RoleAdmin
		}
		user = &domain.User{FirstName: *firstName, LastName: *lastName, Username: *username, PasswordHash: hash, Role: role}
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Cannot connect to database", zap.Error(err))
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	report, err := seed.NewImporter(repository.NewPostgresReferenceRepository(db), logger).Import(ctx, wb, mapping, user)
	if err != nil {
		logger.Fatal("Import failed, nothing was written", zap.Error(err))
	}
	if len(report.Skipped) > 0 {
		logger.Warn("Devices skipped", zap.Int64s("id_ured", report.Skipped))
	}

	// checklists may have changed under the API's parameter cache
	if cfg.RedisEnabled {
		rc := commonredis.NewRedisClient(&cfg.Redis)
		defer commonredis.Close(rc)
		n, err := repository.InvalidateParameterCache(ctx, store.NewRedisKV(rc))
		if err != nil {
			logger.Warn("Failed to invalidate parameter cache", zap.Error(err))
		} else {
			logger.Info("Parameter cache invalidated", zap.Int("keys", n))
		}
	}
}
