package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"elektropregled/common/database"
	commonlogger "elektropregled/common/logger"
	commonmqtt "elektropregled/common/mqtt"
	commonredis "elektropregled/common/redis"
	"elektropregled/internal/config"
	httpapi "elektropregled/internal/http"
	mqttpub "elektropregled/internal/mqtt"
	"elektropregled/internal/repository"
	"elektropregled/internal/service"
	"elektropregled/internal/store"
)

func main() {
	cfg := config.Load()

	logger, err := commonlogger.NewLogger(cfg.Log.Level, cfg.Log.Format, "elektropregled-api")
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	var (
		reference   repository.ReferenceRepository
		inspections repository.InspectionsRepository
		users       repository.UsersRepository
		db          *sql.DB
	)
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			logger.Info("DB enabled for elektropregled", zap.String("database", cfg.Database.Database))
		} else {
			logger.Warn("DB enabled but connection failed, falling back to memory store", zap.Error(err))
		}
	}
	if db != nil {
		defer database.Close(db)
		reference = repository.NewPostgresReferenceRepository(db)
		inspections = repository.NewPostgresInspectionsRepository(db)
		users = repository.NewPostgresUsersRepository(db)
	} else {
		// No DB: serve the demo facility from memory so the mobile client can be tested.
		mem := repository.NewMemoryStore()
		hash, err := service.HashPassword(repository.DemoPassword)
		if err != nil {
			logger.Fatal("Failed to hash demo password", zap.Error(err))
		}
		if err := repository.SeedDemo(context.Background(), mem, hash); err != nil {
			logger.Fatal("Failed to seed demo data", zap.Error(err))
		}
		logger.Info("Running on in-memory store", zap.String("demo_user", repository.DemoUsername))
		reference, inspections, users = mem, mem, mem
	}

	if cfg.RedisEnabled {
		rc := commonredis.NewRedisClient(&cfg.Redis)
		defer commonredis.Close(rc)
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := commonredis.Ping(pingCtx, rc); err != nil {
			logger.Warn("Redis unreachable, parameter cache will degrade to the store", zap.Error(err))
		}
		cancel()
		reference = repository.NewCachedParameters(reference, store.NewRedisKV(rc), cfg.ParamCacheTTL, logger)
	}

	var notifier service.SyncNotifier
	if cfg.MQTT.Enabled {
		mc, err := commonmqtt.NewClient(&cfg.MQTT.MQTTConfig, logger)
		if err != nil {
			logger.Warn("MQTT enabled but connection failed, sync events disabled", zap.Error(err))
		} else {
			defer mc.Disconnect()
			notifier = mqttpub.NewSyncPublisher(mc, cfg.MQTT.Topic, mc.QoS(), logger)
			logger.Info("Publishing sync events", zap.String("topic", cfg.MQTT.Topic))
		}
	}

	tokens := service.NewJWTIssuer(cfg.JWT.Secret, cfg.JWT.Expiration)
	auth := httpapi.RequireAuth(tokens, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterHealthRoutes()
	router.RegisterAuthRoutes(httpapi.NewAuthHandler(
		service.NewAuthService(users, service.BcryptVerifier{}, tokens, logger), logger))
	router.RegisterFacilityRoutes(httpapi.NewFacilityHandler(
		service.NewFacilityService(reference, inspections, logger), logger), auth)
	router.RegisterSyncRoutes(httpapi.NewSyncHandler(
		service.NewSyncService(inspections, notifier, logger), logger), auth)

	srv := service.NewServer(cfg.HTTP.Addr, httpapi.AccessLog(router, logger), logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
}
