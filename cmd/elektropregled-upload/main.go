package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	commonlogger "elektropregled/common/logger"
	"elektropregled/internal/client"
)

// Uploads inspection batches saved while offline. Each *.json file in the
// outbox is one sync request body.
func main() {
	server := flag.String("server", envOr("ELEKTROPREGLED_URL", "http://localhost:8080"), "API base URL")
	outbox := flag.String("dir", "outbox", "directory with pending batches")
	username := flag.String("user", envOr("ELEKTROPREGLED_USER", ""), "login name")
	password := flag.String("password", envOr("ELEKTROPREGLED_PASSWORD", ""), "password")
	retries := flag.Int("retries", 3, "transport retries per request")
	timeout := flag.Duration("timeout", 30*time.Second, "per request timeout")
	flag.Parse()

	logger, err := commonlogger.NewLogger(envOr("LOG_LEVEL", "info"), "console", "elektropregled-upload")
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	if *username == "" || *password == "" {
		logger.Fatal("-user and -password are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := client.NewSyncClient(client.Config{
		BaseURL:    *server,
		Username:   *username,
		Password:   *password,
		Timeout:    *timeout,
		RetryCount: *retries,
	}, logger)

	summary, err := c.UploadDir(ctx, *outbox)
	if summary != nil {
		logger.Info("Upload finished",
			zap.Int("synced", summary.Synced),
			zap.Int("duplicates", summary.Duplicates),
			zap.Int("failed", summary.Failed),
			zap.Int("pending", summary.Pending),
		)
	}
	if err != nil {
		logger.Error("Upload aborted", zap.Error(err))
		os.Exit(1)
	}
	if summary.Pending > 0 {
		os.Exit(2)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
