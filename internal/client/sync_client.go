package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"elektropregled/internal/service"
)

// Sub-directories of the outbox that receive processed batches.
const (
	SyncedDir = "synced"
	FailedDir = "failed"
)

// Config of the upload client.
type Config struct {
	BaseURL    string
	Username   string
	Password   string
	Timeout    time.Duration
	RetryCount int
}

// Outcome of one batch upload.
type Outcome int

const (
	// OutcomeSynced: the server stored the batch.
	OutcomeSynced Outcome = iota
	// OutcomeDuplicate: the server had already stored the batch.
	OutcomeDuplicate
	// OutcomeRejected: the batch is invalid and will never be accepted.
	OutcomeRejected
	// OutcomeRetry: the server could not process the batch now.
	OutcomeRetry
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSynced:
		return "synced"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeRejected:
		return "rejected"
	default:
		return "retry"
	}
}

// UploadResult is the server's answer to one batch.
type UploadResult struct {
	Outcome  Outcome
	Status   int
	Message  string
	Response *service.SyncResponse
}

// Summary counts the outcomes of an outbox run.
type Summary struct {
	Synced     int
	Duplicates int
	Failed     int
	Pending    int
}

type apiError struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ErrLogin is returned when the server refuses the configured credentials.
var ErrLogin = errors.New("login failed")

// SyncClient uploads inspection batches queued while the device was offline.
type SyncClient struct {
	httpClient *resty.Client
	cfg        Config
	token      string
	logger     *zap.Logger
}

func NewSyncClient(cfg Config, logger *zap.Logger) *SyncClient {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(1 * time.Second).
		SetRetryMaxWaitTime(5 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &SyncClient{httpClient: httpClient, cfg: cfg, logger: logger}
}

// Login obtains an access token for the configured user.
func (c *SyncClient) Login(ctx context.Context) error {
	var out service.LoginResponse
	var apiErr apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(service.LoginRequest{Username: c.cfg.Username, Password: c.cfg.Password}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/v1/auth/login")
	if err != nil {
		return fmt.Errorf("failed to call login: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: %s (status: %d)", ErrLogin, apiErr.Message, resp.StatusCode())
	}
	c.token = out.AccessToken
	c.logger.Info("Logged in", zap.String("username", out.Username), zap.Int64("user_id", out.UserID))
	return nil
}

// Upload posts one sync request body. Transport errors and 5xx answers map to
// OutcomeRetry; an expired token is renewed once.
func (c *SyncClient) Upload(ctx context.Context, body []byte) (*UploadResult, error) {
	if c.token == "" {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
	}
	res, err := c.post(ctx, body)
	if err == nil && res.Status == http.StatusUnauthorized {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
		res, err = c.post(ctx, body)
	}
	return res, err
}

func (c *SyncClient) post(ctx context.Context, body []byte) (*UploadResult, error) {
	var out service.SyncResponse
	var apiErr apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetAuthToken(c.token).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post("/api/v1/pregled/sync")
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Warn("Sync upload failed", zap.Error(err))
		return &UploadResult{Outcome: OutcomeRetry, Message: err.Error()}, nil
	}

	res := &UploadResult{Status: resp.StatusCode(), Message: apiErr.Message}
	switch status := resp.StatusCode(); {
	case status == http.StatusOK:
		res.Outcome, res.Message, res.Response = OutcomeSynced, out.Message, &out
	case status == http.StatusConflict:
		res.Outcome = OutcomeDuplicate
	case status == http.StatusBadRequest, status == http.StatusNotFound:
		res.Outcome = OutcomeRejected
	default:
		res.Outcome = OutcomeRetry
	}
	return res, nil
}

// UploadDir uploads every *.json batch in dir in name order. Accepted and
// duplicate batches move to dir/synced, rejected ones to dir/failed, and
// batches that should be retried stay where they are.
func (c *SyncClient) UploadDir(ctx context.Context, dir string) (*Summary, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read outbox %s: %w", dir, err)
	}

	summary := &Summary{}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		body, err := os.ReadFile(path)
		if err != nil {
			return summary, fmt.Errorf("failed to read batch %s: %w", path, err)
		}

		res, err := c.Upload(ctx, body)
		if err != nil {
			return summary, err
		}
		logger := c.logger.With(
			zap.String("file", e.Name()),
			zap.String("outcome", res.Outcome.String()),
			zap.Int("status", res.Status),
			zap.String("message", res.Message),
		)

		switch res.Outcome {
		case OutcomeSynced:
			summary.Synced++
			logger.Info("Batch synced", zap.Int64("server_pregled_id", res.Response.ServerID))
			err = moveTo(dir, SyncedDir, e.Name())
		case OutcomeDuplicate:
			summary.Duplicates++
			logger.Info("Batch already on server")
			err = moveTo(dir, SyncedDir, e.Name())
		case OutcomeRejected:
			summary.Failed++
			logger.Warn("Batch rejected by server")
			err = moveTo(dir, FailedDir, e.Name())
		default:
			summary.Pending++
			logger.Warn("Batch left for next run")
		}
		if err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func moveTo(dir, sub, name string) error {
	target := filepath.Join(dir, sub)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if err := os.Rename(filepath.Join(dir, name), filepath.Join(target, name)); err != nil {
		return fmt.Errorf("failed to move %s: %w", name, err)
	}
	return nil
}
