package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"elektropregled/internal/domain"
	"elektropregled/internal/store"
)

const paramCachePrefix = "elektropregled:params:type:"

// CachedParameters is a ReferenceRepository whose ParametersByType reads
// through a KV cache. Cache failures fall back to the wrapped repository.
type CachedParameters struct {
	ReferenceRepository
	kv     store.KV
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedParameters(inner ReferenceRepository, kv store.KV, ttl time.Duration, logger *zap.Logger) *CachedParameters {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedParameters{ReferenceRepository: inner, kv: kv, ttl: ttl, logger: logger}
}

func paramCacheKey(typeID int64) string {
	return fmt.Sprintf("%s%d", paramCachePrefix, typeID)
}

func (c *CachedParameters) ParametersByType(ctx context.Context, typeID int64) ([]domain.Parameter, error) {
	key := paramCacheKey(typeID)
	raw, err := c.kv.Get(ctx, key)
	if err == nil {
		var params []domain.Parameter
		if err := json.Unmarshal([]byte(raw), &params); err == nil {
			return params, nil
		}
		c.logger.Warn("Discarding unreadable parameter cache entry", zap.String("key", key))
	} else if !errors.Is(err, store.ErrMiss) {
		c.logger.Warn("Parameter cache read failed", zap.String("key", key), zap.Error(err))
	}

	params, err := c.ReferenceRepository.ParametersByType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(params); err == nil {
		if err := c.kv.Set(ctx, key, string(b), c.ttl); err != nil {
			c.logger.Warn("Parameter cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return params, nil
}

// InvalidateParameterCache drops every cached parameter list. Run it after
// reference data changes.
func InvalidateParameterCache(ctx context.Context, kv store.KV) (int, error) {
	keys, err := kv.ScanKeys(ctx, paramCachePrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to scan parameter cache: %w", err)
	}
	if err := kv.Delete(ctx, keys...); err != nil {
		return 0, fmt.Errorf("failed to delete parameter cache: %w", err)
	}
	return len(keys), nil
}
