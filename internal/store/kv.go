package store

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrMiss is returned by Get for an absent or expired key.
var ErrMiss = errors.New("cache miss")

// KV is the key/value surface behind the read-through caches.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	// Set stores value; ttl 0 keeps it until deleted.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}

// scanBatch is the COUNT hint per SCAN round trip.
const scanBatch = 200

// RedisKV implements KV on a go-redis client.
type RedisKV struct {
	rdb *redis.Client
}

var _ KV = (*RedisKV)(nil)

func NewRedisKV(rdb *redis.Client) *RedisKV { return &RedisKV{rdb: rdb} }

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.rdb.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", ErrMiss
	case err != nil:
		return "", err
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

// Delete removes keys in one pipelined UNLINK per batch so large
// invalidations do not block the server.
func (r *RedisKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := r.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for start := 0; start < len(keys); start += scanBatch {
			end := min(start+scanBatch, len(keys))
			p.Unlink(ctx, keys[start:end]...)
		}
		return nil
	})
	return err
}

// ScanKeys walks the keyspace with SCAN; the result may contain duplicates
// if keys are added while scanning.
func (r *RedisKV) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var keys []string
	iter := r.rdb.Scan(ctx, 0, pattern, scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
