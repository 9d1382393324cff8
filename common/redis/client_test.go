package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"elektropregled/common/config"
)

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.DefaultRedisConfig()
	cfg.Addr = mr.Addr()
	cfg.PoolSize = 3

	c := NewRedisClient(&cfg)
	defer Close(c)
	assert.Equal(t, 3, c.Options().PoolSize)
	assert.Equal(t, 2*time.Second, c.Options().DialTimeout)
	require.NoError(t, Ping(context.Background(), c))

	down := config.RedisConfig{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond}
	dc := NewRedisClient(&down)
	defer Close(dc)
	assert.Error(t, Ping(context.Background(), dc))
	assert.NoError(t, Close(nil))
}
