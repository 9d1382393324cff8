package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDatabaseConfig_GetDSN(t *testing.T) {
	c := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "elektropregled", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=elektropregled sslmode=disable", c.GetDSN())

	c.Password = `it's secret`
	c.User = ""
	assert.Equal(t, `host=db port=5433 user='' password='it\'s secret' dbname=elektropregled sslmode=disable`, c.GetDSN())
}

func TestDatabaseConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("PG_HOST", "pg.local")
	t.Setenv("PG_PORT", "6543")
	t.Setenv("PG_NAME", "inspections")
	t.Setenv("PG_MAX_CONNS", "not-a-number")
	t.Setenv("PG_CONN_MAX_LIFETIME_SECONDS", "60")

	c := DefaultDatabaseConfig("elektropregled")
	c.LoadFromEnv("PG")

	assert.Equal(t, "pg.local", c.Host)
	assert.Equal(t, 6543, c.Port)
	assert.Equal(t, "inspections", c.Database)
	assert.Equal(t, 10, c.MaxConns)
	assert.Equal(t, time.Minute, c.ConnMaxLifetime)
	assert.Equal(t, "postgres", c.User)
}

func TestRedisConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("CACHE_ADDR", "redis:6379")
	t.Setenv("CACHE_DB", "3")

	c := DefaultRedisConfig()
	c.LoadFromEnv("CACHE")
	assert.Equal(t, "redis:6379", c.Addr)
	assert.Equal(t, 3, c.DB)
	assert.Equal(t, 10, c.PoolSize)
}

func TestMQTTConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("BROKER_QOS", "7")
	t.Setenv("BROKER_CLIENT_ID", "api-2")

	c := DefaultMQTTConfig("api")
	c.LoadFromEnv("BROKER")
	assert.Equal(t, byte(1), c.QoS, "out of range QoS is ignored")
	assert.Equal(t, "api-2", c.ClientID)

	t.Setenv("BROKER_QOS", "0")
	c.LoadFromEnv("BROKER")
	assert.Equal(t, byte(0), c.QoS)
}
