package config

import (
	"os"
	"strconv"
	"time"

	commoncfg "elektropregled/common/config"
)

// Config of the elektropregled HTTP API.
type Config struct {
	HTTP struct {
		Addr string
	}
	// DBEnabled=false runs the server on the in-memory store with demo data.
	DBEnabled bool
	Database  commoncfg.DatabaseConfig

	RedisEnabled  bool
	Redis         commoncfg.RedisConfig
	ParamCacheTTL time.Duration

	JWT struct {
		Secret     string
		Expiration time.Duration
	}

	MQTT MQTTConfig

	Log struct {
		Level  string
		Format string
	}
}

// MQTTConfig controls the sync notification publisher (disabled by default).
type MQTTConfig struct {
	Enabled bool
	Topic   string
	commoncfg.MQTTConfig
}

func Load() *Config {
	cfg := &Config{}
	cfg.HTTP.Addr = getEnv("HTTP_ADDR", ":8080")

	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database = commoncfg.DefaultDatabaseConfig("elektropregled")
	cfg.Database.LoadFromEnv("DB")

	cfg.RedisEnabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis = commoncfg.DefaultRedisConfig()
	cfg.Redis.LoadFromEnv("REDIS")
	cfg.ParamCacheTTL = time.Duration(parseInt(getEnv("PARAM_CACHE_TTL_SECONDS", "300"), 300)) * time.Second

	cfg.JWT.Secret = getEnv("JWT_SECRET", "dev-secret-change-me")
	cfg.JWT.Expiration = time.Duration(parseInt(getEnv("JWT_EXPIRATION_SECONDS", "86400"), 86400)) * time.Second

	cfg.MQTT.Enabled = getEnv("MQTT_ENABLED", "false") == "true"
	cfg.MQTT.MQTTConfig = commoncfg.DefaultMQTTConfig("elektropregled-api")
	cfg.MQTT.LoadFromEnv("MQTT")
	cfg.MQTT.Topic = getEnv("MQTT_TOPIC", "elektropregled/pregled/synced")

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseInt(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}
