// Package config holds connection settings shared by the elektropregled
// binaries and their environment loaders.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DatabaseConfig describes the PostgreSQL pool.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MaxIdle  int
	// ConnMaxLifetime 0 keeps connections forever.
	ConnMaxLifetime time.Duration
}

// DefaultDatabaseConfig is a local development server.
func DefaultDatabaseConfig(database string) DatabaseConfig {
	return DatabaseConfig{
		Host:            "localhost",
		Port:            5432,
		User:            "postgres",
		Password:        "postgres",
		Database:        database,
		SSLMode:         "disable",
		MaxConns:        10,
		MaxIdle:         5,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// GetDSN builds a lib/pq key=value connection string. Values containing
// spaces or quotes are quoted.
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dsnValue(c.Host), c.Port, dsnValue(c.User), dsnValue(c.Password), dsnValue(c.Database), dsnValue(c.SSLMode))
}

func dsnValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `'`, `\'`)
	return "'" + r.Replace(v) + "'"
}

// LoadFromEnv overrides fields from <prefix>_HOST, _PORT, _USER, _PASSWORD,
// _NAME, _SSLMODE, _MAX_CONNS, _MAX_IDLE and _CONN_MAX_LIFETIME_SECONDS.
// Unset or malformed variables leave the field as is.
func (c *DatabaseConfig) LoadFromEnv(prefix string) {
	envString(prefix+"_HOST", &c.Host)
	envInt(prefix+"_PORT", &c.Port)
	envString(prefix+"_USER", &c.User)
	envString(prefix+"_PASSWORD", &c.Password)
	envString(prefix+"_NAME", &c.Database)
	envString(prefix+"_SSLMODE", &c.SSLMode)
	envInt(prefix+"_MAX_CONNS", &c.MaxConns)
	envInt(prefix+"_MAX_IDLE", &c.MaxIdle)
	envSeconds(prefix+"_CONN_MAX_LIFETIME_SECONDS", &c.ConnMaxLifetime)
}

// RedisConfig describes the cache connection.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	PoolSize    int
	DialTimeout time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{Addr: "localhost:6379", PoolSize: 10, DialTimeout: 2 * time.Second}
}

// LoadFromEnv overrides fields from <prefix>_ADDR, _PASSWORD, _DB, _POOL_SIZE
// and _DIAL_TIMEOUT_SECONDS.
func (c *RedisConfig) LoadFromEnv(prefix string) {
	envString(prefix+"_ADDR", &c.Addr)
	envString(prefix+"_PASSWORD", &c.Password)
	envInt(prefix+"_DB", &c.DB)
	envInt(prefix+"_POOL_SIZE", &c.PoolSize)
	envSeconds(prefix+"_DIAL_TIMEOUT_SECONDS", &c.DialTimeout)
}

// MQTTConfig describes the broker connection.
type MQTTConfig struct {
	Broker   string
	ClientID string
	Username string
	Password string
	QoS      byte
	// PublishTimeout bounds the wait for a broker acknowledgement.
	PublishTimeout time.Duration
}

func DefaultMQTTConfig(clientID string) MQTTConfig {
	return MQTTConfig{Broker: "tcp://localhost:1883", ClientID: clientID, QoS: 1, PublishTimeout: 5 * time.Second}
}

// LoadFromEnv overrides fields from <prefix>_BROKER, _CLIENT_ID, _USERNAME,
// _PASSWORD, _QOS and _PUBLISH_TIMEOUT_SECONDS. QoS above 2 is ignored.
func (c *MQTTConfig) LoadFromEnv(prefix string) {
	envString(prefix+"_BROKER", &c.Broker)
	envString(prefix+"_CLIENT_ID", &c.ClientID)
	envString(prefix+"_USERNAME", &c.Username)
	envString(prefix+"_PASSWORD", &c.Password)
	qos := int(c.QoS)
	envInt(prefix+"_QOS", &qos)
	if qos >= 0 && qos <= 2 {
		c.QoS = byte(qos)
	}
	envSeconds(prefix+"_PUBLISH_TIMEOUT_SECONDS", &c.PublishTimeout)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = n
	}
}

func envSeconds(key string, dst *time.Duration) {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n >= 0 {
		*dst = time.Duration(n) * time.Second
	}
}
