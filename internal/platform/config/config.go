// Package config loads process configuration from AUDITLINK_* environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Server captures process-level configuration. Storage selects the ledger
// backend: memory or postgres.
type Server struct {
	Addr      string        `env:"ADDR" envDefault:":8080"`
	LogLevel  string        `env:"LOG_LEVEL" envDefault:"info"`
	Storage   string        `env:"STORAGE" envDefault:"memory"`
	TxTimeout time.Duration `env:"TX_TIMEOUT" envDefault:"5s"`

	JWT      JWTConfig      `envPrefix:"JWT_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Outbox   OutboxConfig   `envPrefix:"OUTBOX_"`
}

// JWTConfig configures bearer token validation and dev token minting.
type JWTConfig struct {
	SigningKey string        `env:"SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	Issuer     string        `env:"ISSUER" envDefault:"auditlink"`
	Audience   string        `env:"AUDIENCE" envDefault:"auditlink-api"`
	TokenTTL   time.Duration `env:"TOKEN_TTL" envDefault:"1h"`
}

type DatabaseConfig struct {
	URL             string        `env:"URL"`
	MaxOpenConns    int           `env:"MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"CONN_MAX_LIFETIME" envDefault:"30m"`
}

// RedisConfig is optional; an empty URL keeps profiles in memory.
type RedisConfig struct {
	URL          string        `env:"URL"`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
}

// KafkaConfig is optional; without brokers the outbox relay is disabled.
type KafkaConfig struct {
	Brokers           []string `env:"BROKERS" envSeparator:","`
	Topic             string   `env:"TOPIC" envDefault:"auditlink.audit"`
	Partitions        int32    `env:"PARTITIONS" envDefault:"3"`
	ReplicationFactor int16    `env:"REPLICATION_FACTOR" envDefault:"1"`
}

type OutboxConfig struct {
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"1s"`
	BatchSize    int           `env:"BATCH_SIZE" envDefault:"100"`
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	var cfg Server
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "AUDITLINK_"}); err != nil {
		return Server{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (s Server) Validate() error {
	switch s.Storage {
	case StorageMemory:
	case StoragePostgres:
		if s.Database.URL == "" {
			return fmt.Errorf("AUDITLINK_DATABASE_URL is required when AUDITLINK_STORAGE=postgres")
		}
	default:
		return fmt.Errorf("unknown storage %q: want %s or %s", s.Storage, StorageMemory, StoragePostgres)
	}
	if s.JWT.SigningKey == "" {
		return fmt.Errorf("AUDITLINK_JWT_SIGNING_KEY must not be empty")
	}
	return nil
}
