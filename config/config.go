// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Persistent tier backends.
const (
	StoreSQLite = "sqlite"
	StoreRedis  = "redis"
	StoreMemory = "memory"
	StoreNone   = "none"
)

// Write policies.
const (
	WriteThrough = "through"
	WriteBack    = "back"
)

// Config holds every setting of the cache service.
type Config struct {
	APIKey            string        `env:"MSEA_API_KEY"`
	APIBaseURL        string        `env:"MSEA_API_BASE_URL"        envDefault:"https://open.api.nexon.com/maplestorysea/v1"`
	HTTPAddr          string        `env:"MSEA_HTTP_ADDR"           envDefault:":8080"`
	HTTPClientTimeout time.Duration `env:"MSEA_HTTP_CLIENT_TIMEOUT" envDefault:"10s"`

	Store      string `env:"MSEA_STORE"       envDefault:"sqlite"`
	SQLitePath string `env:"MSEA_SQLITE_PATH" envDefault:"data/cache.db"`

	RedisAddr     string `env:"MSEA_REDIS_ADDR"     envDefault:"localhost:6379"`
	RedisPassword string `env:"MSEA_REDIS_PASSWORD"`
	RedisDB       int    `env:"MSEA_REDIS_DB"       envDefault:"0"`
	RedisTLS      bool   `env:"MSEA_REDIS_TLS"      envDefault:"false"`

	WritePolicy     string `env:"MSEA_WRITE_POLICY"      envDefault:"through"`
	WriteBackBuffer int    `env:"MSEA_WRITE_BACK_BUFFER" envDefault:"1024"`
	MemoryShards    int    `env:"MSEA_MEMORY_SHARDS"     envDefault:"4"`
	CoalesceFetches bool   `env:"MSEA_COALESCE_FETCHES"  envDefault:"false"`

	// CharacterExtras adds the symbol, skill and link-skill tabs to every
	// character record. Their failures never fail the record.
	CharacterExtras bool `env:"MSEA_CHARACTER_EXTRAS" envDefault:"false"`

	LogLevel     string `env:"MSEA_LOG_LEVEL"     envDefault:"info"`
	LogDev       bool   `env:"MSEA_LOG_DEV"       envDefault:"false"`
	OTelEndpoint string `env:"MSEA_OTEL_ENDPOINT"`
}

// Load parses the environment into a validated Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and bounded settings.
func (c *Config) Validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreSQLite, StoreRedis, StoreMemory, StoreNone:
	default:
		return fmt.Errorf("unknown store %q", c.Store)
	}
	if c.Store == StoreSQLite && strings.TrimSpace(c.SQLitePath) == "" {
		return fmt.Errorf("sqlite path is required")
	}

	c.WritePolicy = strings.ToLower(strings.TrimSpace(c.WritePolicy))
	switch c.WritePolicy {
	case WriteThrough, WriteBack:
	default:
		return fmt.Errorf("unknown write policy %q", c.WritePolicy)
	}
	if c.WriteBackBuffer <= 0 {
		return fmt.Errorf("write-back buffer must be greater than zero")
	}
	if c.MemoryShards <= 0 {
		return fmt.Errorf("memory shards must be greater than zero")
	}
	return nil
}
