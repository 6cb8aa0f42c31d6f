// Package config reads the client and fake backend settings from the environment, after loading
// an optional .env file. Components depend on the narrow getter interfaces, not on the struct.
package config

import (
	"encoding/hex"
	"net/url"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config interface {
	EnvConfig
	StoreConfig
	GatewayConfig
	FakeBackendConfig
}

var (
	ErrInvalidStoreBackend = errors.New("invalid store backend")
	ErrInvalidStoreKey     = errors.New("store key must be 64 hex characters")
	ErrInvalidBaseURL      = errors.New("api base url must be absolute")
)

type mainConfig struct {
	EnvVars
	Store
	Gateway
	FakeBackend
}

var _ Config = (*mainConfig)(nil)

// Load reads envFiles (or ./.env when none are given and it exists) and then the environment.
// Variables already set in the environment win over file values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, errors.Wrap(err, "[config.Load] loading env files")
		}
	}

	cfg := &mainConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, "[config.Load] parsing environment")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *mainConfig) validate() error {
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
	switch c.Store.Backend {
	case StoreBackendFile, StoreBackendMemory, StoreBackendRedis:
	default:
		return errors.Wrapf(ErrInvalidStoreBackend, "[config.Load] %q", c.Store.Backend)
	}
	if c.Store.Backend == StoreBackendRedis && c.Store.RedisURL == "" {
		return errors.New("[config.Load] REDIS_URL is required for the redis store backend")
	}

	if c.Store.KeyHex != "" {
		key, err := hex.DecodeString(c.Store.KeyHex)
		if err != nil || len(key) != 32 {
			return errors.Wrap(ErrInvalidStoreKey, "[config.Load]")
		}
		c.Store.key = key
	}

	u, err := url.Parse(c.Gateway.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.Wrapf(ErrInvalidBaseURL, "[config.Load] %q", c.Gateway.BaseURL)
	}
	if c.Gateway.RateLimit < 0 {
		return errors.New("[config.Load] RATE_LIMIT must not be negative")
	}
	return nil
}
