package config

import "time"

// Credential store backends.
const (
	StoreBackendFile   = "file"
	StoreBackendMemory = "memory"
	StoreBackendRedis  = "redis"
)

type StoreConfig interface {
	GetStoreBackend() string
	GetDataFolder() string
	GetSessionNamespace() string
	GetRedisURL() string
	GetRedisTTL() time.Duration
	// GetStoreKey returns the 32 byte master key, or nil when values are stored unencrypted
	GetStoreKey() []byte
}

type Store struct {
	Backend   string        `env:"STORE_BACKEND" envDefault:"file"`
	Folder    string        `env:"FOLDER" envDefault:"./data"`
	Namespace string        `env:"SESSION_NAMESPACE" envDefault:"session"`
	RedisURL  string        `env:"REDIS_URL"`
	RedisTTL  time.Duration `env:"REDIS_TTL" envDefault:"0s"`
	KeyHex    string        `env:"STORE_KEY"`

	key []byte
}

var _ StoreConfig = Store{}

func (s Store) GetStoreBackend() string {
	return s.Backend
}

func (s Store) GetDataFolder() string {
	return s.Folder
}

func (s Store) GetSessionNamespace() string {
	return s.Namespace
}

func (s Store) GetRedisURL() string {
	return s.RedisURL
}

func (s Store) GetRedisTTL() time.Duration {
	return s.RedisTTL
}

func (s Store) GetStoreKey() []byte {
	return s.key
}
