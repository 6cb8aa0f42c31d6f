package config

import "time"

type GatewayConfig interface {
	GetAPIBaseURL() string
	GetRequestTimeout() time.Duration
	// GetRateLimit returns requests per second, zero when unlimited
	GetRateLimit() float64
	GetRateBurst() int
}

type Gateway struct {
	BaseURL        string        `env:"API_BASE_URL" envDefault:"http://127.0.0.1:8000/api"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	RateLimit      float64       `env:"RATE_LIMIT" envDefault:"0"`
	RateBurst      int           `env:"RATE_BURST" envDefault:"1"`
}

var _ GatewayConfig = Gateway{}

func (g Gateway) GetAPIBaseURL() string {
	return g.BaseURL
}

func (g Gateway) GetRequestTimeout() time.Duration {
	return g.RequestTimeout
}

func (g Gateway) GetRateLimit() float64 {
	return g.RateLimit
}

func (g Gateway) GetRateBurst() int {
	if g.RateBurst < 1 {
		return 1
	}
	return g.RateBurst
}

type FakeBackendConfig interface {
	GetFakeBackendPort() string
	GetFakeBackendSecret() string
	GetFakeBackendAccessTTL() time.Duration
}

type FakeBackend struct {
	Port      string        `env:"FAKE_BACKEND_PORT" envDefault:"8000"`
	Secret    string        `env:"FAKE_BACKEND_SECRET"`
	AccessTTL time.Duration `env:"FAKE_BACKEND_ACCESS_TTL" envDefault:"5m"`
}

var _ FakeBackendConfig = FakeBackend{}

// GetFakeBackendPort returns the listen address, e.g. ":8000".
func (f FakeBackend) GetFakeBackendPort() string {
	if f.Port != "" && f.Port[0] != ':' {
		return ":" + f.Port
	}
	return f.Port
}

func (f FakeBackend) GetFakeBackendSecret() string {
	return f.Secret
}

func (f FakeBackend) GetFakeBackendAccessTTL() time.Duration {
	return f.AccessTTL
}
