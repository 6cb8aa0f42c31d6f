// Package redisbackend stores session credentials in Redis, for deployments where several
// processes (for example a backend-for-frontend behind a load balancer) share one session.
package redisbackend

import (
	"context"
	"time"

	"github.com/jrsteele09/go-session-gateway/credentials"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const defaultOpTimeout = 2 * time.Second

var _ credentials.Backend = (*Backend)(nil)

// Backend implements credentials.Backend on a go-redis client.
type Backend struct {
	client    redis.UniversalClient
	ttl       time.Duration
	opTimeout time.Duration
}

// Option configures a Backend.
type Option func(*Backend)

// WithTTL expires every written key after ttl. Zero keeps keys until deleted.
func WithTTL(ttl time.Duration) Option {
	return func(b *Backend) {
		b.ttl = ttl
	}
}

// WithOpTimeout bounds every Redis round trip.
func WithOpTimeout(timeout time.Duration) Option {
	return func(b *Backend) {
		if timeout > 0 {
			b.opTimeout = timeout
		}
	}
}

func New(client redis.UniversalClient, options ...Option) (*Backend, error) {
	if client == nil {
		return nil, errors.New("[redisbackend.New] client is required")
	}
	b := &Backend{
		client:    client,
		opTimeout: defaultOpTimeout,
	}
	for _, opt := range options {
		opt(b)
	}
	return b, nil
}

// Connect parses a redis:// URL and pings the server before returning the backend.
func Connect(ctx context.Context, url string, options ...Option) (*Backend, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "[redisbackend.Connect] parsing url")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "[redisbackend.Connect] ping")
	}
	return New(client, options...)
}

// Close releases the underlying client.
func (b *Backend) Close() error {
	return b.client.Close()
}

func (b *Backend) Get(key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), b.opTimeout)
	defer cancel()

	value, err := b.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrap(err, "[redisbackend Get]")
	}
	return value, true, nil
}

func (b *Backend) Set(key, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.opTimeout)
	defer cancel()

	if err := b.client.Set(ctx, key, value, b.ttl).Err(); err != nil {
		return errors.Wrap(err, "[redisbackend Set]")
	}
	return nil
}

func (b *Backend) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), b.opTimeout)
	defer cancel()

	if err := b.client.Del(ctx, key).Err(); err != nil {
		return errors.Wrap(err, "[redisbackend Delete]")
	}
	return nil
}
