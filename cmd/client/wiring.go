package main

import (
	"context"
	"io"
	"net/http"
	"path/filepath"

	"github.com/jrsteele09/go-session-gateway/credentials"
	"github.com/jrsteele09/go-session-gateway/credentials/redisbackend"
	"github.com/jrsteele09/go-session-gateway/gateway"
	"github.com/jrsteele09/go-session-gateway/internal/config"
	"github.com/jrsteele09/go-session-gateway/services"
	"github.com/jrsteele09/go-session-gateway/session"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// credentialsFile is the file backend's file name inside the data folder.
const credentialsFile = "credentials.json"

// openBackend builds the configured raw storage, wrapped in encryption when a key is set. The
// returned func releases it.
func openBackend(ctx context.Context, c config.StoreConfig) (credentials.Backend, func() error, error) {
	var (
		backend credentials.Backend
		closer  = func() error { return nil }
	)
	switch c.GetStoreBackend() {
	case config.StoreBackendMemory:
		backend = credentials.NewMemoryBackend()
	case config.StoreBackendRedis:
		rb, err := redisbackend.Connect(ctx, c.GetRedisURL(), redisbackend.WithTTL(c.GetRedisTTL()))
		if err != nil {
			return nil, nil, err
		}
		backend, closer = rb, rb.Close
	default:
		fb, err := credentials.NewFileBackend(filepath.Join(c.GetDataFolder(), credentialsFile))
		if err != nil {
			return nil, nil, err
		}
		backend = fb
	}

	if key := c.GetStoreKey(); key != nil {
		enc, err := credentials.NewEncryptedBackend(backend, key)
		if err != nil {
			_ = closer()
			return nil, nil, err
		}
		backend = enc
	}
	return backend, closer, nil
}

// newApp is the composition root: one credential store shared by the gateway (reads) and the
// session store (writes), restored from disk before any command runs.
func newApp(ctx context.Context, c config.Config, logger zerolog.Logger, out io.Writer) (*app, func() error, error) {
	backend, closer, err := openBackend(ctx, c)
	if err != nil {
		return nil, nil, errors.Wrap(err, "[newApp] opening credential store")
	}
	creds := credentials.NewNamespaced(backend, c.GetSessionNamespace())

	opts := []gateway.Option{
		gateway.WithHTTPClient(&http.Client{Timeout: c.GetRequestTimeout()}),
		gateway.WithLogger(logger),
	}
	if limit := c.GetRateLimit(); limit > 0 {
		opts = append(opts, gateway.WithLimiter(rate.NewLimiter(rate.Limit(limit), c.GetRateBurst())))
	}
	gw, err := gateway.New(c.GetAPIBaseURL(), creds, opts...)
	if err != nil {
		_ = closer()
		return nil, nil, err
	}

	svc := services.New(gw)
	store, err := session.New(creds, svc.Auth, svc.Profiles, session.WithLogger(logger))
	if err != nil {
		_ = closer()
		return nil, nil, err
	}
	store.Hydrate()

	return &app{out: out, creds: creds, svc: svc, store: store}, closer, nil
}
