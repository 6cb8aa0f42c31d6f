// Package gateway is the single path for calls to the REST backend. It resolves paths against a
// fixed base URL, attaches the stored access token as a bearer header at call time and turns every
// failure into one of NetworkError, RequestFailedError or ResponseParseError.
//
// The gateway only ever reads the credential store.
package gateway

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-gateway/credentials"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout applies when no http.Client is supplied.
	DefaultTimeout = 30 * time.Second

	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-ID"
	contentTypeJSON   = "application/json"
)

// RequestOptions describes one call. Headers override the gateway defaults for the same header name.
type RequestOptions struct {
	Method    string            // Defaults to GET
	Body      string            // Raw JSON body, sent as is
	Headers   map[string]string // Caller headers, applied last
	Anonymous bool              // Skip the credential lookup (sign-up, sign-in)
}

// Requester is what the service wrappers depend on.
type Requester interface {
	Request(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error)
}

var _ Requester = (*Client)(nil)

// Client is the request gateway.
type Client struct {
	baseURL    string
	tokens     oauth2.TokenSource
	httpClient *http.Client
	logger     zerolog.Logger
	limiter    *rate.Limiter
	registerer prometheus.Registerer
	metrics    *metrics
	requestIDs bool
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics registers request counters and latency histograms on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

// WithLimiter makes every request wait for a token from limiter before it is sent.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithRequestIDs toggles the X-Request-ID header (on by default).
func WithRequestIDs(enabled bool) Option {
	return func(c *Client) {
		c.requestIDs = enabled
	}
}

// New returns a gateway for baseURL that reads the access token from store on every request.
func New(baseURL string, store credentials.Store, options ...Option) (*Client, error) {
	if store == nil {
		return nil, errors.New("[gateway.New] credential store is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, "[gateway.New] invalid base URL")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errors.Errorf("[gateway.New] base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     credentials.TokenSource(store),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		logger:     zerolog.Nop(),
		requestIDs: true,
	}
	for _, opt := range options {
		opt(c)
	}

	if c.registerer != nil {
		m, err := newMetrics(c.registerer)
		if err != nil {
			return nil, err
		}
		c.metrics = m
	}
	return c, nil
}

// BaseURL returns the address every path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request performs the call and returns the response body, which is guaranteed to be valid JSON.
func (c *Client) Request(ctx context.Context, path string, opts RequestOptions) (json.RawMessage, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := c.newRequest(ctx, method, path, opts)
	if err != nil {
		return nil, err
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Method: method, Path: path, Err: err}
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, "error", started)
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed before a response")
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	c.metrics.observe(method, strconv.Itoa(resp.StatusCode), started)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(started)).
		Str("request_id", req.Header.Get(HeaderRequestID)).
		Msg("request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RequestFailedError{
			StatusCode: resp.StatusCode,
			Message:    failureMessage(body),
		}
	}
	if !gjson.ValidBytes(body) {
		return nil, &ResponseParseError{StatusCode: resp.StatusCode, Err: errInvalidJSON}
	}
	return json.RawMessage(body), nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, opts RequestOptions) (*http.Request, error) {
	var body io.Reader
	if opts.Body != "" {
		body = strings.NewReader(opts.Body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, errors.Wrap(err, "[gateway Request] building request")
	}

	req.Header.Set(HeaderContentType, contentTypeJSON)
	if c.requestIDs {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}
	if !opts.Anonymous {
		tok, err := c.tokens.Token()
		switch {
		case err == nil:
			tok.SetAuthHeader(req)
		case errors.Is(err, credentials.ErrNoAccessToken):
			// Unauthenticated call, the backend decides whether that is acceptable
		default:
			return nil, errors.Wrap(err, "[gateway Request] reading credentials")
		}
	}

	// Header.Set canonicalizes names, so a caller's "authorization" replaces the default "Authorization"
	for name, value := range opts.Headers {
		req.Header.Set(name, value)
	}
	return req, nil
}

// failureMessage returns the string "detail" field of a JSON error body, or the generic message.
func failureMessage(body []byte) string {
	if !gjson.ValidBytes(body) {
		return defaultFailureMessage
	}
	detail := gjson.GetBytes(body, "detail")
	if detail.Type != gjson.String || detail.Str == "" {
		return defaultFailureMessage
	}
	return detail.Str
}
