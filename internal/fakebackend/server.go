// Package fakebackend is an in-memory stand-in for the REST backend the session client talks to.
// It serves the same routes, payloads and error bodies, issues HS256 access tokens and can be
// told to answer specific routes with canned responses. Tests run it under httptest, cmd/fakebackend serves it locally.
package fakebackend

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// DefaultAccessTTL is the lifetime of issued access tokens.
	DefaultAccessTTL = 5 * time.Minute

	defaultSecret = "fakebackend-development-secret"
	issuer        = "fakebackend"
)

// Server is the fake backend.
type Server struct {
	router    chi.Router
	data      *data
	secret    []byte
	accessTTL time.Duration
	logger    zerolog.Logger
	nowTime   func() time.Time
	env       string

	overrideLock sync.RWMutex
	overrides    map[string]override // By "METHOD /path/"

	countLock sync.Mutex
	counts    map[string]int // By "METHOD /path/"
}

type override struct {
	status int
	body   string
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the HS256 signing secret.
func WithSecret(secret string) Option {
	return func(s *Server) {
		if secret != "" {
			s.secret = []byte(secret)
		}
	}
}

func WithAccessTTL(ttl time.Duration) Option {
	return func(s *Server) {
		s.accessTTL = ttl
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithEnv sets the environment name. Routes are printed on start up in DEV.
func WithEnv(env string) Option {
	return func(s *Server) {
		s.env = env
	}
}

// WithoutProducts skips seeding the default catalogue.
func WithoutProducts() Option {
	return func(s *Server) {
		s.data.products = make(map[int64]*product)
		s.data.nextProductID = 0
	}
}

// New returns a backend seeded with a small product catalogue.
func New(options ...Option) (*Server, error) {
	s := &Server{
		data:      newData(),
		secret:    []byte(defaultSecret),
		accessTTL: DefaultAccessTTL,
		logger:    zerolog.Nop(),
		nowTime:   time.Now,
		overrides: make(map[string]override),
		counts:    make(map[string]int),
	}
	s.seedProducts()
	for _, opt := range options {
		opt(s)
	}
	if s.accessTTL <= 0 {
		return nil, errors.New("[fakebackend.New] access token ttl must be positive")
	}

	s.router = s.routes()
	if s.env == "DEV" {
		s.logRoutes()
	}
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.countRequests)
	r.Use(s.injectResponses)
	r.Use(s.logRequests)

	r.Post("/signup/", s.handleSignUp)
	r.Post("/signin/", s.handleSignIn)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Get("/profile/", s.handleGetProfile)
		r.Put("/profile/", s.handleUpdateProfile)
		r.Get("/products/", s.handleListProducts)
		r.Get("/addresses/", s.handleListAddresses)
		r.Post("/addresses/", s.handleCreateAddress)
		r.Get("/addresses/{id}/", s.handleGetAddress)
		r.Put("/addresses/{id}/", s.handleUpdateAddress)
		r.Get("/orders/", s.handleListOrders)
		r.Post("/orders/", s.handlePlaceOrder)
		r.Get("/dashboard/", s.handleDashboard)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method \""+r.Method+"\" not allowed.")
	})
	return r
}

func (s *Server) logRoutes() {
	_ = chi.Walk(s.router, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		s.logger.Info().Msgf("[%-19s] %s", colourMethod(method), route)
		return nil
	})
}

func routeKey(method, path string) string {
	return strings.ToUpper(method) + " " + path
}

// SetResponse makes every request for method and path answer with status and body until cleared.
func (s *Server) SetResponse(method, path string, status int, body string) {
	s.overrideLock.Lock()
	defer s.overrideLock.Unlock()
	s.overrides[routeKey(method, path)] = override{status: status, body: body}
}

// ClearResponses removes every canned response.
func (s *Server) ClearResponses() {
	s.overrideLock.Lock()
	defer s.overrideLock.Unlock()
	s.overrides = make(map[string]override)
}

// Requests returns how many requests were received for method and path.
func (s *Server) Requests(method, path string) int {
	s.countLock.Lock()
	defer s.countLock.Unlock()
	return s.counts[routeKey(method, path)]
}

// TotalRequests returns how many requests were received in total.
func (s *Server) TotalRequests() int {
	s.countLock.Lock()
	defer s.countLock.Unlock()
	total := 0
	for _, n := range s.counts {
		total += n
	}
	return total
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.countLock.Lock()
		s.counts[routeKey(r.Method, r.URL.Path)]++
		s.countLock.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) injectResponses(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.overrideLock.RLock()
		f, ok := s.overrides[routeKey(r.Method, r.URL.Path)]
		s.overrideLock.RUnlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.body))
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(started)).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Msg("request")
	})
}
