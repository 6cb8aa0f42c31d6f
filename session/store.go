// Package session is the session store: the state machine that signs users in and out, keeps the
// cached profile and publishes an observable View.
//
// The store is the only writer of the credential store. Sign in persists tokens and profile before
// the authenticated view is published, hydrate restores the view without a network call and
// logout clears exactly the session keys.
package session

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-session-gateway/credentials"
	"github.com/jrsteele09/go-session-gateway/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// AuthService is the account API the store signs in through.
type AuthService interface {
	SignUp(ctx context.Context, req users.SignUpRequest) (*users.SignUpResponse, error)
	SignIn(ctx context.Context, creds users.Credentials) (*users.SignInResponse, error)
}

// ProfileService fetches and updates the signed-in profile.
type ProfileService interface {
	Get(ctx context.Context) (*users.Profile, error)
	Update(ctx context.Context, update users.ProfileUpdate) (*users.Profile, error)
}

type subscriber struct {
	id int
	fn func(View)
}

// Store is the session store. One instance is built by the composition root and shared for the
// lifetime of the process.
//
// Concurrent operations are not serialized against each other: the last response wins. Lock order
// is writeMu, notifyMu, mu.
type Store struct {
	creds    credentials.Store
	auth     AuthService
	profiles ProfileService
	logger   zerolog.Logger

	writeMu  sync.Mutex // Credential writes together with the view they back
	notifyMu sync.Mutex // Orders deliveries to subscribers
	mu       sync.Mutex // State below

	user     *users.Profile
	inflight int
	errMsg   string
	epoch    uint64 // Bumped by Logout

	subscribers []subscriber
	nextSubID   int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

func WithLogger(logger zerolog.Logger) StoreOption {
	return func(s *Store) {
		s.logger = logger
	}
}

// New returns an anonymous store. Call Hydrate to restore a persisted session.
func New(creds credentials.Store, auth AuthService, profiles ProfileService, options ...StoreOption) (*Store, error) {
	if creds == nil {
		return nil, errors.New("[session.New] credential store is required")
	}
	if auth == nil {
		return nil, errors.New("[session.New] auth service is required")
	}
	if profiles == nil {
		return nil, errors.New("[session.New] profile service is required")
	}

	s := &Store{
		creds:    creds,
		auth:     auth,
		profiles: profiles,
		logger:   zerolog.Nop(),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Snapshot returns the current view. The profile is a copy.
func (s *Store) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Phase returns the state of the current view.
func (s *Store) Phase() Phase {
	return s.Snapshot().Phase()
}

// Subscribe calls fn with the current view and then with every change, in order. Deliveries happen
// outside the state lock but are serialized, so fn must not call the store's mutating methods
// synchronously. The returned func removes the subscription.
func (s *Store) Subscribe(fn func(View)) (unsubscribe func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subscribers = append(s.subscribers, subscriber{id: id, fn: fn})
	v := s.viewLocked()
	s.mu.Unlock()

	fn(v)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.subscribers {
				if sub.id == id {
					s.subscribers = append(s.subscribers[:i:i], s.subscribers[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) viewLocked() View {
	return View{
		User:    s.user.Clone(),
		Loading: s.inflight > 0,
		Error:   s.errMsg,
	}
}

// mutate runs fn under the state lock. When fn reports a change the resulting view is delivered
// to every subscriber after the lock is released.
func (s *Store) mutate(fn func() bool) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		return
	}
	v := s.viewLocked()
	subs := make([]subscriber, len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	s.logger.Debug().Str("phase", v.Phase().String()).Bool("loading", v.Loading).Msg("session transition")
	for _, sub := range subs {
		sub.fn(v)
	}
}

// begin marks an operation in flight and clears the previous error. It returns the epoch the
// operation belongs to.
func (s *Store) begin() uint64 {
	var epoch uint64
	s.mutate(func() bool {
		s.inflight++
		s.errMsg = ""
		epoch = s.epoch
		return true
	})
	return epoch
}

// settleLocked ends one in-flight operation.
func (s *Store) settleLocked() {
	if s.inflight > 0 {
		s.inflight--
	}
}

// current reports whether no logout happened since epoch.
func (s *Store) current(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch == epoch
}

// fail settles the operation with err captured in the view and returns err. A failure that arrives
// after a logout leaves the view alone.
func (s *Store) fail(epoch uint64, op string, err error) error {
	s.mutate(func() bool {
		if s.epoch != epoch {
			return false
		}
		s.settleLocked()
		s.errMsg = err.Error()
		return true
	})
	s.logger.Warn().Err(err).Str("op", op).Msg("session operation failed")
	return err
}

// succeed settles the operation, applying fn to the state first. It returns false when a logout
// happened since epoch, in which case nothing is applied.
func (s *Store) succeed(epoch uint64, fn func()) bool {
	applied := false
	s.mutate(func() bool {
		if s.epoch != epoch {
			return false
		}
		s.settleLocked()
		if fn != nil {
			fn()
		}
		applied = true
		return true
	})
	return applied
}
