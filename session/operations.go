package session

import (
	"context"
	"encoding/json"

	"github.com/jrsteele09/go-session-gateway/credentials"
	"github.com/jrsteele09/go-session-gateway/users"
	"github.com/pkg/errors"
)

var errEmptyProfile = errors.New("profile response is empty")

// SignUp creates an account. It never authenticates and never touches the credential store.
func (s *Store) SignUp(ctx context.Context, req users.SignUpRequest) (*users.SignUpResponse, error) {
	epoch := s.begin()
	resp, err := s.auth.SignUp(ctx, req)
	if err != nil {
		return nil, s.fail(epoch, "sign_up", err)
	}
	// The account exists on the backend even if a logout happened meanwhile
	s.succeed(epoch, nil)
	return resp, nil
}

// SignIn exchanges creds for tokens. The tokens and profile are persisted before the
// authenticated view is published. Every failure is a *SignInFailedError.
func (s *Store) SignIn(ctx context.Context, creds users.Credentials) (*users.SignInResponse, error) {
	epoch := s.begin()
	resp, err := s.auth.SignIn(ctx, creds)
	if err == nil && (resp == nil || resp.Access == "" || resp.User == nil) {
		err = errIncompleteSignIn
	}
	if err != nil {
		return nil, s.fail(epoch, "sign_in", &SignInFailedError{Err: err})
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if !s.current(epoch) {
		return nil, ErrSessionReset
	}

	if err := s.persistSignIn(resp); err != nil {
		if clearErr := s.creds.Clear(); clearErr != nil {
			s.logger.Error().Err(clearErr).Msg("failed to clear partially persisted session")
		}
		failure := &SignInFailedError{Err: err}
		s.mutate(func() bool {
			if s.epoch != epoch {
				return false
			}
			s.settleLocked()
			s.user = nil
			s.errMsg = failure.Error()
			return true
		})
		s.logger.Warn().Err(err).Str("op", "sign_in").Msg("session operation failed")
		return nil, failure
	}

	user := resp.User.Clone()
	if !s.succeed(epoch, func() { s.user = user }) {
		return nil, ErrSessionReset
	}
	s.logger.Info().Str("user_id", user.UserID).Msg("signed in")
	return resp, nil
}

func (s *Store) persistSignIn(resp *users.SignInResponse) error {
	if err := s.creds.Set(credentials.KeyAccessToken, resp.Access); err != nil {
		return err
	}
	if resp.Refresh == "" {
		if err := s.creds.Remove(credentials.KeyRefreshToken); err != nil {
			return err
		}
	} else if err := s.creds.Set(credentials.KeyRefreshToken, resp.Refresh); err != nil {
		return err
	}
	return s.persistProfile(resp.User)
}

func (s *Store) persistProfile(p *users.Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(err, "[session persistProfile] encoding profile")
	}
	return s.creds.Set(credentials.KeyUser, string(data))
}

// LoadProfile fetches the profile and replaces the cached one. Without a stored access token it
// returns ErrNotAuthenticated and makes no call.
func (s *Store) LoadProfile(ctx context.Context) (*users.Profile, error) {
	if err := s.requireAccessToken(); err != nil {
		return nil, err
	}
	epoch := s.begin()
	p, err := s.profiles.Get(ctx)
	return s.applyProfile(epoch, "load_profile", p, err)
}

// UpdateProfile sends the editable fields. The profile returned by the backend, not update,
// becomes the cached user.
func (s *Store) UpdateProfile(ctx context.Context, update users.ProfileUpdate) (*users.Profile, error) {
	if err := s.requireAccessToken(); err != nil {
		return nil, err
	}
	epoch := s.begin()
	p, err := s.profiles.Update(ctx, update)
	return s.applyProfile(epoch, "update_profile", p, err)
}

func (s *Store) requireAccessToken() error {
	access, ok, err := s.creds.Get(credentials.KeyAccessToken)
	if err != nil {
		return errors.Wrap(err, "[session] reading access token")
	}
	if !ok || access == "" {
		return ErrNotAuthenticated
	}
	return nil
}

func (s *Store) applyProfile(epoch uint64, op string, p *users.Profile, err error) (*users.Profile, error) {
	if err == nil && p == nil {
		err = errEmptyProfile
	}
	if err != nil {
		return nil, s.fail(epoch, op, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if !s.current(epoch) {
		return nil, ErrSessionReset
	}
	if err := s.persistProfile(p); err != nil {
		return nil, s.fail(epoch, op, err)
	}

	user := p.Clone()
	if !s.succeed(epoch, func() { s.user = user }) {
		return nil, ErrSessionReset
	}
	return p.Clone(), nil
}

// Hydrate restores the view from the credential store without a network call. A cached profile
// together with an access token yields the authenticated view, anything else the anonymous one.
// Calling it again without an intervening change returns the same view.
func (s *Store) Hydrate() View {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	user := s.readPersistedUser()
	var v View
	s.mutate(func() bool {
		s.user = user
		s.errMsg = ""
		v = s.viewLocked()
		return true
	})
	return v
}

func (s *Store) readPersistedUser() *users.Profile {
	access, ok, err := s.creds.Get(credentials.KeyAccessToken)
	if err != nil {
		s.logger.Warn().Err(err).Msg("hydrate: reading access token")
		return nil
	}
	if !ok || access == "" {
		return nil
	}

	raw, ok, err := s.creds.Get(credentials.KeyUser)
	if err != nil {
		s.logger.Warn().Err(err).Msg("hydrate: reading cached profile")
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var p users.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		s.logger.Warn().Err(err).Msg("hydrate: cached profile is corrupt")
		return nil
	}
	return &p
}

// Logout clears the session keys and resets to the initial anonymous view. Operations still in
// flight are detached: their results are discarded. The view is reset even when clearing fails.
func (s *Store) Logout() error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	err := s.creds.Clear()
	s.mutate(func() bool {
		s.epoch++
		s.inflight = 0
		s.user = nil
		s.errMsg = ""
		return true
	})
	if err != nil {
		return errors.Wrap(err, "[session Logout] clearing credentials")
	}
	s.logger.Info().Msg("signed out")
	return nil
}
