package session_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-session-gateway/credentials"
	"github.com/jrsteele09/go-session-gateway/gateway"
	"github.com/jrsteele09/go-session-gateway/internal/fakebackend"
	"github.com/jrsteele09/go-session-gateway/services"
	"github.com/jrsteele09/go-session-gateway/session"
	"github.com/jrsteele09/go-session-gateway/users"
	"github.com/stretchr/testify/require"
)

const signInBody = `{"access":"T1","refresh":"T2","user":{"id":1,"email":"a@b.com","full_name":"A","company":"C","user_id":"u1","is_verified":true}}`

type stack struct {
	backend *fakebackend.Server
	creds   *credentials.Namespaced
	svc     *services.Services
	store   *session.Store
}

func newStack(t *testing.T) *stack {
	t.Helper()
	backend, err := fakebackend.New()
	require.NoError(t, err)
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	creds := credentials.NewNamespaced(credentials.NewMemoryBackend(), "")
	gw, err := gateway.New(ts.URL, creds)
	require.NoError(t, err)
	svc := services.New(gw)
	store, err := session.New(creds, svc.Auth, svc.Profiles)
	require.NoError(t, err)
	return &stack{backend: backend, creds: creds, svc: svc, store: store}
}

func (s *stack) signUpAndIn(t *testing.T) {
	t.Helper()
	_, err := s.store.SignUp(context.Background(), users.SignUpRequest{Email: "a@b.com", FullName: "A", Company: "C", Password: "password1"})
	require.NoError(t, err)
	_, err = s.store.SignIn(context.Background(), users.Credentials{Email: "a@b.com", Password: "password1"})
	require.NoError(t, err)
}

func TestEndToEnd_SignIn(t *testing.T) {
	s := newStack(t)
	s.backend.SetResponse(http.MethodPost, "/signin/", http.StatusOK, signInBody)

	_, err := s.store.SignIn(context.Background(), users.Credentials{Email: "a@b.com", Password: "pw"})
	require.NoError(t, err)

	want := &users.Profile{ID: 1, Email: "a@b.com", FullName: "A", Company: "C", UserID: "u1", IsVerified: true}
	require.Equal(t, session.View{User: want}, s.store.Snapshot())

	access, ok, err := s.creds.Get(credentials.KeyAccessToken)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "T1", access)
	refresh, _, err := s.creds.Get(credentials.KeyRefreshToken)
	require.NoError(t, err)
	require.Equal(t, "T2", refresh)
}

func TestEndToEnd_InvalidCredentials(t *testing.T) {
	s := newStack(t)
	s.backend.SetResponse(http.MethodPost, "/signin/", http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)

	_, err := s.store.SignIn(context.Background(), users.Credentials{Email: "a@b.com", Password: "pw"})
	require.EqualError(t, err, "Invalid credentials")
	require.ErrorIs(t, err, session.ErrSignInFailed)
	require.ErrorIs(t, err, gateway.ErrRequestFailed)
	require.Equal(t, session.View{Error: "Invalid credentials"}, s.store.Snapshot())

	t.Run("On an authorized call", func(t *testing.T) {
		s := newStack(t)
		s.signUpAndIn(t)
		s.backend.SetResponse(http.MethodGet, "/profile/", http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)

		_, err := s.store.LoadProfile(context.Background())
		require.EqualError(t, err, "Invalid credentials")
		require.Equal(t, "Invalid credentials", s.store.Snapshot().Error)
		require.False(t, s.store.Snapshot().Loading)
	})
}

func TestEndToEnd_LoadProfileWithoutSession(t *testing.T) {
	s := newStack(t)
	_, err := s.store.LoadProfile(context.Background())
	require.ErrorIs(t, err, session.ErrNotAuthenticated)
	require.Equal(t, 0, s.backend.TotalRequests())
}

func TestEndToEnd_UpdateProfile(t *testing.T) {
	s := newStack(t)
	s.signUpAndIn(t)

	p, err := s.store.UpdateProfile(context.Background(), users.ProfileUpdate{FullName: "New", Company: "Co"})
	require.NoError(t, err)
	require.Equal(t, "New", p.FullName)
	require.Equal(t, p, s.store.Snapshot().User)

	// The backend response wins over the submitted fields
	s.backend.SetResponse(http.MethodPut, "/profile/", http.StatusOK,
		`{"id":1,"email":"a@b.com","full_name":"New (verified)","company":"Co","user_id":"u1","is_verified":true}`)
	_, err = s.store.UpdateProfile(context.Background(), users.ProfileUpdate{FullName: "New", Company: "Co"})
	require.NoError(t, err)
	require.Equal(t, "New (verified)", s.store.Snapshot().User.FullName)
}

func TestEndToEnd_LogoutThenHydrate(t *testing.T) {
	s := newStack(t)
	s.signUpAndIn(t)
	_, err := s.store.LoadProfile(context.Background())
	require.NoError(t, err)

	require.NoError(t, s.store.Logout())
	require.Equal(t, session.View{}, s.store.Hydrate())

	// Without a token the gateway sends no bearer header
	_, err = s.svc.Profiles.Get(context.Background())
	require.EqualError(t, err, "Authentication credentials were not provided.")
}

func TestEndToEnd_HydrateAfterRestart(t *testing.T) {
	s := newStack(t)
	s.signUpAndIn(t)
	before := s.backend.TotalRequests()

	restarted, err := session.New(s.creds, s.svc.Auth, s.svc.Profiles)
	require.NoError(t, err)
	v := restarted.Hydrate()
	require.Equal(t, session.Authenticated, v.Phase())
	require.Equal(t, "a@b.com", v.User.Email)
	require.Equal(t, v, restarted.Hydrate())
	require.Equal(t, before, s.backend.TotalRequests())

	_, err = restarted.LoadProfile(context.Background())
	require.NoError(t, err)
}
