package services

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-session-gateway/gateway"
	"github.com/jrsteele09/go-session-gateway/users"
)

// Auth wraps the unauthenticated account endpoints.
type Auth struct {
	gw gateway.Requester
}

// SignUp creates an account. POST /signup/
func (a *Auth) SignUp(ctx context.Context, req users.SignUpRequest) (*users.SignUpResponse, error) {
	opts, err := withBody(http.MethodPost, req)
	if err != nil {
		return nil, err
	}
	opts.Anonymous = true
	resp, err := gateway.Do[users.SignUpResponse](ctx, a.gw, RouteSignUp, opts)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// SignIn exchanges credentials for tokens and the profile. POST /signin/
func (a *Auth) SignIn(ctx context.Context, creds users.Credentials) (*users.SignInResponse, error) {
	opts, err := withBody(http.MethodPost, creds)
	if err != nil {
		return nil, err
	}
	opts.Anonymous = true
	resp, err := gateway.Do[users.SignInResponse](ctx, a.gw, RouteSignIn, opts)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}
