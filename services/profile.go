package services

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-session-gateway/gateway"
	"github.com/jrsteele09/go-session-gateway/users"
)

type Profiles struct {
	gw gateway.Requester
}

// Get fetches the signed-in profile. GET /profile/
func (p *Profiles) Get(ctx context.Context) (*users.Profile, error) {
	profile, err := gateway.Do[users.Profile](ctx, p.gw, RouteProfile, get)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// Update replaces the editable fields and returns the profile as stored by the backend. PUT /profile/
func (p *Profiles) Update(ctx context.Context, update users.ProfileUpdate) (*users.Profile, error) {
	opts, err := withBody(http.MethodPut, update)
	if err != nil {
		return nil, err
	}
	profile, err := gateway.Do[users.Profile](ctx, p.gw, RouteProfile, opts)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}
