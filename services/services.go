// Package services holds one thin typed wrapper per backend resource. Each call maps to a fixed
// path, method and body shape on the gateway and adds no behavior of its own.
package services

import (
	"net/http"

	"github.com/jrsteele09/go-session-gateway/gateway"
)

// Route paths, relative to the gateway base URL.
const (
	RouteSignUp    = "/signup/"
	RouteSignIn    = "/signin/"
	RouteProfile   = "/profile/"
	RouteProducts  = "/products/"
	RouteAddresses = "/addresses/"
	RouteOrders    = "/orders/"
	RouteDashboard = "/dashboard/"
)

// Services bundles every wrapper over one gateway.
type Services struct {
	Auth      *Auth
	Profiles  *Profiles
	Addresses *Addresses
	Orders    *Orders
	Products  *Products
	Dashboard *Dashboard
}

func New(gw gateway.Requester) *Services {
	return &Services{
		Auth:      &Auth{gw: gw},
		Profiles:  &Profiles{gw: gw},
		Addresses: &Addresses{gw: gw},
		Orders:    &Orders{gw: gw},
		Products:  &Products{gw: gw},
		Dashboard: &Dashboard{gw: gw},
	}
}

func withBody(method string, payload any) (gateway.RequestOptions, error) {
	body, err := gateway.JSONBody(payload)
	if err != nil {
		return gateway.RequestOptions{}, err
	}
	return gateway.RequestOptions{Method: method, Body: body}, nil
}

var get = gateway.RequestOptions{Method: http.MethodGet}
