package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-session-gateway/gateway"
)

// Address is a delivery address owned by the signed-in user.
type Address struct {
	ID          int64  `json:"id"`
	AddressCode string `json:"address_code"` // Assigned by the backend, e.g. ADDR-1A2B3C
	Address     string `json:"address"`
}

type addressBody struct {
	Address string `json:"address"`
}

type Addresses struct {
	gw gateway.Requester
}

// List returns the caller's addresses. GET /addresses/
func (a *Addresses) List(ctx context.Context) ([]Address, error) {
	return gateway.Do[[]Address](ctx, a.gw, RouteAddresses, get)
}

// Create adds an address. POST /addresses/
func (a *Addresses) Create(ctx context.Context, address string) (*Address, error) {
	opts, err := withBody(http.MethodPost, addressBody{Address: address})
	if err != nil {
		return nil, err
	}
	created, err := gateway.Do[Address](ctx, a.gw, RouteAddresses, opts)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// Update rewrites the text of address id. PUT /addresses/{id}/
func (a *Addresses) Update(ctx context.Context, id int64, address string) (*Address, error) {
	opts, err := withBody(http.MethodPut, addressBody{Address: address})
	if err != nil {
		return nil, err
	}
	updated, err := gateway.Do[Address](ctx, a.gw, AddressPath(id), opts)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// AddressPath returns the item route for address id.
func AddressPath(id int64) string {
	return fmt.Sprintf("%s%d/", RouteAddresses, id)
}
