package services

import (
	"context"

	"github.com/jrsteele09/go-session-gateway/gateway"
)

type Product struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    Amount `json:"price"`
	Category string `json:"category"`
	IsActive bool   `json:"is_active"`
}

type Products struct {
	gw gateway.Requester
}

// List returns the active catalogue. GET /products/
func (p *Products) List(ctx context.Context) ([]Product, error) {
	return gateway.Do[[]Product](ctx, p.gw, RouteProducts, get)
}
