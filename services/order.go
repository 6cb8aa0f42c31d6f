package services

import (
	"context"
	"net/http"
	"time"

	"github.com/jrsteele09/go-session-gateway/gateway"
)

// OrderItemInput is one line of a new order.
type OrderItemInput struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// PlaceOrderRequest is the body of POST /orders/. AddressID is optional.
type PlaceOrderRequest struct {
	Items     []OrderItemInput `json:"items"`
	AddressID *int64           `json:"address_id,omitempty"`
}

// PlacedOrder is the backend's confirmation of a new order.
type PlacedOrder struct {
	OrderID   string `json:"order_id"`
	NetAmount Amount `json:"net_amount"`
	GST       Amount `json:"gst"`
}

// OrderItem is a priced line of an existing order.
type OrderItem struct {
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	Price       Amount `json:"price"`
}

// Order statuses reported by the backend.
const (
	OrderActive    = "active"
	OrderCompleted = "completed"
	OrderCancelled = "cancelled"
)

type Order struct {
	ID          int64       `json:"id"`
	OrderID     string      `json:"order_id"`
	Status      string      `json:"status"`
	Items       []OrderItem `json:"items"`
	TotalAmount Amount      `json:"total_amount"`
	GSTAmount   Amount      `json:"gst_amount"`
	NetAmount   Amount      `json:"net_amount"`
	CreatedAt   time.Time   `json:"created_at"`
}

type Orders struct {
	gw gateway.Requester
}

// Place submits a new order. POST /orders/
func (o *Orders) Place(ctx context.Context, items []OrderItemInput, addressID *int64) (*PlacedOrder, error) {
	opts, err := withBody(http.MethodPost, PlaceOrderRequest{Items: items, AddressID: addressID})
	if err != nil {
		return nil, err
	}
	placed, err := gateway.Do[PlacedOrder](ctx, o.gw, RouteOrders, opts)
	if err != nil {
		return nil, err
	}
	return &placed, nil
}

// List returns the caller's orders, newest first. GET /orders/
func (o *Orders) List(ctx context.Context) ([]Order, error) {
	return gateway.Do[[]Order](ctx, o.gw, RouteOrders, get)
}
