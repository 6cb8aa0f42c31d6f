package services

import (
	"context"

	"github.com/jrsteele09/go-session-gateway/gateway"
)

// DashboardStats summarises the caller's orders.
type DashboardStats struct {
	TotalOrders     int     `json:"total_orders"`
	ActiveOrders    int     `json:"active_orders"`
	CompletedOrders int     `json:"completed_orders"`
	CancelledOrders int     `json:"cancelled_orders"`
	TotalAmount     Amount  `json:"total_amount"`
	RecentOrders    []Order `json:"recent_orders"`
}

type Dashboard struct {
	gw gateway.Requester
}

// Get returns the order statistics. GET /dashboard/
func (d *Dashboard) Get(ctx context.Context) (*DashboardStats, error) {
	stats, err := gateway.Do[DashboardStats](ctx, d.gw, RouteDashboard, get)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
