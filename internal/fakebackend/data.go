package fakebackend

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-session-gateway/users"
)

// gstRatePercent is applied to every order total.
const gstRatePercent = 18

type account struct {
	profile      users.Profile
	passwordHash []byte
}

type address struct {
	id     int64
	userID int64
	code   string
	text   string
}

type product struct {
	id         int64
	name       string
	priceCents int64
	category   string
	active     bool
}

type orderLine struct {
	productName string
	quantity    int
	priceCents  int64
}

type order struct {
	id         int64
	userID     int64
	orderID    string
	status     string
	addressID  *int64
	lines      []orderLine
	totalCents int64
	taxCents   int64
	netCents   int64
	createdAt  time.Time
}

// data is the in-memory backend state.
type data struct {
	lock sync.RWMutex

	accounts  map[string]*account // By lower-cased email
	addresses map[int64]*address
	products  map[int64]*product
	orders    []*order
	refresh   map[string]int64 // Refresh token to user id

	nextUserID    int64
	nextAddressID int64
	nextProductID int64
	nextOrderID   int64
}

func newData() *data {
	return &data{
		accounts:  make(map[string]*account),
		addresses: make(map[int64]*address),
		products:  make(map[int64]*product),
		refresh:   make(map[string]int64),
	}
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// shortCode returns prefix followed by n upper-case hex characters, e.g. USR-1A2B3C4D.
func shortCode(prefix string, n int) string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return prefix + "-" + strings.ToUpper(hex[:n])
}

func (d *data) accountByID(id int64) *account {
	for _, a := range d.accounts {
		if a.profile.ID == id {
			return a
		}
	}
	return nil
}

func (d *data) userAddresses(userID int64) []*address {
	var out []*address
	for _, a := range d.addresses {
		if a.userID == userID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (d *data) activeProducts() []*product {
	var out []*product
	for _, p := range d.products {
		if p.active {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// userOrders returns the orders of userID, newest first.
func (d *data) userOrders(userID int64) []*order {
	var out []*order
	for i := len(d.orders) - 1; i >= 0; i-- {
		if d.orders[i].userID == userID {
			out = append(out, d.orders[i])
		}
	}
	return out
}

// formatCents renders an amount the way a two place decimal field is serialised.
func formatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// gstCents is the tax on totalCents, rounded half up to the cent.
func gstCents(totalCents int64) int64 {
	return (totalCents*gstRatePercent + 50) / 100
}
