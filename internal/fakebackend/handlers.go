package fakebackend

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jrsteele09/go-session-gateway/internal/utils"
	"github.com/jrsteele09/go-session-gateway/services"
	"github.com/jrsteele09/go-session-gateway/users"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	recentOrderCount  = 5
	fieldRequired     = "This field is required."
)

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var req users.SignUpRequest
	if !decodeBody(w, r, &req) {
		return
	}

	fields := map[string][]string{}
	email := normaliseEmail(req.Email)
	switch {
	case email == "":
		fields["email"] = []string{fieldRequired}
	case !strings.Contains(email, "@"):
		fields["email"] = []string{"Enter a valid email address."}
	}
	switch {
	case req.Password == "":
		fields["password"] = []string{fieldRequired}
	case len(req.Password) < minPasswordLength:
		fields["password"] = []string{"Ensure this field has at least 8 characters."}
	}
	if len(fields) > 0 {
		writeFieldErrors(w, fields)
		return
	}

	if _, err := s.createAccount(req); err != nil {
		if errors.Is(err, errEmailTaken) {
			writeFieldErrors(w, map[string][]string{"email": {"Email already registered."}})
			return
		}
		s.logger.Error().Err(err).Msg("sign up failed")
		writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
		return
	}
	writeJSON(w, http.StatusCreated, users.SignUpResponse{Message: "Account created successfully"})
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var creds users.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}
	if creds.Email == "" || creds.Password == "" {
		writeDetail(w, http.StatusUnauthorized, "Email and password are required")
		return
	}

	s.data.lock.Lock()
	defer s.data.lock.Unlock()

	a, ok := s.data.accounts[normaliseEmail(creds.Email)]
	if !ok || bcrypt.CompareHashAndPassword(a.passwordHash, []byte(creds.Password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	access, err := s.issueAccessToken(a)
	if err != nil {
		s.logger.Error().Err(err).Msg("issuing access token")
		writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
		return
	}
	refresh, err := s.issueRefreshToken(a.profile.ID)
	if err != nil {
		s.logger.Error().Err(err).Msg("issuing refresh token")
		writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
		return
	}

	expiresIn := int(s.accessTTL.Seconds())
	writeJSON(w, http.StatusOK, users.SignInResponse{
		Access:    access,
		Refresh:   refresh,
		ExpiresIn: &expiresIn,
		User:      a.profile.Clone(),
	})
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	s.data.lock.RLock()
	defer s.data.lock.RUnlock()
	a := s.data.accountByID(userIDFromContext(r.Context()))
	writeJSON(w, http.StatusOK, a.profile)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var update users.ProfileUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	s.data.lock.Lock()
	defer s.data.lock.Unlock()
	a := s.data.accountByID(userIDFromContext(r.Context()))
	a.profile.FullName = update.FullName
	a.profile.Company = update.Company
	if update.GSTNumber != nil {
		a.profile.GSTNumber = utils.CloneValue(update.GSTNumber)
	}
	writeJSON(w, http.StatusOK, a.profile)
}

func (s *Server) handleListProducts(w http.ResponseWriter, _ *http.Request) {
	s.data.lock.RLock()
	defer s.data.lock.RUnlock()
	out := []services.Product{}
	for _, p := range s.data.activeProducts() {
		out = append(out, p.toResponse())
	}
	writeJSON(w, http.StatusOK, out)
}

type addressBody struct {
	Address string `json:"address"`
}

func (s *Server) handleListAddresses(w http.ResponseWriter, r *http.Request) {
	s.data.lock.RLock()
	defer s.data.lock.RUnlock()
	out := []services.Address{}
	for _, a := range s.data.userAddresses(userIDFromContext(r.Context())) {
		out = append(out, a.toResponse())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAddress(w http.ResponseWriter, r *http.Request) {
	var body addressBody
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Address) == "" {
		writeFieldErrors(w, map[string][]string{"address": {fieldRequired}})
		return
	}

	s.data.lock.Lock()
	defer s.data.lock.Unlock()
	s.data.nextAddressID++
	a := &address{
		id:     s.data.nextAddressID,
		userID: userIDFromContext(r.Context()),
		code:   shortCode("ADDR", 6),
		text:   body.Address,
	}
	s.data.addresses[a.id] = a
	writeJSON(w, http.StatusCreated, a.toResponse())
}

// ownedAddress resolves the {id} route parameter to an address of the caller. The lock must be held.
func (s *Server) ownedAddress(w http.ResponseWriter, r *http.Request) *address {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "No Address matches the given query.")
		return nil
	}
	a, ok := s.data.addresses[id]
	if !ok || a.userID != userIDFromContext(r.Context()) {
		writeDetail(w, http.StatusNotFound, "No Address matches the given query.")
		return nil
	}
	return a
}

func (s *Server) handleGetAddress(w http.ResponseWriter, r *http.Request) {
	s.data.lock.RLock()
	defer s.data.lock.RUnlock()
	if a := s.ownedAddress(w, r); a != nil {
		writeJSON(w, http.StatusOK, a.toResponse())
	}
}

func (s *Server) handleUpdateAddress(w http.ResponseWriter, r *http.Request) {
	var body addressBody
	if !decodeBody(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Address) == "" {
		writeFieldErrors(w, map[string][]string{"address": {fieldRequired}})
		return
	}

	s.data.lock.Lock()
	defer s.data.lock.Unlock()
	a := s.ownedAddress(w, r)
	if a == nil {
		return
	}
	a.text = body.Address
	writeJSON(w, http.StatusOK, a.toResponse())
}

func (s *Server) handleListOrders(w http.ResponseWriter, r *http.Request) {
	s.data.lock.RLock()
	defer s.data.lock.RUnlock()
	out := []services.Order{}
	for _, o := range s.data.userOrders(userIDFromContext(r.Context())) {
		out = append(out, o.toResponse())
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handlePlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req services.PlaceOrderRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Items) == 0 {
		writeFieldErrors(w, map[string][]string{"non_field_errors": {"Order must contain items"}})
		return
	}
	for _, item := range req.Items {
		if item.Quantity < 1 {
			writeFieldErrors(w, map[string][]string{"items": {"Ensure this value is greater than or equal to 1."}})
			return
		}
	}

	s.data.lock.Lock()
	defer s.data.lock.Unlock()

	userID := userIDFromContext(r.Context())
	o := &order{
		userID:    userID,
		orderID:   shortCode("ORD", 8),
		status:    services.OrderActive,
		createdAt: s.nowTime().UTC(),
	}
	if req.AddressID != nil {
		if a, ok := s.data.addresses[*req.AddressID]; ok && a.userID == userID {
			id := a.id
			o.addressID = &id
		}
	}
	for _, item := range req.Items {
		p, ok := s.data.products[item.ProductID]
		if !ok {
			writeDetail(w, http.StatusNotFound, "No Product matches the given query.")
			return
		}
		o.lines = append(o.lines, orderLine{productName: p.name, quantity: item.Quantity, priceCents: p.priceCents})
		o.totalCents += p.priceCents * int64(item.Quantity)
	}
	o.taxCents = gstCents(o.totalCents)
	o.netCents = o.totalCents + o.taxCents

	s.data.nextOrderID++
	o.id = s.data.nextOrderID
	s.data.orders = append(s.data.orders, o)

	writeJSON(w, http.StatusCreated, services.PlacedOrder{
		OrderID:   o.orderID,
		NetAmount: services.Amount(formatCents(o.netCents)),
		GST:       services.Amount(formatCents(o.taxCents)),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.data.lock.RLock()
	defer s.data.lock.RUnlock()

	stats := services.DashboardStats{RecentOrders: []services.Order{}}
	var netCents int64
	for i, o := range s.data.userOrders(userIDFromContext(r.Context())) {
		stats.TotalOrders++
		switch o.status {
		case services.OrderActive:
			stats.ActiveOrders++
		case services.OrderCompleted:
			stats.CompletedOrders++
		case services.OrderCancelled:
			stats.CancelledOrders++
		}
		netCents += o.netCents
		if i < recentOrderCount {
			stats.RecentOrders = append(stats.RecentOrders, o.toResponse())
		}
	}
	stats.TotalAmount = services.Amount(formatCents(netCents))
	writeJSON(w, http.StatusOK, stats)
}

func (p *product) toResponse() services.Product {
	return services.Product{
		ID:       p.id,
		Name:     p.name,
		Price:    services.Amount(formatCents(p.priceCents)),
		Category: p.category,
		IsActive: p.active,
	}
}

func (a *address) toResponse() services.Address {
	return services.Address{ID: a.id, AddressCode: a.code, Address: a.text}
}

func (o *order) toResponse() services.Order {
	items := make([]services.OrderItem, 0, len(o.lines))
	for _, l := range o.lines {
		items = append(items, services.OrderItem{
			ProductName: l.productName,
			Quantity:    l.quantity,
			Price:       services.Amount(formatCents(l.priceCents)),
		})
	}
	return services.Order{
		ID:          o.id,
		OrderID:     o.orderID,
		Status:      o.status,
		Items:       items,
		TotalAmount: services.Amount(formatCents(o.totalCents)),
		GSTAmount:   services.Amount(formatCents(o.taxCents)),
		NetAmount:   services.Amount(formatCents(o.netCents)),
		CreatedAt:   o.createdAt,
	}
}
