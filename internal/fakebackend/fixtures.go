package fakebackend

import (
	"github.com/jrsteele09/go-session-gateway/services"
	"github.com/jrsteele09/go-session-gateway/users"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var (
	errEmailTaken    = errors.New("email already registered")
	errOrderNotFound = errors.New("order not found")
	errInvalidStatus = errors.New("invalid order status")
)

func (s *Server) seedProducts() {
	s.AddProduct("Starter Plan", 49900, "subscription", true)
	s.AddProduct("Growth Plan", 149900, "subscription", true)
	s.AddProduct("Onboarding Session", 250000, "service", true)
	s.AddProduct("Legacy Plan", 9900, "subscription", false)
}

// createAccount registers a verified account with a bcrypt hash of the password.
func (s *Server) createAccount(req users.SignUpRequest) (*users.Profile, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return nil, errors.Wrap(err, "[fakebackend createAccount] hashing password")
	}

	s.data.lock.Lock()
	defer s.data.lock.Unlock()

	email := normaliseEmail(req.Email)
	if _, exists := s.data.accounts[email]; exists {
		return nil, errEmailTaken
	}
	s.data.nextUserID++
	a := &account{
		profile: users.Profile{
			ID:         s.data.nextUserID,
			Email:      email,
			FullName:   req.FullName,
			Company:    req.Company,
			UserID:     shortCode("USR", 8),
			IsVerified: true,
		},
		passwordHash: hash,
	}
	s.data.accounts[email] = a
	return a.profile.Clone(), nil
}

// AddUser registers an account directly, bypassing the sign up route.
func (s *Server) AddUser(email, password, fullName, company string) (*users.Profile, error) {
	return s.createAccount(users.SignUpRequest{
		Email:    email,
		FullName: fullName,
		Company:  company,
		Password: password,
	})
}

// AddProduct adds a catalogue entry and returns its id.
func (s *Server) AddProduct(name string, priceCents int64, category string, active bool) int64 {
	s.data.lock.Lock()
	defer s.data.lock.Unlock()
	s.data.nextProductID++
	id := s.data.nextProductID
	s.data.products[id] = &product{
		id:         id,
		name:       name,
		priceCents: priceCents,
		category:   category,
		active:     active,
	}
	return id
}

// SetOrderStatus moves an order to active, completed or cancelled.
func (s *Server) SetOrderStatus(orderID, status string) error {
	switch status {
	case services.OrderActive, services.OrderCompleted, services.OrderCancelled:
	default:
		return errors.Wrap(errInvalidStatus, status)
	}

	s.data.lock.Lock()
	defer s.data.lock.Unlock()
	for _, o := range s.data.orders {
		if o.orderID == orderID {
			o.status = status
			return nil
		}
	}
	return errors.Wrap(errOrderNotFound, orderID)
}

// RefreshTokenOwner returns the id of the user holding refresh, if any.
func (s *Server) RefreshTokenOwner(refresh string) (int64, bool) {
	s.data.lock.RLock()
	defer s.data.lock.RUnlock()
	id, ok := s.data.refresh[refresh]
	return id, ok
}
