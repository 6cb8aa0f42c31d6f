package fakebackend_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-gateway/internal/fakebackend"
	"github.com/jrsteele09/go-session-gateway/services"
	"github.com/jrsteele09/go-session-gateway/token"
	"github.com/jrsteele09/go-session-gateway/users"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "a@b.com"
	testPassword = "password1"
)

type fixture struct {
	backend *fakebackend.Server
	server  *httptest.Server
}

func newFixture(t *testing.T, opts ...fakebackend.Option) *fixture {
	t.Helper()
	backend, err := fakebackend.New(opts...)
	require.NoError(t, err)
	server := httptest.NewServer(backend)
	t.Cleanup(server.Close)
	return &fixture{backend: backend, server: server}
}

func (f *fixture) do(t *testing.T, method, path, bearer string, body any) (int, []byte) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, f.server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out bytes.Buffer
	_, err = out.ReadFrom(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out.Bytes()
}

func (f *fixture) signIn(t *testing.T) users.SignInResponse {
	t.Helper()
	_, err := f.backend.AddUser(testEmail, testPassword, "A", "C")
	require.NoError(t, err)
	status, body := f.do(t, http.MethodPost, "/signin/", "", users.Credentials{Email: testEmail, Password: testPassword})
	require.Equal(t, http.StatusOK, status, string(body))
	var resp users.SignInResponse
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp
}

func TestSignUp(t *testing.T) {
	f := newFixture(t)
	req := users.SignUpRequest{Email: testEmail, FullName: "A", Company: "C", Password: testPassword}

	status, body := f.do(t, http.MethodPost, "/signup/", "", req)
	require.Equal(t, http.StatusCreated, status)
	require.JSONEq(t, `{"message":"Account created successfully"}`, string(body))

	status, body = f.do(t, http.MethodPost, "/signup/", "", req)
	require.Equal(t, http.StatusBadRequest, status)
	require.JSONEq(t, `{"email":["Email already registered."]}`, string(body))

	status, body = f.do(t, http.MethodPost, "/signup/", "", users.SignUpRequest{Email: "x@y.com", Password: "short"})
	require.Equal(t, http.StatusBadRequest, status)
	require.JSONEq(t, `{"password":["Ensure this field has at least 8 characters."]}`, string(body))
}

func TestSignIn(t *testing.T) {
	t.Run("Issues tokens and the profile", func(t *testing.T) {
		now := time.Now()
		f := newFixture(t, fakebackend.WithNowTime(func() time.Time { return now }), fakebackend.WithAccessTTL(time.Minute))
		resp := f.signIn(t)

		require.NotEmpty(t, resp.Access)
		require.NotEmpty(t, resp.Refresh)
		require.NotNil(t, resp.ExpiresIn)
		require.Equal(t, 60, *resp.ExpiresIn)
		require.Equal(t, testEmail, resp.User.Email)
		require.True(t, resp.User.IsVerified)
		require.Regexp(t, `^USR-[0-9A-F]{8}$`, resp.User.UserID)

		claims, err := token.Inspect(resp.Access)
		require.NoError(t, err)
		require.Equal(t, resp.User.UserID, claims.Subject)
		require.Equal(t, testEmail, claims.Email)
		require.Equal(t, now.Add(time.Minute).Unix(), claims.ExpiresAt.Unix())

		owner, ok := f.backend.RefreshTokenOwner(resp.Refresh)
		require.True(t, ok)
		require.Equal(t, resp.User.ID, owner)
	})

	t.Run("Bad credentials", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.backend.AddUser(testEmail, testPassword, "A", "C")
		require.NoError(t, err)

		status, body := f.do(t, http.MethodPost, "/signin/", "", users.Credentials{Email: testEmail, Password: "wrong-password"})
		require.Equal(t, http.StatusUnauthorized, status)
		require.JSONEq(t, `{"detail":"Invalid email or password"}`, string(body))

		status, body = f.do(t, http.MethodPost, "/signin/", "", users.Credentials{Email: testEmail})
		require.Equal(t, http.StatusUnauthorized, status)
		require.JSONEq(t, `{"detail":"Email and password are required"}`, string(body))
	})
}

func TestAuthRequired(t *testing.T) {
	f := newFixture(t)

	status, body := f.do(t, http.MethodGet, "/profile/", "", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.JSONEq(t, `{"detail":"Authentication credentials were not provided."}`, string(body))

	status, body = f.do(t, http.MethodGet, "/profile/", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, status)
	require.JSONEq(t, `{"detail":"Given token not valid for any token type"}`, string(body))

	t.Run("Expired token", func(t *testing.T) {
		now := time.Now()
		clock := func() time.Time { return now }
		f := newFixture(t, fakebackend.WithNowTime(func() time.Time { return clock() }), fakebackend.WithAccessTTL(time.Minute))
		resp := f.signIn(t)

		clock = func() time.Time { return now.Add(2 * time.Minute) }
		status, _ := f.do(t, http.MethodGet, "/profile/", resp.Access, nil)
		require.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("Token signed with another secret", func(t *testing.T) {
		other := newFixture(t, fakebackend.WithSecret("another-secret"))
		resp := other.signIn(t)

		f := newFixture(t)
		_, err := f.backend.AddUser(testEmail, testPassword, "A", "C")
		require.NoError(t, err)
		status, _ := f.do(t, http.MethodGet, "/profile/", resp.Access, nil)
		require.Equal(t, http.StatusUnauthorized, status)
	})
}

func TestProfile(t *testing.T) {
	f := newFixture(t)
	access := f.signIn(t).Access

	gst := "GST-9"
	status, body := f.do(t, http.MethodPut, "/profile/", access, users.ProfileUpdate{FullName: "New", Company: "Co", GSTNumber: &gst})
	require.Equal(t, http.StatusOK, status)
	var updated users.Profile
	require.NoError(t, json.Unmarshal(body, &updated))
	require.Equal(t, "New", updated.FullName)
	require.Equal(t, "Co", updated.Company)
	require.Equal(t, "GST-9", updated.GST())
	require.Equal(t, testEmail, updated.Email)

	status, body = f.do(t, http.MethodGet, "/profile/", access, nil)
	require.Equal(t, http.StatusOK, status)
	var fetched users.Profile
	require.NoError(t, json.Unmarshal(body, &fetched))
	require.Equal(t, updated, fetched)
}

func TestAddresses(t *testing.T) {
	f := newFixture(t)
	access := f.signIn(t).Access

	status, body := f.do(t, http.MethodPost, "/addresses/", access, map[string]string{"address": "1 Road"})
	require.Equal(t, http.StatusCreated, status)
	var created services.Address
	require.NoError(t, json.Unmarshal(body, &created))
	require.Regexp(t, `^ADDR-[0-9A-F]{6}$`, created.AddressCode)

	status, body = f.do(t, http.MethodPut, services.AddressPath(created.ID), access, map[string]string{"address": "2 Lane"})
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, string(body), "2 Lane")

	status, _ = f.do(t, http.MethodPut, services.AddressPath(99), access, map[string]string{"address": "x"})
	require.Equal(t, http.StatusNotFound, status)

	status, body = f.do(t, http.MethodPost, "/addresses/", access, map[string]string{})
	require.Equal(t, http.StatusBadRequest, status)
	require.JSONEq(t, `{"address":["This field is required."]}`, string(body))

	status, body = f.do(t, http.MethodGet, "/addresses/", access, nil)
	require.Equal(t, http.StatusOK, status)
	var list []services.Address
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	require.Equal(t, "2 Lane", list[0].Address)
}

func TestOrdersAndDashboard(t *testing.T) {
	f := newFixture(t, fakebackend.WithoutProducts())
	widget := f.backend.AddProduct("Widget", 5000, "tools", true)
	access := f.signIn(t).Access

	status, body := f.do(t, http.MethodPost, "/orders/", access, services.PlaceOrderRequest{
		Items: []services.OrderItemInput{{ProductID: widget, Quantity: 2}},
	})
	require.Equal(t, http.StatusCreated, status, string(body))
	var placed services.PlacedOrder
	require.NoError(t, json.Unmarshal(body, &placed))
	require.Equal(t, services.Amount("118.00"), placed.NetAmount)
	require.Equal(t, services.Amount("18.00"), placed.GST)

	status, body = f.do(t, http.MethodPost, "/orders/", access, services.PlaceOrderRequest{})
	require.Equal(t, http.StatusBadRequest, status)
	require.JSONEq(t, `{"non_field_errors":["Order must contain items"]}`, string(body))

	status, _ = f.do(t, http.MethodPost, "/orders/", access, services.PlaceOrderRequest{
		Items: []services.OrderItemInput{{ProductID: 404, Quantity: 1}},
	})
	require.Equal(t, http.StatusNotFound, status)

	status, body = f.do(t, http.MethodGet, "/orders/", access, nil)
	require.Equal(t, http.StatusOK, status)
	var orders []services.Order
	require.NoError(t, json.Unmarshal(body, &orders))
	require.Len(t, orders, 1)
	require.Equal(t, placed.OrderID, orders[0].OrderID)
	require.Equal(t, services.Amount("100.00"), orders[0].TotalAmount)
	require.Equal(t, services.Amount("50.00"), orders[0].Items[0].Price)

	require.NoError(t, f.backend.SetOrderStatus(placed.OrderID, services.OrderCompleted))
	require.Error(t, f.backend.SetOrderStatus(placed.OrderID, "lost"))

	status, body = f.do(t, http.MethodGet, "/dashboard/", access, nil)
	require.Equal(t, http.StatusOK, status)
	var stats services.DashboardStats
	require.NoError(t, json.Unmarshal(body, &stats))
	require.Equal(t, 1, stats.TotalOrders)
	require.Equal(t, 1, stats.CompletedOrders)
	require.Equal(t, 0, stats.ActiveOrders)
	require.Equal(t, services.Amount("118.00"), stats.TotalAmount)
	require.Len(t, stats.RecentOrders, 1)
}

func TestProductsOnlyActive(t *testing.T) {
	f := newFixture(t)
	access := f.signIn(t).Access

	status, body := f.do(t, http.MethodGet, "/products/", access, nil)
	require.Equal(t, http.StatusOK, status)
	var products []services.Product
	require.NoError(t, json.Unmarshal(body, &products))
	require.Len(t, products, 3)
	for _, p := range products {
		require.True(t, p.IsActive)
	}
}

func TestResponseOverridesAndCounts(t *testing.T) {
	f := newFixture(t)
	f.backend.SetResponse(http.MethodPost, "/signin/", http.StatusUnauthorized, `{"detail":"Invalid credentials"}`)

	status, body := f.do(t, http.MethodPost, "/signin/", "", users.Credentials{Email: testEmail, Password: testPassword})
	require.Equal(t, http.StatusUnauthorized, status)
	require.JSONEq(t, `{"detail":"Invalid credentials"}`, string(body))
	require.Equal(t, 1, f.backend.Requests(http.MethodPost, "/signin/"))

	f.backend.ClearResponses()
	f.signIn(t)
	require.Equal(t, 2, f.backend.Requests(http.MethodPost, "/signin/"))
	require.Equal(t, 2, f.backend.TotalRequests())
}
