package services_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jrsteele09/go-session-gateway/gateway"
	"github.com/jrsteele09/go-session-gateway/services"
	"github.com/jrsteele09/go-session-gateway/users"
	"github.com/stretchr/testify/require"
)

type call struct {
	path string
	opts gateway.RequestOptions
}

// stubRequester records every call and answers with a fixed body or error.
type stubRequester struct {
	calls []call
	body  string
	err   error
}

func (s *stubRequester) Request(_ context.Context, path string, opts gateway.RequestOptions) (json.RawMessage, error) {
	s.calls = append(s.calls, call{path: path, opts: opts})
	if s.err != nil {
		return nil, s.err
	}
	return json.RawMessage(s.body), nil
}

func (s *stubRequester) last(t *testing.T) call {
	t.Helper()
	require.NotEmpty(t, s.calls)
	return s.calls[len(s.calls)-1]
}

func TestAuth(t *testing.T) {
	t.Run("SignUp is anonymous", func(t *testing.T) {
		stub := &stubRequester{body: `{"message":"Account created successfully"}`}
		resp, err := services.New(stub).Auth.SignUp(context.Background(), users.SignUpRequest{
			Email: "a@b.com", FullName: "A", Company: "C", Password: "pw",
		})
		require.NoError(t, err)
		require.Equal(t, "Account created successfully", resp.Message)

		c := stub.last(t)
		require.Equal(t, "/signup/", c.path)
		require.Equal(t, http.MethodPost, c.opts.Method)
		require.True(t, c.opts.Anonymous)
		require.JSONEq(t, `{"email":"a@b.com","full_name":"A","company":"C","password":"pw"}`, c.opts.Body)
	})

	t.Run("SignIn decodes tokens and user", func(t *testing.T) {
		stub := &stubRequester{body: `{"access":"T1","refresh":"T2","user":{"id":7,"email":"a@b.com","full_name":"A","company":"C","user_id":"USR-1","is_verified":true}}`}
		resp, err := services.New(stub).Auth.SignIn(context.Background(), users.Credentials{Email: "a@b.com", Password: "pw"})
		require.NoError(t, err)
		require.Equal(t, "T1", resp.Access)
		require.Equal(t, "T2", resp.Refresh)
		require.NotNil(t, resp.User)
		require.Equal(t, int64(7), resp.User.ID)
		require.True(t, resp.User.IsVerified)

		c := stub.last(t)
		require.Equal(t, "/signin/", c.path)
		require.True(t, c.opts.Anonymous)
		require.JSONEq(t, `{"email":"a@b.com","password":"pw"}`, c.opts.Body)
	})

	t.Run("Failures pass through unchanged", func(t *testing.T) {
		failure := &gateway.RequestFailedError{StatusCode: http.StatusUnauthorized, Message: "Invalid credentials"}
		stub := &stubRequester{err: failure}
		_, err := services.New(stub).Auth.SignIn(context.Background(), users.Credentials{})
		require.ErrorIs(t, err, gateway.ErrRequestFailed)
		require.Equal(t, "Invalid credentials", err.Error())
	})
}

func TestProfiles(t *testing.T) {
	stub := &stubRequester{body: `{"id":1,"email":"a@b.com","full_name":"New Name","company":"C","gst_number":"GST1","user_id":"USR-1","is_verified":false}`}
	svc := services.New(stub)

	p, err := svc.Profiles.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "New Name", p.FullName)
	require.Equal(t, "GST1", p.GST())
	c := stub.last(t)
	require.Equal(t, "/profile/", c.path)
	require.Equal(t, http.MethodGet, c.opts.Method)
	require.False(t, c.opts.Anonymous)

	gst := "GST1"
	_, err = svc.Profiles.Update(context.Background(), users.ProfileUpdate{FullName: "New Name", Company: "C", GSTNumber: &gst})
	require.NoError(t, err)
	c = stub.last(t)
	require.Equal(t, http.MethodPut, c.opts.Method)
	require.JSONEq(t, `{"full_name":"New Name","company":"C","gst_number":"GST1"}`, c.opts.Body)
}

func TestAddresses(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		stub := &stubRequester{body: `[{"id":1,"address_code":"ADDR-1","address":"1 Road"}]`}
		list, err := services.New(stub).Addresses.List(context.Background())
		require.NoError(t, err)
		require.Equal(t, []services.Address{{ID: 1, AddressCode: "ADDR-1", Address: "1 Road"}}, list)
		require.Equal(t, "/addresses/", stub.last(t).path)
	})

	t.Run("Create and Update", func(t *testing.T) {
		stub := &stubRequester{body: `{"id":4,"address_code":"ADDR-4","address":"2 Lane"}`}
		svc := services.New(stub)

		created, err := svc.Addresses.Create(context.Background(), "2 Lane")
		require.NoError(t, err)
		require.Equal(t, int64(4), created.ID)
		require.Equal(t, http.MethodPost, stub.last(t).opts.Method)
		require.JSONEq(t, `{"address":"2 Lane"}`, stub.last(t).opts.Body)

		_, err = svc.Addresses.Update(context.Background(), 4, "2 Lane")
		require.NoError(t, err)
		require.Equal(t, "/addresses/4/", stub.last(t).path)
		require.Equal(t, http.MethodPut, stub.last(t).opts.Method)
	})
}

func TestOrders(t *testing.T) {
	t.Run("Place omits a missing address", func(t *testing.T) {
		stub := &stubRequester{body: `{"order_id":"ORD-1","net_amount":"118.00","gst":18.0}`}
		placed, err := services.New(stub).Orders.Place(context.Background(), []services.OrderItemInput{{ProductID: 3, Quantity: 2}}, nil)
		require.NoError(t, err)
		require.Equal(t, "ORD-1", placed.OrderID)
		require.Equal(t, services.Amount("118.00"), placed.NetAmount)
		require.Equal(t, services.Amount("18.0"), placed.GST)
		require.JSONEq(t, `{"items":[{"product_id":3,"quantity":2}]}`, stub.last(t).opts.Body)
	})

	t.Run("Place with address", func(t *testing.T) {
		stub := &stubRequester{body: `{"order_id":"ORD-2","net_amount":"1","gst":"0"}`}
		addressID := int64(9)
		_, err := services.New(stub).Orders.Place(context.Background(), nil, &addressID)
		require.NoError(t, err)
		require.JSONEq(t, `{"items":null,"address_id":9}`, stub.last(t).opts.Body)
	})

	t.Run("List", func(t *testing.T) {
		stub := &stubRequester{body: `[{"id":1,"order_id":"ORD-1","status":"active","items":[{"product_name":"Widget","quantity":2,"price":"50.00"}],"total_amount":"100.00","gst_amount":"18.00","net_amount":"118.00","created_at":"2024-01-02T03:04:05Z"}]`}
		list, err := services.New(stub).Orders.List(context.Background())
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, services.OrderActive, list[0].Status)
		require.Equal(t, "Widget", list[0].Items[0].ProductName)
		require.Equal(t, 2024, list[0].CreatedAt.Year())
	})

	t.Run("Shape mismatch is a parse error", func(t *testing.T) {
		stub := &stubRequester{body: `{"not":"a list"}`}
		_, err := services.New(stub).Orders.List(context.Background())
		require.ErrorIs(t, err, gateway.ErrResponseParse)
	})
}

func TestProductsAndDashboard(t *testing.T) {
	stub := &stubRequester{body: `[{"id":1,"name":"Widget","price":"50.00","category":"tools","is_active":true}]`}
	svc := services.New(stub)
	products, err := svc.Products.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Widget", products[0].Name)
	require.Equal(t, "/products/", stub.last(t).path)

	stub.body = `{"total_orders":3,"active_orders":1,"completed_orders":1,"cancelled_orders":1,"total_amount":236.0,"recent_orders":[]}`
	stats, err := svc.Dashboard.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, stats.TotalOrders)
	require.Equal(t, services.Amount("236.0"), stats.TotalAmount)
	require.Equal(t, "/dashboard/", stub.last(t).path)
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name string
		json string
		want services.Amount
	}{
		{name: "string", json: `"12.50"`, want: "12.50"},
		{name: "number", json: `12.5`, want: "12.5"},
		{name: "null", json: `null`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a services.Amount
			require.NoError(t, json.Unmarshal([]byte(tt.json), &a))
			require.Equal(t, tt.want, a)
		})
	}

	var bad services.Amount
	require.Error(t, json.Unmarshal([]byte(`true`), &bad))

	f, err := services.Amount("118.00").Float64()
	require.NoError(t, err)
	require.InDelta(t, 118.0, f, 0.0001)

	out, err := json.Marshal(services.Amount("1.5"))
	require.NoError(t, err)
	require.Equal(t, `"1.5"`, string(out))
}
