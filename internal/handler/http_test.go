package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avolkov/marketplace-order-service/internal/auth"
	"github.com/avolkov/marketplace-order-service/internal/entities"
	"github.com/avolkov/marketplace-order-service/internal/handler"
	"github.com/avolkov/marketplace-order-service/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderService struct {
	createIn     service.CreateOrderInput
	listIn       service.ListOrdersInput
	updateStatus entities.OrderStatus
	gotIdentity  auth.Identity

	order  entities.Order
	orders []entities.Order
	err    error
}

func (f *fakeOrderService) CreateOrder(_ context.Context, in service.CreateOrderInput) (entities.Order, error) {
	f.createIn = in
	return f.order, f.err
}

func (f *fakeOrderService) GetOrder(_ context.Context, _ string, id auth.Identity) (entities.Order, error) {
	f.gotIdentity = id
	return f.order, f.err
}

func (f *fakeOrderService) ListOrders(_ context.Context, in service.ListOrdersInput, id auth.Identity) ([]entities.Order, error) {
	f.listIn = in
	f.gotIdentity = id
	return f.orders, f.err
}

func (f *fakeOrderService) UpdateStatus(_ context.Context, _ string, newStatus entities.OrderStatus, id auth.Identity) (entities.Order, error) {
	f.updateStatus = newStatus
	f.gotIdentity = id
	return f.order, f.err
}

func testResolver() auth.Resolver {
	r := auth.NewStaticResolver()
	r.Add("cust-token", auth.Identity{UserID: "cust-1", Role: entities.RoleCustomer})
	r.Add("vendor-token", auth.Identity{UserID: "vendor-1", Role: entities.RoleVendor})
	r.Add("rider-token", auth.Identity{UserID: "rider-1", Role: entities.RoleDelivery})
	r.Add("admin-token", auth.Identity{UserID: "admin-1", Role: entities.RoleAdmin})
	return r
}

func newOrderRouter(svc *fakeOrderService) chi.Router {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewOrderHandler(logger, testResolver(), svc)
	r := chi.NewRouter()
	h.Init(r)
	return r
}

func doRequest(t *testing.T, router chi.Router, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestOrderHandler_CreateOrder(t *testing.T) {
	validBody := `{"shopId":"shop-1","deliveryAddressId":"addr-1","paymentMethod":"COD","items":[{"productId":"p-1","quantity":2}]}`

	testCases := []struct {
		name       string
		token      string
		body       string
		svc        *fakeOrderService
		wantStatus int
		wantBody   string
	}{
		{
			name:  "created",
			token: "cust-token",
			body:  validBody,
			svc: &fakeOrderService{order: entities.Order{
				ID: "ord-1", OrderNumber: "ORD-1", Total: 31250, Status: entities.StatusPlaced,
			}},
			wantStatus: http.StatusCreated,
			wantBody:   `"orderNumber":"ORD-1"`,
		},
		{
			name:       "no credential",
			token:      "",
			body:       validBody,
			svc:        &fakeOrderService{},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `"authentication required"`,
		},
		{
			name:       "literal undefined credential",
			token:      "undefined",
			body:       validBody,
			svc:        &fakeOrderService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown credential",
			token:      "bogus",
			body:       validBody,
			svc:        &fakeOrderService{},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `"invalid credential"`,
		},
		{
			name:       "vendors cannot place orders",
			token:      "vendor-token",
			body:       validBody,
			svc:        &fakeOrderService{},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "empty items list",
			token:      "cust-token",
			body:       `{"shopId":"shop-1","deliveryAddressId":"addr-1","paymentMethod":"COD","items":[]}`,
			svc:        &fakeOrderService{},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"Items"`,
		},
		{
			name:       "unknown payment method",
			token:      "cust-token",
			body:       `{"shopId":"shop-1","deliveryAddressId":"addr-1","paymentMethod":"CHEQUE","items":[{"productId":"p-1","quantity":1}]}`,
			svc:        &fakeOrderService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "malformed body",
			token:      "cust-token",
			body:       `{`,
			svc:        &fakeOrderService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown shop",
			token:      "cust-token",
			body:       validBody,
			svc:        &fakeOrderService{err: entities.ErrShopNotFound},
			wantStatus: http.StatusNotFound,
			wantBody:   `"shop not found"`,
		},
		{
			name:       "all items invalid",
			token:      "cust-token",
			body:       validBody,
			svc:        &fakeOrderService{err: entities.ErrEmptyOrder},
			wantStatus: http.StatusBadRequest,
			wantBody:   `"order has no valid items"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newOrderRouter(tc.svc)

			rr := doRequest(t, router, http.MethodPost, "/orders", tc.token, tc.body)

			assert.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantBody != "" {
				assert.Contains(t, rr.Body.String(), tc.wantBody)
			}
		})
	}
}

func TestOrderHandler_CreateOrder_UsesAuthenticatedCustomer(t *testing.T) {
	svc := &fakeOrderService{order: entities.Order{ID: "ord-1"}}
	router := newOrderRouter(svc)

	body := `{"shopId":"shop-1","deliveryAddressId":"addr-1","paymentMethod":"ONLINE","items":[{"productId":"p-1","quantity":1}]}`
	rr := doRequest(t, router, http.MethodPost, "/orders", "cust-token", body)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "cust-1", svc.createIn.CustomerID)
	assert.Equal(t, entities.PaymentOnline, svc.createIn.PaymentMethod)
	require.Len(t, svc.createIn.Items, 1)
	assert.Equal(t, "p-1", svc.createIn.Items[0].ProductID)
}

func TestOrderHandler_GetOrder(t *testing.T) {
	testCases := []struct {
		name       string
		token      string
		svc        *fakeOrderService
		wantStatus int
		wantBody   string
	}{
		{
			name:       "found",
			token:      "cust-token",
			svc:        &fakeOrderService{order: entities.Order{ID: "ord-1", Status: entities.StatusPlaced}},
			wantStatus: http.StatusOK,
			wantBody:   `"id":"ord-1"`,
		},
		{
			name:       "foreign order",
			token:      "cust-token",
			svc:        &fakeOrderService{err: entities.ErrForbidden},
			wantStatus: http.StatusForbidden,
			wantBody:   `"forbidden"`,
		},
		{
			name:       "missing order",
			token:      "admin-token",
			svc:        &fakeOrderService{err: entities.ErrOrderNotFound},
			wantStatus: http.StatusNotFound,
			wantBody:   `"order not found"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newOrderRouter(tc.svc)

			rr := doRequest(t, router, http.MethodGet, "/orders/ord-1", tc.token, "")

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
		})
	}
}

func TestOrderHandler_ListOrders(t *testing.T) {
	t.Run("passes filters through", func(t *testing.T) {
		svc := &fakeOrderService{orders: []entities.Order{{ID: "ord-1"}, {ID: "ord-2"}}}
		router := newOrderRouter(svc)

		rr := doRequest(t, router, http.MethodGet, "/orders?status=PLACED&page=2&limit=10", "cust-token", "")

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, entities.StatusPlaced, svc.listIn.Status)
		assert.Equal(t, uint64(2), svc.listIn.Page)
		assert.Equal(t, uint64(10), svc.listIn.Limit)

		var resp struct {
			Success bool              `json:"success"`
			Data    []json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		assert.Len(t, resp.Data, 2)
	})

	t.Run("unknown status filter", func(t *testing.T) {
		router := newOrderRouter(&fakeOrderService{})

		rr := doRequest(t, router, http.MethodGet, "/orders?status=SHIPPED", "cust-token", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	testCases := []struct {
		name       string
		token      string
		body       string
		svc        *fakeOrderService
		wantStatus int
	}{
		{
			name:       "vendor accepts",
			token:      "vendor-token",
			body:       `{"status":"ACCEPTED"}`,
			svc:        &fakeOrderService{order: entities.Order{ID: "ord-1", Status: entities.StatusAccepted}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "customers cannot update status",
			token:      "cust-token",
			body:       `{"status":"CANCELLED"}`,
			svc:        &fakeOrderService{},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "assignment goes through the delivery surface",
			token:      "admin-token",
			body:       `{"status":"ASSIGNED"}`,
			svc:        &fakeOrderService{},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "invalid transition",
			token:      "vendor-token",
			body:       `{"status":"DELIVERED"}`,
			svc:        &fakeOrderService{err: entities.ErrInvalidTransition},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := newOrderRouter(tc.svc)

			rr := doRequest(t, router, http.MethodPut, "/orders/ord-1/status", tc.token, tc.body)
			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}
