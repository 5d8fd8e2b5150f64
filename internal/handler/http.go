package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/avolkov/marketplace-order-service/internal/auth"
	"github.com/avolkov/marketplace-order-service/internal/entities"
	"github.com/avolkov/marketplace-order-service/internal/service"
	"github.com/avolkov/marketplace-order-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type OrderService interface {
	CreateOrder(ctx context.Context, in service.CreateOrderInput) (entities.Order, error)
	GetOrder(ctx context.Context, orderID string, id auth.Identity) (entities.Order, error)
	ListOrders(ctx context.Context, in service.ListOrdersInput, id auth.Identity) ([]entities.Order, error)
	UpdateStatus(ctx context.Context, orderID string, newStatus entities.OrderStatus, id auth.Identity) (entities.Order, error)
}

type OrderHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	resolver auth.Resolver
	svc      OrderService
}

func NewOrderHandler(logger *slog.Logger, resolver auth.Resolver, svc OrderService) *OrderHandler {
	return &OrderHandler{
		logger:   logger.With(slog.String("handler", "orders")),
		validate: validator.New(),
		resolver: resolver,
		svc:      svc,
	}
}

func (h *OrderHandler) Init(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Use(auth.Middleware(h.resolver))

		r.With(auth.RequireRoles(entities.RoleCustomer)).Post("/", h.CreateOrder)
		r.Get("/", h.ListOrders)
		r.Get("/{order_id}", h.GetOrder)
		r.With(auth.RequireRoles(entities.RoleVendor, entities.RoleAdmin, entities.RoleDelivery)).
			Put("/{order_id}/status", h.UpdateStatus)
	})
}

// CreateOrder places a new order for the authenticated customer.
// @Summary      Place order
// @Tags         orders
// @Param        request body CreateOrderRequest true "Order payload"
// @Success      201  {object}  utils.Response
// @Failure      400  {object}  utils.ValidationErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /orders [post]
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.IdentityFromContext(ctx)

	var req CreateOrderRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	in := service.CreateOrderInput{
		CustomerID:    id.UserID,
		ShopID:        req.ShopID,
		AddressID:     req.DeliveryAddressID,
		PaymentMethod: entities.PaymentMethod(req.PaymentMethod),
	}
	for _, it := range req.Items {
		in.Items = append(in.Items, service.CreateOrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.svc.CreateOrder(ctx, in)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteSuccess(w, "order placed", service.NewOrderView(order), http.StatusCreated)
}

// ListOrders returns the caller's role-scoped orders.
// @Summary      List orders
// @Tags         orders
// @Param        status  query  string  false  "Exact status filter"
// @Param        page    query  int     false  "Page, 1-based"
// @Param        limit   query  int     false  "Page size"
// @Success      200  {object}  utils.Response
// @Router       /orders [get]
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.IdentityFromContext(ctx)

	in := service.ListOrdersInput{
		Page:  queryUint(r, "page"),
		Limit: queryUint(r, "limit"),
	}
	if status := r.URL.Query().Get("status"); status != "" {
		s := entities.OrderStatus(status)
		if !s.Valid() {
			utils.WriteError(w, "unknown status", http.StatusBadRequest)
			return
		}
		in.Status = s
	}

	orders, err := h.svc.ListOrders(ctx, in, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	views := make([]service.OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, service.NewOrderView(o))
	}
	utils.WriteSuccess(w, "orders", views, http.StatusOK)
}

// GetOrder returns one order, role-scoped.
// @Summary      Get order
// @Tags         orders
// @Param        order_id  path  string  true  "Order id"
// @Success      200  {object}  utils.Response
// @Failure      403  {object}  utils.ErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /orders/{order_id} [get]
func (h *OrderHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.IdentityFromContext(ctx)
	orderID := chi.URLParam(r, "order_id")

	order, err := h.svc.GetOrder(ctx, orderID, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteSuccess(w, "order", service.NewOrderView(order), http.StatusOK)
}

// UpdateStatus advances the order's fulfillment status.
// @Summary      Update order status
// @Tags         orders
// @Param        order_id  path  string               true  "Order id"
// @Param        request   body  UpdateStatusRequest  true  "New status"
// @Success      200  {object}  utils.Response
// @Failure      400  {object}  utils.ErrorResponse
// @Failure      403  {object}  utils.ErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /orders/{order_id}/status [put]
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.IdentityFromContext(ctx)
	orderID := chi.URLParam(r, "order_id")

	var req UpdateStatusRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	order, err := h.svc.UpdateStatus(ctx, orderID, entities.OrderStatus(req.Status), id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteSuccess(w, "status updated", service.NewOrderView(order), http.StatusOK)
}

func queryUint(r *http.Request, name string) uint64 {
	v, err := strconv.ParseUint(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}
