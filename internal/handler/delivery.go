package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/avolkov/marketplace-order-service/internal/auth"
	"github.com/avolkov/marketplace-order-service/internal/entities"
	"github.com/avolkov/marketplace-order-service/internal/service"
	"github.com/avolkov/marketplace-order-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type DeliveryService interface {
	Assign(ctx context.Context, orderID, partnerID string, id auth.Identity) (entities.Delivery, error)
	UpdateDeliveryStatus(ctx context.Context, orderID string, newStatus entities.OrderStatus, id auth.Identity) (entities.Order, error)
	ListMyDeliveries(ctx context.Context, userID string, filter entities.DeliveryFilter) ([]entities.PartnerDelivery, error)
	ToggleOnline(ctx context.Context, userID string, online bool) (entities.DeliveryPartner, error)
	ListPartners(ctx context.Context, in service.ListPartnersInput) ([]entities.DeliveryPartner, error)
	VerifyPartner(ctx context.Context, partnerID string, verified bool) error
}

type DeliveryHandler struct {
	logger   *slog.Logger
	validate *validator.Validate
	resolver auth.Resolver
	svc      DeliveryService
}

func NewDeliveryHandler(logger *slog.Logger, resolver auth.Resolver, svc DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{
		logger:   logger.With(slog.String("handler", "delivery")),
		validate: validator.New(),
		resolver: resolver,
		svc:      svc,
	}
}

func (h *DeliveryHandler) Init(r chi.Router) {
	r.Route("/delivery", func(r chi.Router) {
		r.Use(auth.Middleware(h.resolver))

		r.With(auth.RequireRoles(entities.RoleAdmin, entities.RoleVendor)).Post("/assign", h.Assign)
		r.With(auth.RequireRoles(entities.RoleDelivery, entities.RoleAdmin)).
			Put("/orders/{order_id}/status", h.UpdateStatus)
		r.With(auth.RequireRoles(entities.RoleDelivery)).Get("/my-orders", h.ListMyDeliveries)
		r.With(auth.RequireRoles(entities.RoleDelivery)).Post("/status", h.ToggleOnline)
		r.With(auth.RequireRoles(entities.RoleAdmin)).Get("/partners", h.ListPartners)
		r.With(auth.RequireRoles(entities.RoleAdmin)).Put("/partners/{partner_id}/verify", h.VerifyPartner)
	})
}

// Assign links a delivery partner to an order.
// @Summary      Assign order to partner
// @Tags         delivery
// @Param        request body AssignRequest true "Assignment payload"
// @Success      200  {object}  utils.Response
// @Failure      404  {object}  utils.ErrorResponse
// @Failure      409  {object}  utils.ErrorResponse
// @Router       /delivery/assign [post]
func (h *DeliveryHandler) Assign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.IdentityFromContext(ctx)

	var req AssignRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	delivery, err := h.svc.Assign(ctx, req.OrderID, req.PartnerID, id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteSuccess(w, "order assigned", DeliveryEntityToJSON(delivery), http.StatusOK)
}

// UpdateStatus is the partner-facing order status update.
// @Summary      Update delivery status
// @Tags         delivery
// @Param        order_id  path  string               true  "Order id"
// @Param        request   body  UpdateStatusRequest  true  "New status"
// @Success      200  {object}  utils.Response
// @Failure      403  {object}  utils.ErrorResponse
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /delivery/orders/{order_id}/status [put]
func (h *DeliveryHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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

	order, err := h.svc.UpdateDeliveryStatus(ctx, orderID, entities.OrderStatus(req.Status), id)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteSuccess(w, "status updated", service.NewOrderView(order), http.StatusOK)
}

// ListMyDeliveries returns the partner's active or finished deliveries.
// @Summary      List my deliveries
// @Tags         delivery
// @Param        status  query  string  false  "active or history"
// @Success      200  {object}  utils.Response
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /delivery/my-orders [get]
func (h *DeliveryHandler) ListMyDeliveries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.IdentityFromContext(ctx)

	filter := entities.DeliveryFilter(r.URL.Query().Get("status"))
	switch filter {
	case entities.DeliveryFilterNone, entities.DeliveryFilterActive, entities.DeliveryFilterHistory:
	default:
		utils.WriteError(w, "unknown status filter", http.StatusBadRequest)
		return
	}

	deliveries, err := h.svc.ListMyDeliveries(ctx, id.UserID, filter)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	views := make([]PartnerDeliveryView, 0, len(deliveries))
	for _, d := range deliveries {
		views = append(views, PartnerDeliveryEntityToJSON(d))
	}
	utils.WriteSuccess(w, "deliveries", views, http.StatusOK)
}

// ToggleOnline flips the partner's availability flag.
// @Summary      Toggle online status
// @Tags         delivery
// @Param        request body ToggleOnlineRequest true "Online flag"
// @Success      200  {object}  utils.Response
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /delivery/status [post]
func (h *DeliveryHandler) ToggleOnline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, _ := auth.IdentityFromContext(ctx)

	var req ToggleOnlineRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	partner, err := h.svc.ToggleOnline(ctx, id.UserID, *req.IsOnline)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteSuccess(w, "availability updated", PartnerEntityToJSON(partner), http.StatusOK)
}

// ListPartners is the administrative partner listing.
// @Summary      List delivery partners
// @Tags         delivery
// @Param        city      query  string  false  "City filter"
// @Param        verified  query  bool    false  "Verification filter"
// @Param        page      query  int     false  "Page, 1-based"
// @Param        limit     query  int     false  "Page size"
// @Success      200  {object}  utils.Response
// @Router       /delivery/partners [get]
func (h *DeliveryHandler) ListPartners(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in := service.ListPartnersInput{
		City:  r.URL.Query().Get("city"),
		Page:  queryUint(r, "page"),
		Limit: queryUint(r, "limit"),
	}
	if v := r.URL.Query().Get("verified"); v != "" {
		verified := v == "true"
		in.Verified = &verified
	}

	partners, err := h.svc.ListPartners(ctx, in)
	if err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	views := make([]PartnerView, 0, len(partners))
	for _, p := range partners {
		views = append(views, PartnerEntityToJSON(p))
	}
	utils.WriteSuccess(w, "partners", views, http.StatusOK)
}

// VerifyPartner flips the admin-controlled verification gate.
// @Summary      Verify delivery partner
// @Tags         delivery
// @Param        partner_id  path  string                true  "Partner id"
// @Param        request     body  VerifyPartnerRequest  true  "Verified flag"
// @Success      200  {object}  utils.Response
// @Failure      404  {object}  utils.ErrorResponse
// @Router       /delivery/partners/{partner_id}/verify [put]
func (h *DeliveryHandler) VerifyPartner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	partnerID := chi.URLParam(r, "partner_id")

	var req VerifyPartnerRequest
	if err := utils.DecodeBody(r, &req); err != nil {
		utils.WriteError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteValidationError(w, err)
		return
	}

	if err := h.svc.VerifyPartner(ctx, partnerID, *req.IsVerified); err != nil {
		writeServiceError(ctx, h.logger, w, err)
		return
	}

	utils.WriteSuccess(w, "verification updated", nil, http.StatusOK)
}
