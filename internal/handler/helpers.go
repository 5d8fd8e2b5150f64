package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/avolkov/marketplace-order-service/internal/entities"
	"github.com/avolkov/marketplace-order-service/pkg/utils"
)

// writeServiceError maps service failures onto the response envelope.
// Internal detail never leaks to the caller.
func writeServiceError(ctx context.Context, logger *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, entities.ErrOrderNotFound):
		utils.WriteError(w, "order not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrShopNotFound):
		utils.WriteError(w, "shop not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrPartnerNotFound):
		utils.WriteError(w, "delivery partner not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrDeliveryNotFound):
		utils.WriteError(w, "delivery not found", http.StatusNotFound)
	case errors.Is(err, entities.ErrForbidden):
		utils.WriteError(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, entities.ErrPartnerNotVerified):
		utils.WriteError(w, "delivery partner is not verified", http.StatusConflict)
	case errors.Is(err, entities.ErrInvalidTransition):
		utils.WriteError(w, "invalid status transition", http.StatusBadRequest)
	case errors.Is(err, entities.ErrEmptyOrder):
		utils.WriteError(w, "order has no valid items", http.StatusBadRequest)
	default:
		logger.ErrorContext(ctx, "request failed", slog.Any("error", err))
		utils.WriteError(w, "internal server error", http.StatusInternalServerError)
	}
}
