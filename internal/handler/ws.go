package handler

import (
	"log/slog"
	"net/http"

	"github.com/avolkov/marketplace-order-service/internal/auth"
	"github.com/avolkov/marketplace-order-service/internal/realtime"
	"github.com/avolkov/marketplace-order-service/pkg/utils"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// WSHandler authenticates the WebSocket handshake and hands the
// connection to the presence registry. The channel is receive-only for
// the client; unauthenticated handshakes are refused before upgrade.
type WSHandler struct {
	logger   *slog.Logger
	resolver auth.Resolver
	registry *realtime.Registry
	upgrader websocket.Upgrader
}

func NewWSHandler(logger *slog.Logger, resolver auth.Resolver, registry *realtime.Registry) *WSHandler {
	return &WSHandler{
		logger:   logger.With(slog.String("handler", "ws")),
		resolver: resolver,
		registry: registry,
		upgrader: websocket.Upgrader{
			// Origins are enforced by the CORS layer on the REST surface;
			// the channel carries no client-to-server application messages.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) Init(r chi.Router) {
	r.Get("/ws", h.Serve)
}

func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	credential := auth.Credential(r)
	if !auth.CredentialUsable(credential) {
		utils.WriteError(w, "authentication required", http.StatusUnauthorized)
		return
	}

	id, err := h.resolver.Verify(r.Context(), credential)
	if err != nil {
		utils.WriteError(w, "invalid credential", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	h.registry.Bind(id.UserID, conn)
}
