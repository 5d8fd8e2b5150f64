package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avolkov/marketplace-order-service/internal/handler"
	"github.com/avolkov/marketplace-order-service/internal/realtime"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWSServer(t *testing.T) (*httptest.Server, *realtime.Registry, *realtime.Dispatcher) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := realtime.NewRegistry(logger)
	dispatcher := realtime.NewDispatcher(logger, registry)

	h := handler.NewWSHandler(logger, testResolver(), registry)
	r := chi.NewRouter()
	h.Init(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, registry, dispatcher
}

func wsURL(srv *httptest.Server, token string) string {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	if token != "" {
		url += "?token=" + token
	}
	return url
}

func waitConnected(t *testing.T, registry *realtime.Registry, userID string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if registry.Connected(userID) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("user %s never connected", userID)
}

func TestWSHandler_RejectsBadHandshakes(t *testing.T) {
	srv, registry, _ := newWSServer(t)

	testCases := []struct {
		name  string
		token string
	}{
		{name: "no token", token: ""},
		{name: "literal undefined", token: "undefined"},
		{name: "literal null", token: "null"},
		{name: "unknown token", token: "bogus"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, tc.token), nil)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assert.Equal(t, 0, registry.Count())
		})
	}
}

func TestWSHandler_DeliversEventsToAuthenticatedUser(t *testing.T) {
	srv, registry, dispatcher := newWSServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "cust-token"), nil)
	require.NoError(t, err)
	defer conn.Close()
	waitConnected(t, registry, "cust-1")

	dispatcher.EmitToUser("cust-1", "order_update", map[string]string{"orderId": "ord-1", "status": "ACCEPTED"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev realtime.Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "order_update", ev.Event)
}

func TestWSHandler_ReconnectReplacesChannel(t *testing.T) {
	srv, registry, dispatcher := newWSServer(t)

	first, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "cust-token"), nil)
	require.NoError(t, err)
	defer first.Close()
	waitConnected(t, registry, "cust-1")

	second, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "cust-token"), nil)
	require.NoError(t, err)
	defer second.Close()

	// The replaced channel is torn down before the new one is usable.
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = first.ReadMessage()
	require.Error(t, err)
	require.Equal(t, 1, registry.Count())

	dispatcher.EmitToUser("cust-1", "order_update", nil)

	second.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev realtime.Event
	require.NoError(t, second.ReadJSON(&ev))
	assert.Equal(t, "order_update", ev.Event)
}

func TestWSHandler_EmitToOfflineUserIsSilent(t *testing.T) {
	_, _, dispatcher := newWSServer(t)

	assert.NotPanics(t, func() {
		dispatcher.EmitToUser("nobody", "order_update", nil)
	})
}
