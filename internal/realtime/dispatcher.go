package realtime

import (
	"log/slog"
	"time"
)

// Dispatcher pushes named events to specific users. Delivery is
// at-most-once and best-effort: users without a live channel are
// skipped silently, and a send never blocks the caller. Clients treat
// events as invalidate-and-refetch signals, never as the source of
// truth — the persisted order state stays independently queryable.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
}

func NewDispatcher(logger *slog.Logger, registry *Registry) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		logger:   logger.With(slog.String("component", "dispatcher")),
	}
}

func (d *Dispatcher) EmitToUser(userID string, event string, payload any) {
	ev := Event{Event: event, Data: payload, At: time.Now().UTC()}

	switch d.registry.deliver(userID, ev) {
	case deliverOK:
		eventsEmitted.WithLabelValues(event).Inc()
	case deliverOffline:
		eventsDropped.WithLabelValues(event, "offline").Inc()
	case deliverFull:
		eventsDropped.WithLabelValues(event, "slow_client").Inc()
		d.logger.Warn("send buffer full, event dropped",
			slog.String("user_id", userID), slog.String("event", event))
	}
}

// Broadcast delivers an event to every connected channel. Used for
// platform-wide announcements; the order flow never calls it.
func (d *Dispatcher) Broadcast(event string, payload any) {
	ev := Event{Event: event, Data: payload, At: time.Now().UTC()}
	n := d.registry.deliverAll(ev)
	eventsEmitted.WithLabelValues(event).Add(float64(n))
}
