package realtime

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "marketplace",
		Subsystem: "realtime",
		Name:      "open_connections",
		Help:      "Current number of registered live channels.",
	})

	eventsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "realtime",
		Name:      "events_emitted_total",
		Help:      "Total number of events delivered to a live channel.",
	}, []string{"event"})

	eventsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "marketplace",
		Subsystem: "realtime",
		Name:      "events_dropped_total",
		Help:      "Total number of events dropped without delivery.",
	}, []string{"event", "reason"})
)
