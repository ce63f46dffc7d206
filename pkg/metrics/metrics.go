package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Core counters for the delivery pipeline. Exposed on /metrics by the
// control surface.
var (
	SendsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pocketchat_sends_total",
		Help: "Send pipeline calls by outcome (delivered, queued, rejected).",
	}, []string{"outcome"})

	OutboxDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pocketchat_outbox_depth",
		Help: "Entries currently held in the offline queue.",
	})

	OutboxDrainedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketchat_outbox_drained_total",
		Help: "Offline entries successfully replayed into the store.",
	})

	MonitorFiringsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketchat_monitor_firings_total",
		Help: "Idle-threshold notifications fired by the activity monitor.",
	})

	StoreWriteFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pocketchat_store_write_failures_total",
		Help: "Durable writes that failed and were absorbed.",
	})
)
