package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LatestHeadBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "relay",
		Subsystem: "scanner",
		Name:      "latest_head_block",
		Help:      "Latest block number seen on the source chain.",
	}, []string{"chain_id", "address"})

	LatestScannedBlock = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "relay",
		Subsystem: "scanner",
		Name:      "latest_scanned_block",
		Help:      "Committed scan cursor position.",
	}, []string{"chain_id", "address"})

	SyncedScanner = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "relay",
		Subsystem: "scanner",
		Name:      "synced",
		Help:      "Shows if the scan cursor is close enough to the chain head.",
	}, []string{"chain_id", "address"})

	MalformedLogs = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relay",
		Subsystem: "scanner",
		Name:      "malformed_logs_total",
		Help:      "Number of event logs skipped due to decoding errors.",
	})

	RelayAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relay",
		Subsystem: "client",
		Name:      "attempts_total",
		Help:      "Delivery attempts by result.",
	}, []string{"status"})

	RelayedEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relay",
		Subsystem: "client",
		Name:      "delivered_events_total",
		Help:      "Number of events acknowledged by the delivery endpoint.",
	})

	PermanentFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relay",
		Subsystem: "client",
		Name:      "permanent_failures_total",
		Help:      "Number of events dropped after exhausted or rejected delivery.",
	})

	DuplicateEvents = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "relay",
		Subsystem: "scanner",
		Name:      "duplicate_events_total",
		Help:      "Number of already processed events filtered out before relay.",
	})
)
