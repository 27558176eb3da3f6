package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callerid",
			Name:      "lookups_total",
			Help:      "Total phone lookups by outcome and resolving source.",
		},
		[]string{"outcome", "source"}, // outcome: "found", "not_found", "error"
	)

	resolverStageDurationHist = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "callerid",
			Name:      "resolver_stage_duration_seconds",
			Help:      "Duration of each resolver stage.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	upstreamPagesScannedCounter = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "callerid",
			Name:      "upstream_pages_scanned_total",
			Help:      "Upstream pages fetched during scans.",
		},
		[]string{"stage"},
	)

	cacheSizeGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "callerid",
			Name:      "phone_cache_entries",
			Help:      "Entries currently held in the local phone cache.",
		},
	)
)
