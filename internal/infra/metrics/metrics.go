// Package metrics exposes Prometheus collectors for the timesheet engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Collectors ─────────────────────────────────────────────────────────────

var (
	// ClockIns counts successful clock-ins by job site name.
	ClockIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetracker_clock_ins_total",
		Help: "Successful clock-ins by job site.",
	}, []string{"site"})

	// ClockOuts counts successful clock-outs.
	ClockOuts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "timetracker_clock_outs_total",
		Help: "Successful clock-outs.",
	})

	// Rejections counts failed clock-in attempts by cause.
	Rejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetracker_clock_in_rejections_total",
		Help: "Rejected clock-in attempts by cause.",
	}, []string{"cause"})

	// ActiveEntries tracks currently open time entries.
	ActiveEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "timetracker_active_entries",
		Help: "Time entries currently clocked in.",
	})

	// LocationFetchSeconds observes device position fetch latency.
	LocationFetchSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetracker_location_fetch_seconds",
		Help:    "Latency of device position fetches.",
		Buckets: prometheus.DefBuckets,
	})

	// LocationErrors counts position fetch failures by kind.
	LocationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "timetracker_location_errors_total",
		Help: "Device position fetch failures by kind.",
	}, []string{"kind"})
)

// Rejection causes.
const (
	CauseOutOfRange       = "out_of_range"
	CauseAlreadyClockedIn = "already_clocked_in"
	CauseSiteNotFound     = "site_not_found"
	CauseLocation         = "location"
)
