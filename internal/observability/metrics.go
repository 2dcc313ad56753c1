// README: Prometheus metrics for dispatch cycles and HTTP traffic.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	DispatchCycles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gocab", Name: "dispatch_cycles_total",
		Help: "Dispatch cycles run (one offer attempt per cycle)",
	})
	OffersSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gocab", Name: "offers_sent_total",
		Help: "Ride offers sent to drivers",
	})
	NoCandidateTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gocab", Name: "dispatch_no_candidate_total",
		Help: "Dispatch cycles that found no eligible driver",
	})
	AcceptConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gocab", Name: "accept_conflicts_total",
		Help: "Accept attempts that lost the race or hit a resolved ride",
	})
	DeclinesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gocab", Name: "declines_total",
		Help: "Driver declines recorded",
	})
	NotifyFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gocab", Name: "notify_failures_total",
		Help: "Best-effort notification publishes that failed",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "gocab", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gocab",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
