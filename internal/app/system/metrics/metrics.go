// Package metrics provides Prometheus metrics for Missio.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes of a result submission.
const (
	ResultOK      = "ok"
	ResultPartial = "partial"
	ResultFailed  = "failed"
)

var (
	// PendingApprovals is the last pending-profile count seen by the poller.
	PendingApprovals = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "missio",
			Subsystem: "users",
			Name:      "pending_approvals",
			Help:      "Number of profiles awaiting approval",
		},
	)

	// PendingPollErrors counts poller refreshes that failed and were skipped.
	PendingPollErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "missio",
			Subsystem: "users",
			Name:      "pending_poll_errors_total",
			Help:      "Total number of failed pending-approval refreshes",
		},
	)

	// SignInsTotal tracks sign-in attempts by outcome.
	SignInsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "missio",
			Subsystem: "auth",
			Name:      "sign_ins_total",
			Help:      "Total number of sign-in attempts by outcome",
		},
		[]string{"outcome"},
	)

	// EventsCreatedTotal tracks planned events by congregation.
	EventsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "missio",
			Subsystem: "events",
			Name:      "created_total",
			Help:      "Total number of events planned",
		},
		[]string{"congregation"},
	)

	// ResultsAttachedTotal tracks result submissions by outcome, one of the
	// Result* constants.
	ResultsAttachedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "missio",
			Subsystem: "events",
			Name:      "results_attached_total",
			Help:      "Total number of event results submitted by outcome",
		},
		[]string{"outcome"},
	)

	// DecisionsRecordedTotal sums decisions reported in results.
	DecisionsRecordedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "missio",
			Subsystem: "events",
			Name:      "decisions_recorded_total",
			Help:      "Total number of decisions reported in event results",
		},
	)

	// HTTPRequestDuration tracks handler latency by route pattern.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "missio",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route", "status"},
	)
)

// RecordSignIn records a sign-in attempt.
func RecordSignIn(outcome string) {
	SignInsTotal.WithLabelValues(outcome).Inc()
}

// RecordEventCreated records a newly planned event.
func RecordEventCreated(congregation string) {
	if congregation == "" {
		congregation = "unspecified"
	}
	EventsCreatedTotal.WithLabelValues(congregation).Inc()
}

// RecordResult records a result submission and, when it was stored, its decisions.
func RecordResult(outcome string, decisions int) {
	ResultsAttachedTotal.WithLabelValues(outcome).Inc()
	if outcome != ResultFailed && decisions > 0 {
		DecisionsRecordedTotal.Add(float64(decisions))
	}
}

// SetPending records the current pending-approval count.
func SetPending(n int64) {
	PendingApprovals.Set(float64(n))
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware observes request duration labelled by the matched chi route
// pattern, so IDs in paths do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
