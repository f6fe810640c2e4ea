package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is valid and records nothing.
type Metrics struct {
	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	evaluations    *prometheus.HistogramVec
	unlocks        *prometheus.CounterVec
	skippedEntries *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
	rateLimited    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		evaluations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "badge_evaluation_duration_seconds",
				Help:    "Time spent evaluating badges for one user",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"operation"},
		),
		unlocks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "badge_unlocks_total",
				Help: "Badges awarded for the first time, by tier",
			},
			[]string{"tier"},
		),
		skippedEntries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "journal_entries_malformed_total",
				Help: "Malformed journal entries seen during evaluation",
			},
			[]string{"reason"},
		),
		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "badge_cache_lookups_total",
				Help: "Badge result cache lookups",
			},
			[]string{"result"},
		),
		rateLimited: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_rate_limited_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"route"},
		),
	}
	reg.MustRegister(m.httpRequests, m.httpDuration, m.evaluations, m.unlocks, m.skippedEntries, m.cacheLookups, m.rateLimited)
	return m
}

// Handler exposes the gathered metrics.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency keyed by the chi route pattern, which keeps
// path parameters out of the label set.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if pattern := rc.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(ww.status)).Inc()
		m.httpDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// ObserveEvaluation records how long one evaluation took.
func (m *Metrics) ObserveEvaluation(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(operation).Observe(d.Seconds())
}

// BadgeUnlocked counts a first-time award.
func (m *Metrics) BadgeUnlocked(tier string) {
	if m == nil {
		return
	}
	m.unlocks.WithLabelValues(tier).Inc()
}

// EntriesSkipped counts malformed entries by reason.
func (m *Metrics) EntriesSkipped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.skippedEntries.WithLabelValues(reason).Add(float64(n))
}

// CacheLookup counts a cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// RateLimited counts a rejected request.
func (m *Metrics) RateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
