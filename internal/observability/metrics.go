// Package observability exposes Prometheus metrics for HTTP traffic and payroll runs.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the registry and collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	aggregations    *prometheus.CounterVec
	fuelRows        *prometheus.CounterVec
	loadMoves       prometheus.Counter
	weekLocks       *prometheus.CounterVec
	paystubs        *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "haulbook_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "haulbook_http_request_duration_seconds",
		Help:    "HTTP request duration by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	aggregations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "haulbook_payroll_aggregations_total",
		Help: "Per-employee payroll aggregation results.",
	}, []string{"outcome"})
	fuelRows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "haulbook_payroll_fuel_rows_total",
		Help: "Fuel transactions handled by payroll import.",
	}, []string{"outcome"})
	loadMoves := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "haulbook_payroll_load_moves_total",
		Help: "Loads moved between payroll weeks.",
	})
	weekLocks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "haulbook_payroll_week_lock_changes_total",
		Help: "Week lock and unlock requests.",
	}, []string{"action"})
	paystubs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "haulbook_paystubs_generated_total",
		Help: "Paystub snapshots written.",
	}, []string{"result"})
	registry.MustRegister(
		requests, duration, aggregations, fuelRows, loadMoves, weekLocks, paystubs,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		aggregations:    aggregations,
		fuelRows:        fuelRows,
		loadMoves:       loadMoves,
		weekLocks:       weekLocks,
		paystubs:        paystubs,
	}
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) ObserveAggregation(outcome string) {
	if m == nil {
		return
	}
	m.aggregations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveFuelRows(outcome string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.fuelRows.WithLabelValues(outcome).Add(float64(n))
}

func (m *Metrics) ObserveLoadMove() {
	if m == nil {
		return
	}
	m.loadMoves.Inc()
}

func (m *Metrics) ObserveWeekLock(locked bool) {
	if m == nil {
		return
	}
	action := "unlock"
	if locked {
		action = "lock"
	}
	m.weekLocks.WithLabelValues(action).Inc()
}

func (m *Metrics) ObservePaystub(result string) {
	if m == nil {
		return
	}
	m.paystubs.WithLabelValues(result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
