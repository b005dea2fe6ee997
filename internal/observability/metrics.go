package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	jobmetrics "github.com/quotebook/quotebook/internal/jobs"
)

// Metrics collects the Prometheus metrics of the application.
type Metrics struct {
	registry         *prometheus.Registry
	handler          http.Handler
	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	quotesSaved      *prometheus.CounterVec
	quoteTransitions *prometheus.CounterVec
	invoicesIssued   prometheus.Counter
	jobs             *jobmetrics.Metrics
}

// NewMetrics initialises the registry with HTTP, billing and job metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotebook_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quotebook_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	saved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotebook_quotes_saved_total",
		Help: "Quote saves, split by whether the save created the quote.",
	}, []string{"kind"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quotebook_quote_transitions_total",
		Help: "Quote status changes by target status.",
	}, []string{"status"})
	issued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quotebook_invoices_converted_total",
		Help: "Invoices issued from accepted quotes.",
	})
	registry.MustRegister(requests, duration, saved, transitions, issued)
	return &Metrics{
		registry:         registry,
		handler:          promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:    requests,
		requestDuration:  duration,
		quotesSaved:      saved,
		quoteTransitions: transitions,
		invoicesIssued:   issued,
		jobs:             jobmetrics.NewMetrics(registry),
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records metrics for every HTTP request.
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

// Jobs returns the background job collectors sharing this registry.
func (m *Metrics) Jobs() *jobmetrics.Metrics {
	if m == nil {
		return nil
	}
	return m.jobs
}

// QuoteSaved counts a quote save.
func (m *Metrics) QuoteSaved(created bool) {
	if m == nil {
		return
	}
	kind := "update"
	if created {
		kind = "create"
	}
	m.quotesSaved.WithLabelValues(kind).Inc()
}

// QuoteTransitioned counts a status change.
func (m *Metrics) QuoteTransitioned(status string) {
	if m == nil {
		return
	}
	m.quoteTransitions.WithLabelValues(status).Inc()
}

// InvoiceConverted counts an issued invoice.
func (m *Metrics) InvoiceConverted() {
	if m == nil {
		return
	}
	m.invoicesIssued.Inc()
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
