// Package prometheus exposes the service's operational metrics on a private
// registry, keeping scrapes free of whatever other libraries register
// globally.
package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vitaquote"

var defaultDurationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Metrics holds every collector the service registers.  One instance is
// created at startup and shared by the HTTP layer and the application
// services.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPActiveRequests  prometheus.Gauge

	QuotesComputedTotal    prometheus.Counter
	QuoteGroupsPricedTotal prometheus.Counter
	IneligibleGroupsTotal  prometheus.Counter
	QuoteComputeDuration   prometheus.Histogram

	CatalogRowsLoaded    prometheus.Gauge
	CatalogImportsTotal  *prometheus.CounterVec
	CatalogCacheHits     prometheus.Counter
	CatalogCacheMisses   prometheus.Counter

	SessionsActive      prometheus.Gauge
	LoginAttemptsTotal  *prometheus.CounterVec
	EventPublishErrors  prometheus.Counter
	PDFExportsTotal     *prometheus.CounterVec
}

// New builds a Metrics set backed by a fresh registry.  Process and Go
// runtime collectors are included so the standard dashboards work out of the
// box.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))
	reg.MustRegister(prometheus.NewGoCollector())

	m := &Metrics{registry: reg}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests",
	}, []string{"method", "path", "status_code"})

	m.HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   defaultDurationBuckets,
	}, []string{"method", "path"})

	m.HTTPActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "http_active_requests",
		Help:      "In-flight HTTP requests",
	})

	m.QuotesComputedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_computed_total",
		Help:      "Quotation computations performed",
	})

	m.QuoteGroupsPricedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_groups_priced_total",
		Help:      "Plan groups that produced a quote",
	})

	m.IneligibleGroupsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quote_groups_ineligible_total",
		Help:      "Plan groups dropped because an age was uncovered",
	})

	m.QuoteComputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "quote_compute_duration_seconds",
		Help:      "End-to-end quotation duration",
		Buckets:   defaultDurationBuckets,
	})

	m.CatalogRowsLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_rows_loaded",
		Help:      "Rows in the active price catalog",
	})

	m.CatalogImportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_imports_total",
		Help:      "Catalog import attempts",
	}, []string{"source", "status"})

	m.CatalogCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_hits_total",
		Help:      "Catalog reads served from Redis",
	})

	m.CatalogCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "catalog_cache_misses_total",
		Help:      "Catalog reads that fell through to PostgreSQL",
	})

	m.SessionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Currently open login sessions",
	})

	m.LoginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Login attempts",
	}, []string{"result"})

	m.EventPublishErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "event_publish_errors_total",
		Help:      "Failed quote event publishes",
	})

	m.PDFExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "pdf_exports_total",
		Help:      "Quote PDF exports",
	}, []string{"status"})

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPActiveRequests,
		m.QuotesComputedTotal,
		m.QuoteGroupsPricedTotal,
		m.IneligibleGroupsTotal,
		m.QuoteComputeDuration,
		m.CatalogRowsLoaded,
		m.CatalogImportsTotal,
		m.CatalogCacheHits,
		m.CatalogCacheMisses,
		m.SessionsActive,
		m.LoginAttemptsTotal,
		m.EventPublishErrors,
		m.PDFExportsTotal,
	)

	return m
}

// Handler returns the scrape endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one completed request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}

// ObserveQuoteComputation records one quotation run.
func (m *Metrics) ObserveQuoteComputation(priced, ineligible int, elapsed time.Duration) {
	m.QuotesComputedTotal.Inc()
	m.QuoteGroupsPricedTotal.Add(float64(priced))
	m.IneligibleGroupsTotal.Add(float64(ineligible))
	m.QuoteComputeDuration.Observe(elapsed.Seconds())
}
