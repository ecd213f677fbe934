package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	registry *prometheus.Registry

	ProductsTotal       *prometheus.CounterVec
	SearchRequestsTotal *prometheus.CounterVec
	DownloadedBytes     prometheus.Counter
	DownloadDuration    prometheus.Histogram
	SyncRunsTotal       *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// New registers the application metrics on a fresh registry, together with
// the Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ProductsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "imagesync_products_processed_total",
			Help: "The total number of catalog products processed, by outcome.",
		}, []string{"status"}), // SUCCESS, SKIPPED, FAILED, ERROR
		SearchRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "imagesync_search_requests_total",
			Help: "The total number of image search lookups, by result.",
		}, []string{"result"}), // found, not_found, error
		DownloadedBytes: factory.NewCounter(prometheus.CounterOpts{
			Name: "imagesync_downloaded_bytes_total",
			Help: "Total number of image bytes written to disk.",
		}),
		DownloadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "imagesync_download_duration_seconds",
			Help:    "Duration of image downloads.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SyncRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "imagesync_runs_total",
			Help: "Total number of sync runs, by result.",
		}, []string{"result"}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		}, []string{"method", "path", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) IncProduct(status string) {
	m.ProductsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) IncSearch(result string) {
	m.SearchRequestsTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveDownload(seconds float64, bytes int64) {
	m.DownloadDuration.Observe(seconds)
	if bytes > 0 {
		m.DownloadedBytes.Add(float64(bytes))
	}
}

func (m *Metrics) ObserveHTTP(method, path string, status int, seconds float64) {
	code := strconv.Itoa(status)
	m.HTTPRequestDuration.WithLabelValues(method, path, code).Observe(seconds)
	m.HTTPRequestsTotal.WithLabelValues(method, path, code).Inc()
}
