// Package metrics holds the prometheus collectors for datadeck.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/KaramelBytes/datadeck/internal/apperr"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datadeck_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datadeck_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "datadeck_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datadeck_uploads_total",
			Help: "Total number of dataset uploads by format and outcome",
		},
		[]string{"format", "code"}, // code is "ok" or an error code
	)

	UploadBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datadeck_upload_bytes",
			Help:    "Size of uploaded datasets in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB to 16MiB
		},
	)

	UploadRows = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "datadeck_upload_rows",
			Help:    "Number of data rows per accepted upload",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		},
	)

	ChartsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "datadeck_charts_total",
			Help: "Total number of chart payloads requested by kind and outcome",
		},
		[]string{"kind", "code"},
	)

	ChartDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "datadeck_chart_duration_seconds",
			Help:    "Duration of chart payload construction in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"kind"},
	)

	WorkingDatasets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "datadeck_working_datasets",
			Help: "Number of sessions holding a working dataset",
		},
	)
)

// Middleware records request counts and latency per route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		HTTPRequestsInFlight.Inc()
		defer HTTPRequestsInFlight.Dec()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		path := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			path = rc.RoutePattern()
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// RecordUpload records the outcome of an upload attempt.
func RecordUpload(format string, size int, rows int, err error) {
	if format == "" {
		format = "unknown"
	}
	UploadsTotal.WithLabelValues(format, outcome(err)).Inc()
	UploadBytes.Observe(float64(size))
	if err == nil {
		UploadRows.Observe(float64(rows))
	}
}

// RecordChart records a chart payload request.
func RecordChart(kind string, duration time.Duration, err error) {
	if kind == "" {
		kind = "unknown"
	}
	ChartsTotal.WithLabelValues(kind, outcome(err)).Inc()
	ChartDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// SetWorkingDatasets sets the live session gauge.
func SetWorkingDatasets(n int) {
	WorkingDatasets.Set(float64(n))
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperr.CodeOf(err))
}
