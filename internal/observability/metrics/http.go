package metrics

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	extractionsTotal       *prometheus.CounterVec
	analysesTotal          *prometheus.CounterVec
	degradedSummariesTotal *prometheus.CounterVec
	llmCallDuration        *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ia",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ia",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ia",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	extractionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ia",
			Subsystem: "pipeline",
			Name:      "extractions_total",
			Help:      "Total field extraction operations by status.",
		},
		[]string{"service", "status"},
	)
	analysesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ia",
			Subsystem: "pipeline",
			Name:      "analyses_total",
			Help:      "Total analysis generation operations by status.",
		},
		[]string{"service", "status"},
	)
	degradedSummariesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ia",
			Subsystem: "pipeline",
			Name:      "degraded_summaries_total",
			Help:      "Total persisted analyses whose summary step degraded to a placeholder.",
		},
		[]string{"service"},
	)
	llmCallDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ia",
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Provider call duration in seconds by operation.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"service", "operation"},
	)

	registry.MustRegister(
		requestTotal,
		requestDuration,
		requestInFlight,
		extractionsTotal,
		analysesTotal,
		degradedSummariesTotal,
		llmCallDuration,
	)

	return &HTTPServerMetrics{
		registry:               registry,
		requestTotal:           requestTotal,
		requestDuration:        requestDuration,
		requestInFlight:        requestInFlight,
		extractionsTotal:       extractionsTotal,
		analysesTotal:          analysesTotal,
		degradedSummariesTotal: degradedSummariesTotal,
		llmCallDuration:        llmCallDuration,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) Middleware(service string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		path := normalizePath(r.URL.Path)
		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		next.ServeHTTP(recorder, r)

		m.requestTotal.WithLabelValues(
			service,
			r.Method,
			path,
			strconv.Itoa(recorder.statusCode),
		).Inc()
		m.requestDuration.WithLabelValues(service, r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, "/v1/reports/"):
		return "/v1/reports/{report_id}"
	default:
		return path
	}
}

func (m *HTTPServerMetrics) RecordExtraction(service, status string) {
	if status == "" {
		status = "unknown"
	}
	m.extractionsTotal.WithLabelValues(service, status).Inc()
}

func (m *HTTPServerMetrics) RecordAnalysis(service, status string, degradedSummary bool) {
	if status == "" {
		status = "unknown"
	}
	m.analysesTotal.WithLabelValues(service, status).Inc()
	if degradedSummary {
		m.degradedSummariesTotal.WithLabelValues(service).Inc()
	}
}

func (m *HTTPServerMetrics) ObserveLLMCall(service, operation string, duration time.Duration) {
	if operation == "" {
		operation = "unknown"
	}
	m.llmCallDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusRecorder) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *statusRecorder) Flush() {
	flusher, ok := w.ResponseWriter.(http.Flusher)
	if ok {
		flusher.Flush()
	}
}

func (w *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not implement http.Hijacker")
	}
	return hijacker.Hijack()
}

func (w *statusRecorder) Push(target string, opts *http.PushOptions) error {
	pusher, ok := w.ResponseWriter.(http.Pusher)
	if !ok {
		return http.ErrNotSupported
	}
	return pusher.Push(target, opts)
}
