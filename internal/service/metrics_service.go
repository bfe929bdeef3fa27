package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for domain counters.
const (
	OutcomeValid     = "valid"
	OutcomeInvalid   = "invalid"
	OutcomeWarning   = "warning"
	OutcomeSuccess   = "success"
	OutcomeFailure   = "failure"
	OutcomeSkipped   = "skipped"
	OutcomeMalformed = "malformed"
)

// MetricsSnapshot is a lightweight summary for the health endpoint.
type MetricsSnapshot struct {
	RequestsTotal            uint64    `json:"requestsTotal"`
	AverageRequestDurationMs float64   `json:"averageRequestDurationMs"`
	ValidationsTotal         uint64    `json:"validationsTotal"`
	ImportsTotal             uint64    `json:"importsTotal"`
	AdvisorCallsTotal        uint64    `json:"advisorCallsTotal"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generatedAt"`
}

// MetricsService encapsulates Prometheus instrumentation.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	validations     *prometheus.CounterVec
	imports         *prometheus.CounterVec
	advisorCalls    *prometheus.CounterVec
	advisorLatency  prometheus.Histogram

	requestCount         uint64
	requestDurationTotal uint64
	validationCount      uint64
	importCount          uint64
	advisorCount         uint64
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	validations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pensum_validations_total",
		Help: "Curriculum validations by stage and outcome",
	}, []string{"stage", "outcome"})

	imports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pensum_imports_total",
		Help: "Import previews and confirmations by outcome",
	}, []string{"step", "outcome"})

	advisorCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "advisor_calls_total",
		Help: "Generative advisor calls by kind and outcome",
	}, []string{"kind", "outcome"})

	advisorLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "advisor_call_duration_seconds",
		Help:    "Latency of generative advisor calls",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, validations, imports, advisorCalls, advisorLatency, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		validations:     validations,
		imports:         imports,
		advisorCalls:    advisorCalls,
		advisorLatency:  advisorLatency,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// RecordValidation counts one validation pass. stage is "schema" or
// "prerequisites".
func (m *MetricsService) RecordValidation(stage, outcome string) {
	if m == nil {
		return
	}
	m.validations.WithLabelValues(stage, outcome).Inc()
	atomic.AddUint64(&m.validationCount, 1)
}

// RecordImport counts one import step. step is "preview" or "confirm".
func (m *MetricsService) RecordImport(step, outcome string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(step, outcome).Inc()
	atomic.AddUint64(&m.importCount, 1)
}

// RecordAdvisorCall counts one advisor request and its latency.
func (m *MetricsService) RecordAdvisorCall(kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.advisorCalls.WithLabelValues(kind, outcome).Inc()
	if outcome != OutcomeSkipped {
		m.advisorLatency.Observe(duration.Seconds())
	}
	atomic.AddUint64(&m.advisorCount, 1)
}

// Snapshot returns aggregated counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	requests := atomic.LoadUint64(&m.requestCount)
	reqDuration := atomic.LoadUint64(&m.requestDurationTotal)

	var avgRequestMs float64
	if requests > 0 {
		avgRequestMs = float64(reqDuration) / float64(requests) / float64(time.Millisecond)
	}

	return MetricsSnapshot{
		RequestsTotal:            requests,
		AverageRequestDurationMs: avgRequestMs,
		ValidationsTotal:         atomic.LoadUint64(&m.validationCount),
		ImportsTotal:             atomic.LoadUint64(&m.importCount),
		AdvisorCallsTotal:        atomic.LoadUint64(&m.advisorCount),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}
