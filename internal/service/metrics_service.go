package service

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface and the generation pipeline.
type MetricsService struct {
	registry *prometheus.Registry
	handler  http.Handler

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	generationTotal    *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	generationConflict *prometheus.HistogramVec
}

// NewMetricsService registers the service's Prometheus collectors.
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

	generationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_generation_runs_total",
		Help: "Total schedule generation runs",
	}, []string{"level", "outcome"})

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_generation_duration_seconds",
		Help:    "Duration of schedule generation runs in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{"level"})

	generationConflict := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "schedule_generation_residual_conflicts",
		Help:    "Residual conflicts remaining after a generation run",
		Buckets: []float64{0, 1, 2, 5, 10, 25},
	}, []string{"level"})

	registry.MustRegister(requestDuration, requestTotal, generationTotal, generationDuration, generationConflict)

	return &MetricsService{
		registry:           registry,
		handler:            promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:    requestDuration,
		requestTotal:       requestTotal,
		generationTotal:    generationTotal,
		generationDuration: generationDuration,
		generationConflict: generationConflict,
	}
}

// Handler exposes the /metrics scrape endpoint.
func (m *MetricsService) Handler() http.Handler {
	return m.handler
}

// ObserveHTTPRequest records one handled request.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	statusLabel := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, statusLabel).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, statusLabel).Inc()
}

// ObserveGeneration records the outcome of one generation run.
func (m *MetricsService) ObserveGeneration(level int, duration time.Duration, conflicts int, failed bool) {
	levelLabel := fmt.Sprintf("%d", level)
	outcome := "success"
	if failed {
		outcome = "failure"
	}
	m.generationTotal.WithLabelValues(levelLabel, outcome).Inc()
	m.generationDuration.WithLabelValues(levelLabel).Observe(duration.Seconds())
	if !failed {
		m.generationConflict.WithLabelValues(levelLabel).Observe(float64(conflicts))
	}
}
