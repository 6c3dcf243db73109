package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector records detection traffic on its own Prometheus registry
type MetricsCollector struct {
	registry   *prometheus.Registry
	detections *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	confidence *prometheus.HistogramVec
	failures   *prometheus.CounterVec
}

// NewMetricsCollector creates a collector with all detection metrics registered
func NewMetricsCollector() *MetricsCollector {
	c := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isthisai_detections_total",
			Help: "Completed detections by category and verdict.",
		}, []string{"category", "verdict"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "isthisai_detection_duration_seconds",
			Help:    "Time spent producing a detection result.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"category"}),
		confidence: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "isthisai_detection_confidence",
			Help:    "Confidence of detection results.",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}, []string{"category"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "isthisai_detection_failures_total",
			Help: "Rejected or failed detection requests by category and reason.",
		}, []string{"category", "reason"}),
	}

	c.registry.MustRegister(
		c.detections,
		c.duration,
		c.confidence,
		c.failures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// RecordDetection records one completed detection
func (c *MetricsCollector) RecordDetection(category string, isAI bool, confidence int, duration time.Duration) {
	verdict := "human"
	if isAI {
		verdict = "ai"
	}
	c.detections.WithLabelValues(category, verdict).Inc()
	c.duration.WithLabelValues(category).Observe(duration.Seconds())
	c.confidence.WithLabelValues(category).Observe(float64(confidence))
}

// RecordFailure records a rejected request or a degraded result
func (c *MetricsCollector) RecordFailure(category, reason string) {
	c.failures.WithLabelValues(category, reason).Inc()
}

// Registry returns the underlying Prometheus registry
func (c *MetricsCollector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format
func (c *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
