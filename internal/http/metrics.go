package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metrics for the upload shell.
//
// Each server owns its own registry so tests can construct servers
// freely without duplicate-collector panics.
type Metrics struct {
	registry *prometheus.Registry

	JobsTotal   *prometheus.CounterVec
	JobDuration prometheus.Histogram
	UploadBytes prometheus.Histogram
}

// NewMetrics creates and registers the shell's metrics:
//   - journallm_jobs_total{outcome} - jobs by outcome (complete, error)
//   - journallm_job_duration_seconds - extraction + prompt wall time
//   - journallm_upload_bytes - accepted upload sizes
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		JobsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "journallm_jobs_total",
				Help: "Total upload jobs by outcome",
			},
			[]string{"outcome"}, // "complete" or "error"
		),

		JobDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "journallm_job_duration_seconds",
				Help:    "Wall time from upload accept to job completion",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.5min
			},
		),

		UploadBytes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "journallm_upload_bytes",
				Help:    "Size of accepted uploads in bytes",
				Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KiB to ~256MiB
			},
		),
	}
}

// RecordJob records one finished job with its outcome and duration.
func (m *Metrics) RecordJob(outcome string, seconds float64) {
	m.JobsTotal.WithLabelValues(outcome).Inc()
	m.JobDuration.Observe(seconds)
}

// RecordUpload records the size of an accepted upload.
func (m *Metrics) RecordUpload(bytes int64) {
	m.UploadBytes.Observe(float64(bytes))
}

// Handler exposes the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
