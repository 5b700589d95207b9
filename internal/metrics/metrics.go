// Package metrics exposes Prometheus metrics for check runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// File outcome labels.
const (
	FileChecked = "checked"
	FileCached  = "cached"
	FileFailed  = "failed"
)

// Recorder holds the Prometheus metrics of declint. A nil *Recorder
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	RunsTotal       prometheus.Counter
	RunDuration     prometheus.Histogram
	FilesTotal      *prometheus.CounterVec
	FileDuration    prometheus.Histogram
	ViolationsTotal *prometheus.CounterVec
	SuppressedTotal prometheus.Counter
	CacheEntries    prometheus.Gauge
}

// NewRecorder creates the metrics and registers them on registry. A nil
// registry gets a fresh one.
func NewRecorder(registry *prometheus.Registry) *Recorder {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	r := &Recorder{
		registry: registry,
		RunsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "declint_runs_total",
				Help: "Total number of check runs",
			},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "declint_run_duration_seconds",
				Help:    "Check run duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		FilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "declint_files_total",
				Help: "Total number of files processed, by outcome",
			},
			[]string{"outcome"},
		),
		FileDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "declint_file_duration_seconds",
				Help:    "Time to parse and check one file in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		ViolationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "declint_violations_total",
				Help: "Total number of reported violations",
			},
			[]string{"rule", "severity"},
		),
		SuppressedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "declint_suppressed_total",
				Help: "Total number of violations suppressed by the baseline",
			},
		),
		CacheEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "declint_cache_entries",
				Help: "Number of file results held in the cache",
			},
		),
	}

	registry.MustRegister(
		r.RunsTotal,
		r.RunDuration,
		r.FilesTotal,
		r.FileDuration,
		r.ViolationsTotal,
		r.SuppressedTotal,
		r.CacheEntries,
	)

	return r
}

// ObserveRun records a completed run.
func (r *Recorder) ObserveRun(d time.Duration) {
	if r == nil {
		return
	}
	r.RunsTotal.Inc()
	r.RunDuration.Observe(d.Seconds())
}

// ObserveFile records one processed file. Cached files carry no duration.
func (r *Recorder) ObserveFile(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.FilesTotal.WithLabelValues(outcome).Inc()
	if outcome == FileChecked {
		r.FileDuration.Observe(d.Seconds())
	}
}

// ObserveViolation counts one reported violation.
func (r *Recorder) ObserveViolation(ruleID, severity string) {
	if r == nil {
		return
	}
	r.ViolationsTotal.WithLabelValues(ruleID, severity).Inc()
}

// ObserveSuppressed counts violations hidden by the baseline.
func (r *Recorder) ObserveSuppressed(n int) {
	if r == nil || n <= 0 {
		return
	}
	r.SuppressedTotal.Add(float64(n))
}

// SetCacheEntries reports the current cache size.
func (r *Recorder) SetCacheEntries(n int) {
	if r == nil {
		return
	}
	r.CacheEntries.Set(float64(n))
}

// Registry returns the registry the metrics live on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// RegisterEndpoint mounts the handler on /metrics.
func (r *Recorder) RegisterEndpoint(mux *http.ServeMux) {
	mux.Handle("/metrics", r.Handler())
}
