// Package metrics records pipeline runs as Prometheus metrics. A CLI run is
// short-lived, so metrics are written to a textfile for the node exporter
// instead of being served.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage names.
const (
	StageOptions  = "options"
	StageRequires = "requirements"
	StageResolve  = "resolve"
	StageBuild    = "build"
	StagePackage  = "package"
	StagePublish  = "publish"
)

// Metrics holds the collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	packagedFiles prometheus.Counter
}

// New returns Metrics registered on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipe_pipeline_runs_total",
			Help: "Pipeline runs by result.",
		}, []string{"result"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recipe_stage_duration_seconds",
			Help:    "Duration of pipeline stages.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"stage"}),
		packagedFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "recipe_packaged_files_total",
			Help: "Files copied into install roots.",
		}),
	}
	m.registry.MustRegister(m.runs, m.stageDuration, m.packagedFiles)
	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Run counts a finished pipeline run; result is "success", "cached" or an
// error kind.
func (m *Metrics) Run(result string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
}

// Stage starts timing stage and returns the function that stops it.
func (m *Metrics) Stage(stage string) func() {
	if m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	}
}

// Packaged counts n packaged files.
func (m *Metrics) Packaged(n int) {
	if m == nil {
		return
	}
	m.packagedFiles.Add(float64(n))
}

// WriteTextfile writes all metrics to path in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
