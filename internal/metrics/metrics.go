package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors shared by the server and the worker.
type Metrics struct {
	ReportsGenerated  *prometheus.CounterVec // by source: api, worker, cli
	ReportFailures    *prometheus.CounterVec // by stage: load, lock, upload, record
	GenerateDuration  prometheus.Histogram   // seconds per Engine.Generate
	SnapshotObjects   prometheus.Histogram   // objects per generated snapshot
	ContainmentCycles prometheus.Counter
	JobsPublished     prometheus.Counter
}

// New registers the collectors with reg. Tests pass a fresh registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReportsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "migrascope_reports_generated_total",
			Help: "Reports generated, by source",
		}, []string{"source"}),
		ReportFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "migrascope_report_failures_total",
			Help: "Failed report generations, by stage",
		}, []string{"stage"}),
		GenerateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "migrascope_generate_duration_seconds",
			Help:    "Time spent generating one report",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}),
		SnapshotObjects: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "migrascope_snapshot_objects",
			Help:    "Objects per assessed snapshot",
			Buckets: prometheus.ExponentialBuckets(10, 4, 8),
		}),
		ContainmentCycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "migrascope_containment_cycles_total",
			Help: "Containment cycles found in assessed snapshots",
		}),
		JobsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "migrascope_report_jobs_published_total",
			Help: "Report jobs enqueued through the API",
		}),
	}

	reg.MustRegister(
		m.ReportsGenerated,
		m.ReportFailures,
		m.GenerateDuration,
		m.SnapshotObjects,
		m.ContainmentCycles,
		m.JobsPublished,
	)
	return m
}

// ObserveGeneration records one successful generation.
func (m *Metrics) ObserveGeneration(source string, objects, cycles int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ReportsGenerated.WithLabelValues(source).Inc()
	m.GenerateDuration.Observe(elapsed.Seconds())
	m.SnapshotObjects.Observe(float64(objects))
	m.ContainmentCycles.Add(float64(cycles))
}

func (m *Metrics) Failure(stage string) {
	if m == nil {
		return
	}
	m.ReportFailures.WithLabelValues(stage).Inc()
}

func (m *Metrics) Published() {
	if m == nil {
		return
	}
	m.JobsPublished.Inc()
}
