package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all application metrics
type Metrics struct {
	// Import / export
	ImportsTotal    *prometheus.CounterVec
	ImportedRecords prometheus.Counter
	ExportsTotal    *prometheus.CounterVec

	// Key-value store
	StoreOperations *prometheus.CounterVec
	StoreLatency    *prometheus.HistogramVec

	// Entry form
	DraftAutosaves prometheus.Counter
	Submissions    *prometheus.CounterVec

	// Workspaces currently held in memory
	OpenWorkspaces prometheus.Gauge
}

// New creates the application metrics without registering them.
func New(namespace string) *Metrics {
	return &Metrics{
		ImportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Total number of spreadsheet imports",
		}, []string{"status"}),
		ImportedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imported_records_total",
			Help:      "Total number of records produced by imports",
		}),
		ExportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Total number of exports",
		}, []string{"format", "status"}),

		StoreOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_operations_total",
			Help:      "Total number of key-value store operations",
		}, []string{"operation", "status"}),
		StoreLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "store_operation_duration_seconds",
			Help:      "Duration of key-value store operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),

		DraftAutosaves: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draft_autosaves_total",
			Help:      "Total number of entry-form drafts saved after idle",
		}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entry_submissions_total",
			Help:      "Total number of entry-form submissions",
		}, []string{"status"}),

		OpenWorkspaces: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_workspaces",
			Help:      "Current number of workspaces held in memory",
		}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.ImportsTotal,
		m.ImportedRecords,
		m.ExportsTotal,
		m.StoreOperations,
		m.StoreLatency,
		m.DraftAutosaves,
		m.Submissions,
		m.OpenWorkspaces,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
