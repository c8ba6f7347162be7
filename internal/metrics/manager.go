// Package metrics holds the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every collector. It satisfies the app recorder interface.
type Manager struct {
	// counters
	CounterRequests      *prometheus.CounterVec
	CounterImports       *prometheus.CounterVec
	CounterScopeApplied  *prometheus.CounterVec
	CounterProposals     *prometheus.CounterVec
	CounterLogWrites     prometheus.Counter
	CounterRepetitions   prometheus.Counter
	CounterRequestPanics prometheus.Counter
	CounterBackups       *prometheus.CounterVec

	// gauges
	GaugeRequests prometheus.Gauge

	// histograms
	HistRequestDuration *prometheus.HistogramVec
	HistImportDuration  prometheus.Histogram
}

// NewTestManager returns a manager on a private registry.
func NewTestManager() *Manager {
	return NewManager("lifter", "test", prometheus.NewRegistry())
}

// NewTestManagerAndRegistry is NewTestManager that also returns the registry.
func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("lifter", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	counterRequests := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "requests_total",
		Help:      "The total number of incoming requests",
	}, []string{"method", "status"})
	counterImports := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "plan_imports_total",
		Help:      "Plan imports by outcome",
	}, []string{"outcome"})
	counterScopeApplied := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "scope_applications_total",
		Help:      "Pending updates applied, by scope and update kind",
	}, []string{"scope", "kind"})
	counterProposals := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "pending_proposals_total",
		Help:      "Pending updates proposed, by kind",
	}, []string{"kind"})
	counterLogWrites := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "log_writes_total",
		Help:      "The total number of set log writes",
	})
	counterRepetitions := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "repetitions_started_total",
		Help:      "The total number of repetitions started",
	})
	counterRequestPanics := factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "handle_request_panic_total",
		Help:      "The total number of serve request panics",
	})
	counterBackups := factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "backups_total",
		Help:      "Collection backups by outcome",
	}, []string{"outcome"})

	gaugeRequests := factory.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "current_requests",
		Help:      "Current number of requests served",
	})

	histReqDuration := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 60},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		},
		[]string{"route"},
	)
	histImportDuration := factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120},
			Name:      "plan_import_duration_seconds",
			Help:      "Duration of a single plan parse in seconds",
		},
	)

	return &Manager{
		CounterRequests:      counterRequests,
		CounterImports:       counterImports,
		CounterScopeApplied:  counterScopeApplied,
		CounterProposals:     counterProposals,
		CounterLogWrites:     counterLogWrites,
		CounterRepetitions:   counterRepetitions,
		CounterRequestPanics: counterRequestPanics,
		CounterBackups:       counterBackups,
		GaugeRequests:        gaugeRequests,
		HistRequestDuration:  histReqDuration,
		HistImportDuration:   histImportDuration,
	}
}

// ImportFinished records one parse attempt.
func (m *Manager) ImportFinished(ok bool, seconds float64) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.CounterImports.WithLabelValues(outcome).Inc()
	m.HistImportDuration.Observe(seconds)
}

// ScopeApplied records an applied pending update.
func (m *Manager) ScopeApplied(scope, kind string) {
	m.CounterScopeApplied.WithLabelValues(scope, kind).Inc()
}

// Proposed records a new pending update.
func (m *Manager) Proposed(kind string) {
	m.CounterProposals.WithLabelValues(kind).Inc()
}

// LogWritten records a set log write.
func (m *Manager) LogWritten() {
	m.CounterLogWrites.Inc()
}

// RepetitionStarted records a new repetition.
func (m *Manager) RepetitionStarted() {
	m.CounterRepetitions.Inc()
}

// BackupFinished records one backup run.
func (m *Manager) BackupFinished(ok bool) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	m.CounterBackups.WithLabelValues(outcome).Inc()
}
