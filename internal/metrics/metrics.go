// Package metrics holds the Prometheus collectors for guideline versioning.
//
// Collectors live on a private registry rather than the global default so
// tests and multiple engines never collide. The CLI is short-lived, so
// instead of serving /metrics it can write the registry to a node_exporter
// textfile after each command.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Version slots recorded by ObserveSave.
const (
	SlotCurrent = "current"
	SlotPending = "pending"
)

// Metrics groups the versioning collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	saves         *prometheus.CounterVec
	rejections    *prometheus.CounterVec
	validations   prometheus.Counter
	cancellations prometheus.Counter
	collected     prometheus.Counter
	hunks         prometheus.Histogram
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guidectx_versions_saved_total",
			Help: "Versions saved, by the slot they were written to",
		}, []string{"slot"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guidectx_rejections_total",
			Help: "Writes rejected by the versioning engine, by error code",
		}, []string{"code"}),
		validations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guidectx_validations_total",
			Help: "Pending versions reconciled and published",
		}),
		cancellations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guidectx_cancellations_total",
			Help: "Pending versions discarded",
		}),
		collected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guidectx_empty_versions_collected_total",
			Help: "Empty versions deleted by housekeeping",
		}),
		hunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "guidectx_reconcile_hunks",
			Help:    "Diff hunks per reconciled pending version",
			Buckets: []float64{1, 2, 4, 8, 16, 32, 64},
		}),
	}

	m.Registry.MustRegister(m.saves, m.rejections, m.validations, m.cancellations, m.collected, m.hunks)
	return m
}

// ObserveSave counts a version written to slot.
func (m *Metrics) ObserveSave(slot string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(slot).Inc()
}

// ObserveRejection counts a rejected write by error code.
func (m *Metrics) ObserveRejection(code string) {
	if m == nil || code == "" {
		return
	}
	m.rejections.WithLabelValues(code).Inc()
}

// ObserveValidation counts a published pending version and its diff size.
func (m *Metrics) ObserveValidation(hunks int) {
	if m == nil {
		return
	}
	m.validations.Inc()
	m.hunks.Observe(float64(hunks))
}

// ObserveCancellation counts a discarded pending version.
func (m *Metrics) ObserveCancellation() {
	if m == nil {
		return
	}
	m.cancellations.Inc()
}

// ObserveCollected counts versions deleted by housekeeping.
func (m *Metrics) ObserveCollected(n int) {
	if m == nil || n == 0 {
		return
	}
	m.collected.Add(float64(n))
}

// WriteTextfile writes the registry in the text exposition format to path,
// atomically, for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
