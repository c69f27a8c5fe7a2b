// Package metrics defines the prometheus collectors shared by the core
// and the shells. A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "promptforge"

// Metrics groups every collector.
type Metrics struct {
	TemplateOps     *prometheus.CounterVec
	PersistFailures prometheus.Counter
	LoadFailures    prometheus.Counter
	Renders         *prometheus.CounterVec
	Exports         *prometheus.CounterVec
	FieldChanges    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		TemplateOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_operations_total",
			Help:      "Template store operations by operation and result.",
		}, []string{"op", "result"}),
		PersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_persist_failures_total",
			Help:      "Failed writes of the template collection to its slot.",
		}),
		LoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_load_failures_total",
			Help:      "Unreadable or malformed template collections discarded at startup.",
		}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "renders_total",
			Help:      "Prompt renders by format.",
		}, []string{"format"}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Copy and download actions by action, format and result.",
		}, []string{"action", "format", "result"}),
		FieldChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "field_changes_total",
			Help:      "Form edits by field.",
		}, []string{"field"}),
	}
	if reg != nil {
		reg.MustRegister(m.TemplateOps, m.PersistFailures, m.LoadFailures, m.Renders, m.Exports, m.FieldChanges)
	}
	return m
}

// TemplateOp counts a template store operation.
func (m *Metrics) TemplateOp(op string, err error) {
	if m == nil {
		return
	}
	m.TemplateOps.WithLabelValues(op, result(err)).Inc()
}

// PersistFailed counts a failed slot write.
func (m *Metrics) PersistFailed() {
	if m == nil {
		return
	}
	m.PersistFailures.Inc()
}

// LoadFailed counts a discarded collection.
func (m *Metrics) LoadFailed() {
	if m == nil {
		return
	}
	m.LoadFailures.Inc()
}

// Rendered counts a render.
func (m *Metrics) Rendered(format string) {
	if m == nil {
		return
	}
	m.Renders.WithLabelValues(format).Inc()
}

// Exported counts a copy or download.
func (m *Metrics) Exported(action, format string, err error) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(action, format, result(err)).Inc()
}

// FieldChanged counts a form edit.
func (m *Metrics) FieldChanged(field string) {
	if m == nil {
		return
	}
	m.FieldChanges.WithLabelValues(field).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
