// Package metrics exposes the engine's Prometheus collectors.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lostma_audit"

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry         *prometheus.Registry
	analysisDuration *prometheus.HistogramVec
	excludedFields   *prometheus.CounterVec
	emptyFieldRatio  *prometheus.GaugeVec
	logDefects       *prometheus.GaugeVec
	enumDefects      *prometheus.GaugeVec
	syncs            *prometheus.CounterVec
}

// New creates the collectors on a dedicated registry, together with the Go and process
// collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		analysisDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Duration of one completeness analysis of an entity.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"entity", "scoped"}),
		excludedFields: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "excluded_fields_total",
			Help:      "Live columns left out of a report because the schema export does not declare them.",
		}, []string{"entity"}),
		emptyFieldRatio: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "field_empty_percentage",
			Help:      "Percentage of records with an empty field, from the last analysis.",
		}, []string{"entity", "field", "language"}),
		logDefects: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "validation_log_records",
			Help:      "Distinct records of an entity listed in the validation log.",
		}, []string{"entity"}),
		enumDefects: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "enum_defect_records",
			Help:      "Records holding a value outside the field's controlled vocabulary.",
		}, []string{"entity", "field"}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_total",
			Help:      "Warehouse re-materializations by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.analysisDuration,
		m.excludedFields,
		m.emptyFieldRatio,
		m.logDefects,
		m.enumDefects,
		m.syncs,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAnalysis(entity string, scoped bool, elapsed time.Duration) {
	if m == nil {
		return
	}
	label := "false"
	if scoped {
		label = "true"
	}
	m.analysisDuration.WithLabelValues(entity, label).Observe(elapsed.Seconds())
}

func (m *Metrics) AddExcludedFields(entity string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.excludedFields.WithLabelValues(entity).Add(float64(n))
}

func (m *Metrics) SetFieldEmpty(entity, field, language string, percentage float64) {
	if m == nil {
		return
	}
	m.emptyFieldRatio.WithLabelValues(entity, field, language).Set(percentage)
}

func (m *Metrics) SetLogDefects(entity string, records int) {
	if m == nil {
		return
	}
	m.logDefects.WithLabelValues(entity).Set(float64(records))
}

func (m *Metrics) SetEnumDefects(entity, field string, records int64) {
	if m == nil {
		return
	}
	m.enumDefects.WithLabelValues(entity, field).Set(float64(records))
}

func (m *Metrics) IncSync(success bool) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.syncs.WithLabelValues(result).Inc()
}
