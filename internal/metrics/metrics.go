package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	builds           *prometheus.CounterVec
	componentMisses  *prometheus.CounterVec
	assemblyDuration *prometheus.HistogramVec
	catalogEvents    *prometheus.CounterVec
}

// New registers Rigger's collectors with reg. Passing nil uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rigger_builds_total",
			Help: "Build recommendations by purpose and outcome.",
		}, []string{"purpose", "outcome"}),
		componentMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rigger_component_misses_total",
			Help: "Assemblies aborted because a required category had no candidate.",
		}, []string{"category"}),
		assemblyDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rigger_assembly_duration_seconds",
			Help:    "Time spent assembling one build.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"purpose"}),
		catalogEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rigger_catalog_events_total",
			Help: "Catalog update events received from ingestion.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.builds, m.componentMisses, m.assemblyDuration, m.catalogEvents)
	return m
}

// The methods below accept a nil receiver so callers can run without metrics.

func (m *Metrics) ObserveBuild(purpose, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(purpose, outcome).Inc()
	m.assemblyDuration.WithLabelValues(purpose).Observe(elapsed.Seconds())
}

func (m *Metrics) ComponentMiss(category string) {
	if m == nil {
		return
	}
	m.componentMisses.WithLabelValues(category).Inc()
}

func (m *Metrics) CatalogEvent(kind string) {
	if m == nil {
		return
	}
	if kind == "" {
		kind = "unknown"
	}
	m.catalogEvents.WithLabelValues(kind).Inc()
}
