// Package metrics holds the Prometheus metrics for the conjunto module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts conjunto lifecycle operations and degraded-mode signals.
type Metrics struct {
	ConjuntosCreated prometheus.Counter
	ConjuntosUpdated prometheus.Counter
	ConjuntosDeleted prometheus.Counter
	ViviendasCreated prometheus.Counter
	EventsDropped    prometheus.Counter
	LookupFallbacks  *prometheus.CounterVec
}

// New creates and registers all conjunto metrics.
func New() *Metrics {
	return &Metrics{
		ConjuntosCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "victus_conjuntos_created_total",
			Help: "Total number of conjuntos created",
		}),
		ConjuntosUpdated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "victus_conjuntos_updated_total",
			Help: "Total number of conjuntos updated",
		}),
		ConjuntosDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "victus_conjuntos_deleted_total",
			Help: "Total number of conjuntos deleted",
		}),
		ViviendasCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "victus_viviendas_created_total",
			Help: "Total number of viviendas registered",
		}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "victus_conjunto_events_dropped_total",
			Help: "Domain events dropped because a subscriber buffer was full",
		}),
		LookupFallbacks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "victus_lookup_fallbacks_total",
			Help: "Lookup resolutions served from the static fallback",
		}, []string{"catalog"}),
	}
}

func (m *Metrics) IncrementConjuntosCreated() { m.ConjuntosCreated.Inc() }
func (m *Metrics) IncrementConjuntosUpdated() { m.ConjuntosUpdated.Inc() }
func (m *Metrics) IncrementConjuntosDeleted() { m.ConjuntosDeleted.Inc() }
func (m *Metrics) IncrementViviendasCreated() { m.ViviendasCreated.Inc() }
func (m *Metrics) IncrementEventsDropped()    { m.EventsDropped.Inc() }

// IncrementLookupFallback records a fallback-sourced resolution for the
// given catalog ("message" or "parameter").
func (m *Metrics) IncrementLookupFallback(catalog string) {
	m.LookupFallbacks.WithLabelValues(catalog).Inc()
}
