// Package metrics counts conversions and coercion advisories in Prometheus
// collectors fed from the event bus.
package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hanpama/serializer/internal/eventbus"
	"github.com/hanpama/serializer/internal/events"
)

type Metrics struct {
	conversions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	advisories  *prometheus.CounterVec
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		conversions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serializer",
			Name:      "conversions_total",
			Help:      "Total number of conversions by schema, direction and outcome.",
		}, []string{"schema", "direction", "outcome"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "serializer",
			Name:      "conversion_duration_seconds",
			Help:      "Time spent converting one object or sequence.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"schema", "direction"}),
		advisories: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "serializer",
			Name:      "coercion_advisories_total",
			Help:      "Total number of values accepted with a compatibility conversion.",
		}, []string{"schema", "field", "type"}),
	}
}

// Register subscribes m to b and returns a func detaching it.
func (m *Metrics) Register(b *eventbus.Bus) (unregister func()) {
	offFinish := eventbus.On(b, m.onFinish)
	offAdvisory := eventbus.On(b, m.onAdvisory)
	return func() {
		offFinish()
		offAdvisory()
	}
}

func (m *Metrics) onFinish(_ context.Context, e events.ConversionFinish) {
	outcome := "success"
	if e.Err != nil {
		outcome = "failure"
	}
	m.conversions.WithLabelValues(e.Schema, string(e.Direction), outcome).Inc()
	m.duration.WithLabelValues(e.Schema, string(e.Direction)).Observe(e.Duration.Seconds())
}

func (m *Metrics) onAdvisory(_ context.Context, e events.CoercionAdvisory) {
	m.advisories.WithLabelValues(e.Schema, e.Field, e.Kind).Inc()
}

// WriteTextfile writes every metric gathered by g to path in the text
// exposition format, for the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
