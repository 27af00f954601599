package auth

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsActivitySink counts activity events in Prometheus
type MetricsActivitySink struct {
	events *prometheus.CounterVec
}

// NewMetricsActivitySink registers the counters on reg
func NewMetricsActivitySink(reg prometheus.Registerer) (*MetricsActivitySink, error) {
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "attend",
		Subsystem: "auth",
		Name:      "activity_events_total",
		Help:      "Authentication activity events by type and rejection field.",
	}, []string{"event", "field"})

	if reg != nil {
		if err := reg.Register(events); err != nil {
			return nil, err
		}
	}

	return &MetricsActivitySink{events: events}, nil
}

var _ ActivitySink = (*MetricsActivitySink)(nil)

// Record implements ActivitySink.
func (m *MetricsActivitySink) Record(_ context.Context, event ActivityEvent) error {
	m.events.WithLabelValues(string(event.EventType), event.Field).Inc()
	return nil
}

// Counter exposes the underlying vector, mostly for tests
func (m *MetricsActivitySink) Counter() *prometheus.CounterVec {
	return m.events
}
