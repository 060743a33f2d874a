package draft

import "github.com/prometheus/client_golang/prometheus"

// Event labels of the draft_events_total counter.
const (
	EventScheduled = "scheduled"
	EventCoalesced = "coalesced"
	EventCancelled = "cancelled"
	EventWritten   = "written"
	EventFailed    = "failed"
	EventDiscarded = "discarded"
)

// Metrics counts draft manager activity. A nil *Metrics records nothing.
type Metrics struct {
	Events *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when reg is
// non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "formkit",
			Subsystem: "draft",
			Name:      "events_total",
			Help:      "Draft manager events by kind.",
		}, []string{"event"}),
	}
	if reg != nil {
		reg.MustRegister(m.Events)
	}
	return m
}

func (m *Metrics) inc(event string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(event).Inc()
}
