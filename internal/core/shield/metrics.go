package shield

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Block reasons, used both as metric labels and in security-event logs.
const (
	ReasonBlacklisted = "blacklisted"
	ReasonBurst       = "burst"
	ReasonSuspicion   = "suspicion"
	ReasonRateLimit   = "rate_limit"
)

// Metrics exposes the gate's outcome counters.
type Metrics struct {
	evaluated prometheus.Counter
	blocked   *prometheus.CounterVec
	delayed   prometheus.Counter
	delayTime prometheus.Counter
}

// NewMetrics registers the shield collectors with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		evaluated: factory.NewCounter(prometheus.CounterOpts{
			Name: "shield_requests_evaluated_total",
			Help: "Requests that entered the shield gate sequence",
		}),
		blocked: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shield_requests_blocked_total",
			Help: "Requests rejected by the shield, by reason",
		}, []string{"reason"}),
		delayed: factory.NewCounter(prometheus.CounterOpts{
			Name: "shield_requests_delayed_total",
			Help: "Requests slowed down by the speed limiter",
		}),
		delayTime: factory.NewCounter(prometheus.CounterOpts{
			Name: "shield_delay_seconds_total",
			Help: "Total synthetic delay injected by the speed limiter",
		}),
	}
}

func (m *Metrics) recordEvaluated() {
	if m != nil {
		m.evaluated.Inc()
	}
}

func (m *Metrics) recordBlocked(reason string) {
	if m != nil {
		m.blocked.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) recordDelayed(d time.Duration) {
	if m != nil {
		m.delayed.Inc()
		m.delayTime.Add(d.Seconds())
	}
}
