package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/alarm-chat/internal/domain/chat"
	"github.com/oshokin/alarm-chat/internal/flow"
	"github.com/oshokin/alarm-chat/internal/transport"
)

const namespace = "alarm_chat"

// Collector records engine activity. It implements flow.Observer.
type Collector struct {
	registry *prometheus.Registry

	turns           *prometheus.CounterVec
	lookups         *prometheus.CounterVec
	lookupDuration  prometheus.Histogram
	transportErrors *prometheus.CounterVec
}

// New creates a collector with its own registry.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		turns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "turns_total",
				Help:      "Conversation turns by step and outcome.",
			},
			[]string{"step", "outcome"},
		),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "lookups_total",
				Help:      "Finished alarm lookups by result.",
			},
			[]string{"result"},
		),
		lookupDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "lookup_duration_seconds",
				Help:      "Duration of alarm lookups.",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
		),
		transportErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transport_errors_total",
				Help:      "Failed chat endpoint requests by kind.",
			},
			[]string{"kind"},
		),
	}

	c.registry.MustRegister(c.turns, c.lookups, c.lookupDuration, c.transportErrors)

	return c
}

// TrackSessions exports the number of live sessions reported by count.
func (c *Collector) TrackSessions(count func() int) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Live widget sessions.",
		},
		func() float64 { return float64(count()) },
	))
}

// TurnHandled implements flow.Observer.
func (c *Collector) TurnHandled(step chat.Step, outcome flow.Outcome) {
	c.turns.WithLabelValues(step.String(), string(outcome)).Inc()
}

// LookupFinished implements flow.Observer.
func (c *Collector) LookupFinished(result flow.LookupResult, elapsed time.Duration) {
	c.lookups.WithLabelValues(string(result)).Inc()
	c.lookupDuration.Observe(elapsed.Seconds())
}

// TransportFailed implements flow.Observer.
func (c *Collector) TransportFailed(kind transport.Kind) {
	c.transportErrors.WithLabelValues(kind.String()).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
