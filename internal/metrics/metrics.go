// Package metrics instruments backend requests and live synchronizers with
// Prometheus collectors.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"trailarr/internal/livesync"
)

const namespace = "trailarr"

var states = []livesync.State{
	livesync.StateIdle,
	livesync.StateConnecting,
	livesync.StateLive,
	livesync.StatePolling,
	livesync.StateClosed,
}

// Metrics holds the collectors. It implements livesync.Observer and
// backend.RequestObserver.
type Metrics struct {
	PushMessages    *prometheus.CounterVec
	DroppedPayloads *prometheus.CounterVec
	Polls           *prometheus.CounterVec
	Dials           *prometheus.CounterVec
	SyncState       *prometheus.GaugeVec
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// New creates and registers the collectors with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		PushMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "livesync",
			Name:      "push_messages_total",
			Help:      "Push channel messages received.",
		}, []string{"topic"}),
		DroppedPayloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "livesync",
			Name:      "dropped_payloads_total",
			Help:      "Push messages discarded because they could not be decoded.",
		}, []string{"topic"}),
		Polls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "livesync",
			Name:      "polls_total",
			Help:      "Fallback poll requests by result.",
		}, []string{"topic", "result"}),
		Dials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "livesync",
			Name:      "dials_total",
			Help:      "Push channel connection attempts by result.",
		}, []string{"topic", "result"}),
		SyncState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "livesync",
			Name:      "state",
			Help:      "Current synchronizer state; 1 for the active state.",
		}, []string{"topic", "state"}),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "requests_total",
			Help:      "Backend requests by route and status code; code 0 means no response.",
		}, []string{"route", "code"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "request_duration_seconds",
			Help:      "Duration of backend requests.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"route"}),
	}

	reg.MustRegister(
		m.PushMessages,
		m.DroppedPayloads,
		m.Polls,
		m.Dials,
		m.SyncState,
		m.Requests,
		m.RequestDuration,
	)
	return m
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *Metrics) ObservePush(topic string) {
	m.PushMessages.WithLabelValues(topic).Inc()
}

func (m *Metrics) ObserveDropped(topic string) {
	m.DroppedPayloads.WithLabelValues(topic).Inc()
}

func (m *Metrics) ObservePoll(topic string, err error) {
	m.Polls.WithLabelValues(topic, result(err)).Inc()
}

func (m *Metrics) ObserveDial(topic string, err error) {
	m.Dials.WithLabelValues(topic, result(err)).Inc()
}

func (m *Metrics) ObserveState(topic string, state livesync.State) {
	for _, s := range states {
		value := 0.0
		if s == state {
			value = 1
		}
		m.SyncState.WithLabelValues(topic, string(s)).Set(value)
	}
}

func (m *Metrics) ObserveRequest(route string, code int, elapsed time.Duration) {
	m.Requests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}
