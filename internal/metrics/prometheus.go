package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

// PrometheusCollector implements types.MetricsCollector backed by Prometheus.
//
// All metrics are registered lazily on first use so constructing the
// collector never panics on duplicate registration in tests.
type PrometheusCollector struct {
	reg       prometheus.Registerer
	namespace string
	once      sync.Once

	stateTransitions  *prometheus.CounterVec
	leadershipGauge   prometheus.Gauge
	leadershipChanges *prometheus.CounterVec
	heartbeats        *prometheus.CounterVec
	messages          *prometheus.CounterVec
	eventsTracked     *prometheus.CounterVec
	flushes           *prometheus.CounterVec
	flushBatchSize    prometheus.Histogram
	eventsDropped     prometheus.Counter
	sessionStarts     *prometheus.CounterVec
}

// Compile-time assertion that PrometheusCollector implements MetricsCollector.
var _ types.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheus creates a Prometheus-backed metrics collector.
//
// Parameters:
//   - reg: Prometheus registerer (prometheus.DefaultRegisterer if nil)
//   - namespace: Metrics namespace ("tabtrack" if empty)
//
// Returns:
//   - *PrometheusCollector: A MetricsCollector implementation using Prometheus
func NewPrometheus(reg prometheus.Registerer, namespace string) *PrometheusCollector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "tabtrack"
	}

	return &PrometheusCollector{reg: reg, namespace: namespace}
}

func (p *PrometheusCollector) ensureRegistered() {
	p.once.Do(func() {
		p.stateTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "state_transitions_total",
			Help:      "Total instance state transitions by from/to state.",
		}, []string{"from", "to"})

		p.leadershipGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: p.namespace,
			Name:      "is_leader",
			Help:      "1 when this instance currently believes it is the leader.",
		})

		p.leadershipChanges = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "leadership_changes_total",
			Help:      "Total leadership gains and losses of this instance.",
		}, []string{"direction"})

		p.heartbeats = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "heartbeats_total",
			Help:      "Total heartbeat publish attempts by result.",
		}, []string{"result"})

		p.messages = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "channel_messages_total",
			Help:      "Total channel messages by kind and direction.",
		}, []string{"kind", "direction"})

		p.eventsTracked = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "events_tracked_total",
			Help:      "Total Track calls by disposition (buffered/forwarded/dropped).",
		}, []string{"disposition"})

		p.flushes = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "flushes_total",
			Help:      "Total flush attempts by result (ok/failed/skipped).",
		}, []string{"result"})

		p.flushBatchSize = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: p.namespace,
			Name:      "flush_batch_size",
			Help:      "Number of events per drained batch.",
			Buckets:   []float64{1, 5, 10, 20, 50, 100, 250},
		})

		p.eventsDropped = prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "events_dropped_total",
			Help:      "Total events discarded after delivery failure.",
		})

		p.sessionStarts = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: p.namespace,
			Name:      "session_starts_total",
			Help:      "Total session-start exchange attempts by result.",
		}, []string{"result"})

		p.reg.MustRegister(p.stateTransitions)
		p.reg.MustRegister(p.leadershipGauge)
		p.reg.MustRegister(p.leadershipChanges)
		p.reg.MustRegister(p.heartbeats)
		p.reg.MustRegister(p.messages)
		p.reg.MustRegister(p.eventsTracked)
		p.reg.MustRegister(p.flushes)
		p.reg.MustRegister(p.flushBatchSize)
		p.reg.MustRegister(p.eventsDropped)
		p.reg.MustRegister(p.sessionStarts)
	})
}

func resultLabel(success bool) string {
	if success {
		return "ok"
	}

	return "failed"
}

// RecordStateTransition increments the state transition counter.
func (p *PrometheusCollector) RecordStateTransition(from, to types.State) {
	p.ensureRegistered()
	p.stateTransitions.WithLabelValues(from.String(), to.String()).Inc()
}

// RecordLeadershipChange updates the leadership gauge and change counter.
func (p *PrometheusCollector) RecordLeadershipChange(isLeader bool) {
	p.ensureRegistered()

	if isLeader {
		p.leadershipGauge.Set(1)
		p.leadershipChanges.WithLabelValues("gained").Inc()
	} else {
		p.leadershipGauge.Set(0)
		p.leadershipChanges.WithLabelValues("lost").Inc()
	}
}

// RecordHeartbeat increments the heartbeat counter.
func (p *PrometheusCollector) RecordHeartbeat(success bool) {
	p.ensureRegistered()
	p.heartbeats.WithLabelValues(resultLabel(success)).Inc()
}

// RecordMessage increments the channel message counter.
func (p *PrometheusCollector) RecordMessage(kind types.MessageKind, sent bool) {
	p.ensureRegistered()

	direction := "received"
	if sent {
		direction = "sent"
	}
	p.messages.WithLabelValues(string(kind), direction).Inc()
}

// RecordEventTracked increments the tracked event counter.
func (p *PrometheusCollector) RecordEventTracked(disposition string) {
	p.ensureRegistered()
	p.eventsTracked.WithLabelValues(disposition).Inc()
}

// RecordFlush increments the flush counter and observes the batch size.
func (p *PrometheusCollector) RecordFlush(result string, size int) {
	p.ensureRegistered()
	p.flushes.WithLabelValues(result).Inc()
	if size > 0 {
		p.flushBatchSize.Observe(float64(size))
	}
}

// RecordBatchDropped adds the dropped batch size to the dropped counter.
func (p *PrometheusCollector) RecordBatchDropped(size int) {
	p.ensureRegistered()
	p.eventsDropped.Add(float64(size))
}

// RecordSessionStart increments the session start counter.
func (p *PrometheusCollector) RecordSessionStart(success bool) {
	p.ensureRegistered()
	p.sessionStarts.WithLabelValues(resultLabel(success)).Inc()
}
