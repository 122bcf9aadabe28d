package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/eridhobffry/paguyuban-next-sub001/types"
)

func TestNewNop(t *testing.T) {
	m := NewNop()

	require.NotNil(t, m)
	require.IsType(t, &NopMetrics{}, m)
}

func TestNopMetrics_DoesNotPanic(t *testing.T) {
	m := NewNop()

	require.NotPanics(t, func() {
		m.RecordStateTransition(types.StateInit, types.StateLeader)
		m.RecordStateTransition(types.State(999), types.State(1000))
		m.RecordLeadershipChange(true)
		m.RecordLeadershipChange(false)
		m.RecordHeartbeat(true)
		m.RecordMessage(types.KindHeartbeat, false)
		m.RecordEventTracked("buffered")
		m.RecordFlush("ok", 20)
		m.RecordFlush("failed", -1)
		m.RecordBatchDropped(0)
		m.RecordSessionStart(true)
	})
}

func TestPrometheusCollector_RecordEventTracked(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg, "test")

	m.RecordEventTracked("buffered")
	m.RecordEventTracked("buffered")
	m.RecordEventTracked("forwarded")

	buffered := testutil.ToFloat64(m.eventsTracked.WithLabelValues("buffered"))
	forwarded := testutil.ToFloat64(m.eventsTracked.WithLabelValues("forwarded"))
	require.Equal(t, 2.0, buffered)
	require.Equal(t, 1.0, forwarded)
}

func TestPrometheusCollector_LeadershipGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg, "test")

	m.RecordLeadershipChange(true)
	require.Equal(t, 1.0, testutil.ToFloat64(m.leadershipGauge))

	m.RecordLeadershipChange(false)
	require.Equal(t, 0.0, testutil.ToFloat64(m.leadershipGauge))

	gained := testutil.ToFloat64(m.leadershipChanges.WithLabelValues("gained"))
	lost := testutil.ToFloat64(m.leadershipChanges.WithLabelValues("lost"))
	require.Equal(t, 1.0, gained)
	require.Equal(t, 1.0, lost)
}

func TestPrometheusCollector_RecordBatchDropped(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg, "test")

	m.RecordBatchDropped(20)
	m.RecordBatchDropped(3)

	require.Equal(t, 23.0, testutil.ToFloat64(m.eventsDropped))
}

func TestPrometheusCollector_DefaultNamespace(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewPrometheus(reg, "")

	require.Equal(t, "tabtrack", m.namespace)
}

func BenchmarkNopMetrics_RecordEventTracked(b *testing.B) {
	m := NewNop()
	for b.Loop() {
		m.RecordEventTracked("buffered")
	}
}
