// Package metrics provides MetricsCollector implementations for tabtrack.
package metrics

import "github.com/eridhobffry/paguyuban-next-sub001/types"

// NopMetrics implements a no-op metrics collector.
//
// All metrics are discarded. Used when no collector is configured or when
// external metrics collection is in place.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNop creates a new no-op metrics collector.
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordStateTransition discards the state transition metric.
func (*NopMetrics) RecordStateTransition(_, _ types.State) {}

// RecordLeadershipChange discards the leadership change metric.
func (*NopMetrics) RecordLeadershipChange(_ bool) {}

// RecordHeartbeat discards the heartbeat metric.
func (*NopMetrics) RecordHeartbeat(_ bool) {}

// RecordMessage discards the channel message metric.
func (*NopMetrics) RecordMessage(_ types.MessageKind, _ bool) {}

// RecordEventTracked discards the tracked event metric.
func (*NopMetrics) RecordEventTracked(_ string) {}

// RecordFlush discards the flush metric.
func (*NopMetrics) RecordFlush(_ string, _ int) {}

// RecordBatchDropped discards the dropped batch metric.
func (*NopMetrics) RecordBatchDropped(_ int) {}

// RecordSessionStart discards the session start metric.
func (*NopMetrics) RecordSessionStart(_ bool) {}
