// Package metrics provides internal metrics utilities for cqlclient.
package metrics

import "github.com/hkhamm/cqlclient/types"

// NopMetrics is a no-op metrics collector that discards all metrics.
//
// This is used as the default metrics collector when no collector is configured,
// avoiding nil checks throughout the codebase.
type NopMetrics struct{}

// Compile-time assertion that NopMetrics implements types.MetricsCollector.
var _ types.MetricsCollector = (*NopMetrics)(nil)

// NewNopMetrics creates a new no-op metrics collector.
//
// Returns:
//   - *NopMetrics: A collector that discards all metrics
func NewNopMetrics() *NopMetrics {
	return &NopMetrics{}
}

// ----------------------
// Connection
// ----------------------

// IncConnectTotal discards the metric.
func (m *NopMetrics) IncConnectTotal() {}

// IncConnectError discards the metric.
func (m *NopMetrics) IncConnectError() {}

// SetConnectedHosts discards the metric.
func (m *NopMetrics) SetConnectedHosts(_ int) {}

// ----------------------
// Statements
// ----------------------

// IncStatementTotal discards the metric.
func (m *NopMetrics) IncStatementTotal(_ types.StatementKind) {}

// IncStatementError discards the metric.
func (m *NopMetrics) IncStatementError(_ types.StatementKind) {}

// ObserveStatementDuration discards the metric.
func (m *NopMetrics) ObserveStatementDuration(_ types.StatementKind, _ float64) {}

// SetInflightQueries discards the metric.
func (m *NopMetrics) SetInflightQueries(_ int) {}

// ----------------------
// Journal
// ----------------------

// IncJournalRecorded discards the metric.
func (m *NopMetrics) IncJournalRecorded() {}

// IncJournalDropped discards the metric.
func (m *NopMetrics) IncJournalDropped() {}
