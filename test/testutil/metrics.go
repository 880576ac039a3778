package testutil

import (
	"sync"
	"sync/atomic"

	"github.com/hkhamm/cqlclient/types"
)

// TestMetricsCollector is a test implementation of types.MetricsCollector
// that tracks method calls for assertion in tests.
type TestMetricsCollector struct {
	mu sync.RWMutex

	// Connection
	ConnectTotal   int64
	ConnectErrors  int64
	ConnectedHosts int

	// Statements
	StatementTotal    map[types.StatementKind]int64
	StatementErrors   map[types.StatementKind]int64
	StatementDuration map[types.StatementKind][]float64
	InflightQueries   []int

	// Atomic counters for quick access
	journalRecorded atomic.Int64
	journalDropped  atomic.Int64
}

// Compile-time assertion that TestMetricsCollector implements types.MetricsCollector.
var _ types.MetricsCollector = (*TestMetricsCollector)(nil)

// NewTestMetricsCollector creates a new test metrics collector.
func NewTestMetricsCollector() *TestMetricsCollector {
	return &TestMetricsCollector{
		StatementTotal:    make(map[types.StatementKind]int64),
		StatementErrors:   make(map[types.StatementKind]int64),
		StatementDuration: make(map[types.StatementKind][]float64),
	}
}

// ----------------------
// Connection
// ----------------------

func (m *TestMetricsCollector) IncConnectTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConnectTotal++
}

func (m *TestMetricsCollector) IncConnectError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConnectErrors++
}

func (m *TestMetricsCollector) SetConnectedHosts(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConnectedHosts = n
}

// ----------------------
// Statements
// ----------------------

func (m *TestMetricsCollector) IncStatementTotal(kind types.StatementKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatementTotal[kind]++
}

func (m *TestMetricsCollector) IncStatementError(kind types.StatementKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatementErrors[kind]++
}

func (m *TestMetricsCollector) ObserveStatementDuration(kind types.StatementKind, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StatementDuration[kind] = append(m.StatementDuration[kind], seconds)
}

func (m *TestMetricsCollector) SetInflightQueries(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InflightQueries = append(m.InflightQueries, n)
}

// ----------------------
// Journal
// ----------------------

func (m *TestMetricsCollector) IncJournalRecorded() {
	m.journalRecorded.Add(1)
}

func (m *TestMetricsCollector) IncJournalDropped() {
	m.journalDropped.Add(1)
}

// ----------------------
// Getters
// ----------------------

// GetStatementTotal returns the executed statement count for a kind.
func (m *TestMetricsCollector) GetStatementTotal(kind types.StatementKind) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.StatementTotal[kind]
}

// GetStatementErrors returns the failed statement count for a kind.
func (m *TestMetricsCollector) GetStatementErrors(kind types.StatementKind) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.StatementErrors[kind]
}

// GetConnectTotal returns the connect attempt and failure counts.
func (m *TestMetricsCollector) GetConnectTotal() (total, errors int64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.ConnectTotal, m.ConnectErrors
}

// GetConnectedHosts returns the last reported host count.
func (m *TestMetricsCollector) GetConnectedHosts() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.ConnectedHosts
}

// GetJournalRecorded returns the number of journaled statements.
func (m *TestMetricsCollector) GetJournalRecorded() int64 {
	return m.journalRecorded.Load()
}

// GetJournalDropped returns the number of statements the journal rejected.
func (m *TestMetricsCollector) GetJournalDropped() int64 {
	return m.journalDropped.Load()
}

// Reset clears all recorded values.
func (m *TestMetricsCollector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ConnectTotal = 0
	m.ConnectErrors = 0
	m.ConnectedHosts = 0
	m.StatementTotal = make(map[types.StatementKind]int64)
	m.StatementErrors = make(map[types.StatementKind]int64)
	m.StatementDuration = make(map[types.StatementKind][]float64)
	m.InflightQueries = nil
	m.journalRecorded.Store(0)
	m.journalDropped.Store(0)
}
