package vm

import (
	"fmt"
	"io"
	"net/http"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"

	"github.com/hkhamm/cqlclient/types"
)

// Option configures a Collector.
type Option func(*Collector)

// WithPrefix sets the metric name prefix.
//
// Default: "cqlclient"
//
// Parameters:
//   - prefix: The prefix to use for all metric names
//
// Returns:
//   - Option: A configuration option
func WithPrefix(prefix string) Option {
	return func(c *Collector) {
		c.prefix = prefix
	}
}

// WithMetricsSet sets the metrics set to use.
//
// If provided, the collector will register metrics with this set instead of
// creating a new one. The caller is responsible for exposing this set
// (e.g., via metrics.WritePrometheus or a custom handler).
//
// Parameters:
//   - set: The metrics set to use
//
// Returns:
//   - Option: A configuration option
func WithMetricsSet(set *metrics.Set) Option {
	return func(c *Collector) {
		c.set = set
	}
}

// statementKinds are the kinds whose metrics are created up front.
var statementKinds = []types.StatementKind{
	types.KindCreateKeyspace,
	types.KindCreateTable,
	types.KindInsert,
	types.KindSelect,
	types.KindUpdate,
	types.KindDropKeyspace,
	types.KindDropTable,
	types.KindDiscovery,
}

type statementMetrics struct {
	total    *metrics.Counter
	errors   *metrics.Counter
	duration *metrics.Histogram
}

// Collector implements types.MetricsCollector using VictoriaMetrics.
//
// All metrics are pre-created at initialization time for optimal performance.
// Thread-safe for concurrent use.
type Collector struct {
	set    *metrics.Set
	prefix string

	// Connection metrics
	connectTotal   *metrics.Counter
	connectErrors  *metrics.Counter
	connectedHosts atomic.Int64

	// Statement metrics, keyed by kind
	statements map[types.StatementKind]*statementMetrics
	inflight   atomic.Int64

	// Journal metrics
	journalRecorded *metrics.Counter
	journalDropped  *metrics.Counter
}

// Compile-time assertion that Collector implements types.MetricsCollector.
var _ types.MetricsCollector = (*Collector)(nil)

// New creates a new VictoriaMetrics-based metrics collector.
//
// The collector creates its own metrics.Set and registers it globally.
// All metrics are pre-created at initialization for optimal performance.
//
// Parameters:
//   - opts: Configuration options (e.g., WithPrefix)
//
// Returns:
//   - *Collector: A new metrics collector ready for use
//
// Example:
//
//	collector := vm.New(vm.WithPrefix("myapp"))
//	client, _ := cqlclient.NewQueryClient(connector,
//	    cqlclient.WithMetrics(collector),
//	)
func New(opts ...Option) *Collector {
	c := &Collector{
		prefix: "cqlclient",
	}

	for _, opt := range opts {
		opt(c)
	}

	// If no set is provided, create a new one and register it globally.
	// If a set is provided, we assume the caller manages it.
	if c.set == nil {
		c.set = metrics.NewSet()
		metrics.RegisterSet(c.set)
	}

	c.initMetrics()

	return c
}

// initMetrics pre-creates all metrics with the configured prefix.
func (c *Collector) initMetrics() {
	p := c.prefix

	c.connectTotal = c.set.NewCounter(p + "_connect_total")
	c.connectErrors = c.set.NewCounter(p + "_connect_errors_total")
	c.set.NewGauge(p+"_connected_hosts", func() float64 {
		return float64(c.connectedHosts.Load())
	})

	c.statements = make(map[types.StatementKind]*statementMetrics, len(statementKinds))
	for _, kind := range statementKinds {
		c.statements[kind] = &statementMetrics{
			total:    c.set.NewCounter(fmt.Sprintf(`%s_statement_total{kind="%s"}`, p, kind)),
			errors:   c.set.NewCounter(fmt.Sprintf(`%s_statement_errors_total{kind="%s"}`, p, kind)),
			duration: c.set.NewHistogram(fmt.Sprintf(`%s_statement_duration_seconds{kind="%s"}`, p, kind)),
		}
	}
	c.set.NewGauge(p+"_inflight_queries", func() float64 {
		return float64(c.inflight.Load())
	})

	c.journalRecorded = c.set.NewCounter(p + "_journal_recorded_total")
	c.journalDropped = c.set.NewCounter(p + "_journal_dropped_total")
}

// Set returns the underlying metrics set.
func (c *Collector) Set() *metrics.Set {
	return c.set
}

// Handler returns an HTTP handler that exposes metrics in Prometheus format.
//
// Example:
//
//	http.HandleFunc("/metrics", collector.Handler)
func (c *Collector) Handler(w http.ResponseWriter, _ *http.Request) {
	c.set.WritePrometheus(w)
}

// WritePrometheus writes all metrics in Prometheus format to the given writer.
//
// Parameters:
//   - w: The writer to write metrics to
func (c *Collector) WritePrometheus(w io.Writer) {
	c.set.WritePrometheus(w)
}

// ----------------------
// Connection
// ----------------------

// IncConnectTotal increments the connect attempt counter.
func (c *Collector) IncConnectTotal() {
	c.connectTotal.Inc()
}

// IncConnectError increments the failed connect counter.
func (c *Collector) IncConnectError() {
	c.connectErrors.Inc()
}

// SetConnectedHosts sets the connected hosts gauge.
func (c *Collector) SetConnectedHosts(n int) {
	c.connectedHosts.Store(int64(n))
}

// ----------------------
// Statements
// ----------------------

// IncStatementTotal increments the executed statement counter.
func (c *Collector) IncStatementTotal(kind types.StatementKind) {
	c.statement(kind).total.Inc()
}

// IncStatementError increments the failed statement counter.
func (c *Collector) IncStatementError(kind types.StatementKind) {
	c.statement(kind).errors.Inc()
}

// ObserveStatementDuration records a statement duration in seconds.
func (c *Collector) ObserveStatementDuration(kind types.StatementKind, seconds float64) {
	c.statement(kind).duration.Update(seconds)
}

// SetInflightQueries sets the in-flight asynchronous query gauge.
func (c *Collector) SetInflightQueries(n int) {
	c.inflight.Store(int64(n))
}

// ----------------------
// Journal
// ----------------------

// IncJournalRecorded increments the journaled statement counter.
func (c *Collector) IncJournalRecorded() {
	c.journalRecorded.Inc()
}

// IncJournalDropped increments the rejected journal write counter.
func (c *Collector) IncJournalDropped() {
	c.journalDropped.Inc()
}

// statement returns the pre-created metrics for kind, creating them lazily
// for kinds not known at initialization.
func (c *Collector) statement(kind types.StatementKind) *statementMetrics {
	if m, ok := c.statements[kind]; ok {
		return m
	}

	p := c.prefix

	return &statementMetrics{
		total:    c.set.GetOrCreateCounter(fmt.Sprintf(`%s_statement_total{kind="%s"}`, p, kind)),
		errors:   c.set.GetOrCreateCounter(fmt.Sprintf(`%s_statement_errors_total{kind="%s"}`, p, kind)),
		duration: c.set.GetOrCreateHistogram(fmt.Sprintf(`%s_statement_duration_seconds{kind="%s"}`, p, kind)),
	}
}
