package cqlclient

import (
	"io"
	"os"
	"time"

	"github.com/hkhamm/cqlclient/internal/logging"
	"github.com/hkhamm/cqlclient/internal/metrics"
	"github.com/hkhamm/cqlclient/types"
)

// DefaultJournalTimeout bounds a single journal write.
const DefaultJournalTimeout = 5 * time.Second

// ClientConfig holds configuration for a QueryClient.
type ClientConfig struct {
	Logger  types.Logger
	Metrics MetricsCollector
	Journal Journal

	// Output receives the tabular result report.
	Output io.Writer

	// StatementTimeout bounds each statement. Zero leaves the deadline to
	// the caller's context and the driver's own timeout.
	StatementTimeout time.Duration

	// JournalTimeout bounds each journal write.
	JournalTimeout time.Duration

	// ReadConsistency overrides the connector's consistency for queries.
	// Nil keeps the connector's level.
	ReadConsistency *Consistency

	// WriteConsistency overrides the connector's consistency for every
	// statement other than a query. Nil keeps the connector's level.
	WriteConsistency *Consistency

	// PageSize is the number of rows fetched per page by a query. Zero
	// keeps the driver default.
	PageSize int
}

// DefaultConfig returns a ClientConfig with sensible defaults.
//
// Returns:
//   - *ClientConfig: Configuration with a no-op logger and metrics, no
//     journal, and the report written to stdout
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		Logger:         logging.NewNopLogger(),
		Metrics:        metrics.NewNopMetrics(),
		Output:         os.Stdout,
		JournalTimeout: DefaultJournalTimeout,
	}
}

// Option configures a ClientConfig.
type Option func(*ClientConfig)

// WithLogger sets the structured logger.
//
// If not set, a no-op logger is used that discards all messages.
//
// Parameters:
//   - logger: The logger implementation
//
// Returns:
//   - Option: Configuration option
//
// Example:
//
//	zl, _ := zap.NewProduction()
//	client, _ := cqlclient.NewQueryClient(connector,
//	    cqlclient.WithLogger(logging.NewZapLogger(zl)),
//	)
func WithLogger(logger types.Logger) Option {
	return func(c *ClientConfig) {
		c.Logger = logger
	}
}

// WithMetrics sets the metrics collector.
//
// If not set, a no-op collector is used that discards all metrics.
// Use contrib/metrics/vm.New() for VictoriaMetrics integration.
//
// Parameters:
//   - collector: The metrics collector implementation
//
// Returns:
//   - Option: Configuration option
func WithMetrics(collector MetricsCollector) Option {
	return func(c *ClientConfig) {
		c.Metrics = collector
	}
}

// WithJournal records every executed statement in the given journal.
//
// Journal writes are best-effort: a failed write is logged and counted but
// never fails the statement.
//
// Parameters:
//   - j: The journal implementation (journal.Memory, journal.NATS)
//
// Returns:
//   - Option: Configuration option
func WithJournal(j Journal) Option {
	return func(c *ClientConfig) {
		c.Journal = j
	}
}

// WithOutput sets the writer that receives the result report.
func WithOutput(w io.Writer) Option {
	return func(c *ClientConfig) {
		c.Output = w
	}
}

// WithStatementTimeout bounds every statement with the given timeout.
//
// Parameters:
//   - d: Per-statement timeout; zero disables it
//
// Returns:
//   - Option: Configuration option
func WithStatementTimeout(d time.Duration) Option {
	return func(c *ClientConfig) {
		c.StatementTimeout = d
	}
}

// WithJournalTimeout bounds every journal write with the given timeout.
func WithJournalTimeout(d time.Duration) Option {
	return func(c *ClientConfig) {
		c.JournalTimeout = d
	}
}

// WithReadConsistency sets the consistency level of QueryTable.
//
// Parameters:
//   - level: Consistency level for queries
//
// Returns:
//   - Option: Configuration option
func WithReadConsistency(level Consistency) Option {
	return func(c *ClientConfig) {
		c.ReadConsistency = &level
	}
}

// WithWriteConsistency sets the consistency level of DDL, insert, update
// and drop statements.
func WithWriteConsistency(level Consistency) Option {
	return func(c *ClientConfig) {
		c.WriteConsistency = &level
	}
}

// WithPageSize sets how many rows a query fetches per page.
// Values below one keep the driver default.
func WithPageSize(n int) Option {
	return func(c *ClientConfig) {
		c.PageSize = max(n, 0)
	}
}
