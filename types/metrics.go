package types

// MetricsCollector defines methods for collecting operational metrics.
//
// Implementations should be thread-safe as methods may be called concurrently
// from asynchronous queries.
//
// Example usage with VictoriaMetrics (via contrib/metrics/vm):
//
//	import vmmetrics "github.com/hkhamm/cqlclient/contrib/metrics/vm"
//
//	collector := vmmetrics.New(vmmetrics.WithPrefix("myapp"))
//	client, _ := cqlclient.NewQueryClient(connector,
//	    cqlclient.WithMetrics(collector),
//	)
//
//	// Expose metrics via HTTP
//	http.HandleFunc("/metrics", collector.Handler)
type MetricsCollector interface {
	// ----------------------
	// Connection
	// ----------------------

	// IncConnectTotal increments the connect attempt counter.
	IncConnectTotal()

	// IncConnectError increments the failed connect counter.
	IncConnectError()

	// SetConnectedHosts sets the number of hosts discovered at connect time.
	SetConnectedHosts(n int)

	// ----------------------
	// Statements
	// ----------------------

	// IncStatementTotal increments the executed statement counter.
	IncStatementTotal(kind StatementKind)

	// IncStatementError increments the failed statement counter.
	IncStatementError(kind StatementKind)

	// ObserveStatementDuration records a statement duration in seconds.
	ObserveStatementDuration(kind StatementKind, seconds float64)

	// SetInflightQueries sets the number of asynchronous queries not yet completed.
	SetInflightQueries(n int)

	// ----------------------
	// Journal
	// ----------------------

	// IncJournalRecorded increments the counter of journaled statements.
	IncJournalRecorded()

	// IncJournalDropped increments the counter of statements the journal rejected.
	IncJournalDropped()
}
