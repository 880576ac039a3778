package cqlclient

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/hkhamm/cqlclient/adapter/cql"
	"github.com/hkhamm/cqlclient/internal/logging"
	"github.com/hkhamm/cqlclient/internal/metrics"
	"github.com/hkhamm/cqlclient/topology"
	"github.com/hkhamm/cqlclient/types"
)

// QueryClient issues CQL statements over a single session.
//
// DDL, INSERT, UPDATE and DROP statements block until the coordinator
// acknowledges them. QueryTable runs the SELECT on its own goroutine and
// returns a QueryFuture.
//
// # Thread Safety
//
// QueryClient is safe for concurrent use. The session handle is guarded so
// that Close cannot release it while a statement is being submitted, and
// Close waits for every statement and asynchronous query in flight.
//
// # Lifecycle
//
//	client, err := cqlclient.NewQueryClient(v1.NewConnector())
//	if err != nil {
//	    return err
//	}
//	if err := client.Connect(ctx, "127.0.0.1"); err != nil {
//	    return err
//	}
//	defer client.Close()
//
// A closed client may be connected again.
type QueryClient struct {
	connector cql.Connector
	config    *ClientConfig
	reporter  *Reporter

	mu      sync.RWMutex
	session cql.Session
	cluster types.ClusterInfo

	// inflight tracks every statement holding the session. Each session
	// gets its own group so a reconnect never reuses one Close still waits on.
	inflight *sync.WaitGroup
	// pending counts asynchronous queries not yet completed.
	pending atomic.Int64
}

// NewQueryClient creates a disconnected client.
//
// Parameters:
//   - connector: Driver connector used by Connect (v1.NewConnector, v2.NewConnector)
//   - opts: Optional configuration options
//
// Returns:
//   - *QueryClient: A new client
//   - error: ErrNilConnector if connector is nil
func NewQueryClient(connector cql.Connector, opts ...Option) (*QueryClient, error) {
	if connector == nil {
		return nil, types.ErrNilConnector
	}

	config := DefaultConfig()
	for _, opt := range opts {
		opt(config)
	}

	// Ensure logger and metrics are never nil
	if config.Logger == nil {
		config.Logger = logging.NewNopLogger()
	}
	if config.Metrics == nil {
		config.Metrics = metrics.NewNopMetrics()
	}
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.JournalTimeout <= 0 {
		config.JournalTimeout = DefaultJournalTimeout
	}

	return &QueryClient{
		connector: connector,
		config:    config,
		reporter:  NewReporter(config.Output, config.Logger),
	}, nil
}

// Connect establishes a session against the given contact nodes.
//
// The driver picks the first reachable node; no retry is attempted here.
// On success the cluster name and every discovered host are logged. A
// failed topology discovery is logged as a warning and does not fail the
// connect.
//
// Parameters:
//   - ctx: Context for the connection attempt
//   - nodes: Host names or IP addresses
//
// Returns:
//   - error: ErrNoNodes, ErrAlreadyConnected, or the connector's error
func (c *QueryClient) Connect(ctx context.Context, nodes ...string) error {
	nodes = slices.DeleteFunc(slices.Clone(nodes), func(n string) bool { return n == "" })
	if len(nodes) == 0 {
		return types.ErrNoNodes
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return types.ErrAlreadyConnected
	}

	c.config.Metrics.IncConnectTotal()

	session, err := c.connector.Connect(ctx, nodes)
	if err != nil {
		c.config.Metrics.IncConnectError()
		return fmt.Errorf("cqlclient: connect to %v: %w", nodes, err)
	}
	if session == nil {
		c.config.Metrics.IncConnectError()
		return types.ErrNilSession
	}

	info, err := topology.Discover(ctx, session)
	if err != nil {
		c.config.Logger.Warn("topology discovery failed", "error", err)
	}

	c.session = session
	c.inflight = &sync.WaitGroup{}
	c.cluster = info
	c.config.Metrics.SetConnectedHosts(len(info.Hosts))

	c.config.Logger.Info("connected to cluster", "cluster", info.Name, "nodes", nodes)
	for _, h := range info.Hosts {
		c.config.Logger.Info("discovered host",
			"datacenter", h.Datacenter,
			"address", h.Address,
			"rack", h.Rack,
		)
	}

	return nil
}

// Close waits for in-flight statements and queries, then releases the
// session and all pooled connections.
//
// Returns:
//   - error: ErrNotConnected if the client holds no session
func (c *QueryClient) Close() error {
	c.mu.Lock()
	session, inflight := c.session, c.inflight
	c.session, c.inflight = nil, nil
	c.cluster = types.ClusterInfo{}
	c.mu.Unlock()

	if session == nil {
		return types.ErrNotConnected
	}

	inflight.Wait()
	session.Close()
	c.config.Logger.Info("connection closed")

	return nil
}

// ClusterInfo returns the topology recorded by the last successful Connect.
func (c *QueryClient) ClusterInfo() types.ClusterInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := c.cluster
	info.Hosts = slices.Clone(c.cluster.Hosts)

	return info
}

// CreateKeyspace creates a keyspace if it does not exist.
//
// Parameters:
//   - ctx: Context for the statement
//   - name: Keyspace name
//   - repl: Replication strategy and factor
//
// Returns:
//   - error: Validation error, ErrNotConnected, or *types.StatementError
func (c *QueryClient) CreateKeyspace(ctx context.Context, name string, repl Replication) error {
	st, err := buildCreateKeyspace(name, repl)
	if err != nil {
		return err
	}
	if err := c.exec(ctx, st); err != nil {
		return err
	}
	c.config.Logger.Info("keyspace created", "keyspace", name)

	return nil
}

// CreateTable creates a table if it does not exist.
//
// Parameters:
//   - ctx: Context for the statement
//   - table: Table name, optionally keyspace-qualified
//   - schema: Columns and primary key
//
// Returns:
//   - error: Validation error, ErrNotConnected, or *types.StatementError
func (c *QueryClient) CreateTable(ctx context.Context, table string, schema TableSchema) error {
	st, err := buildCreateTable(table, schema)
	if err != nil {
		return err
	}
	if err := c.exec(ctx, st); err != nil {
		return err
	}
	c.config.Logger.Info("table created", "table", table)

	return nil
}

// InsertRow inserts one row. Values are bound in column order.
//
// Parameters:
//   - ctx: Context for the statement
//   - table: Table name, optionally keyspace-qualified
//   - columns: Column names
//   - values: One value per column
//
// Returns:
//   - error: Validation error, ErrNotConnected, or *types.StatementError
func (c *QueryClient) InsertRow(ctx context.Context, table string, columns []string, values []any) error {
	st, err := buildInsert(table, columns, values)
	if err != nil {
		return err
	}
	if err := c.exec(ctx, st); err != nil {
		return err
	}
	c.config.Logger.Info("data loaded", "table", table)

	return nil
}

// QueryTable selects rows without blocking.
//
// Predicates are ANDed; with none, every row is returned. The returned
// future is never nil. Validation and connection errors complete it
// immediately. Completion order between concurrent queries is undefined.
//
// Parameters:
//   - ctx: Context for the query; cancelling it fails the future
//   - table: Table name, optionally keyspace-qualified
//   - where: Optional predicates
//
// Returns:
//   - *QueryFuture: The pending result
func (c *QueryClient) QueryTable(ctx context.Context, table string, where ...Predicate) *QueryFuture {
	future := newQueryFuture(c.config.Logger)

	st, err := buildSelect(table, where)
	if err != nil {
		future.complete(nil, err)
		return future
	}

	session, release, err := c.acquire()
	if err != nil {
		future.complete(nil, err)
		return future
	}

	c.config.Metrics.SetInflightQueries(int(c.pending.Add(1)))

	go func() {
		defer release()

		rs, err := c.query(ctx, session, st)
		c.config.Metrics.SetInflightQueries(int(c.pending.Add(-1)))
		if err == nil {
			c.config.Logger.Info("table queried", "table", table, "rows", rs.Len())
		}
		future.complete(rs, err)
	}()

	return future
}

// UpdateRow updates the rows matching where.
//
// Parameters:
//   - ctx: Context for the statement
//   - table: Table name, optionally keyspace-qualified
//   - set: Column assignments, at least one
//   - where: Predicates, at least one
//
// Returns:
//   - error: Validation error, ErrNotConnected, or *types.StatementError
func (c *QueryClient) UpdateRow(ctx context.Context, table string, set []Assignment, where []Predicate) error {
	st, err := buildUpdate(table, set, where)
	if err != nil {
		return err
	}
	if err := c.exec(ctx, st); err != nil {
		return err
	}
	c.config.Logger.Info("table updated", "table", table)

	return nil
}

// DropKeyspace drops a keyspace if it exists.
//
// Asynchronous queries still in flight may observe the keyspace before or
// after the drop; a warning is logged when any are pending. Wait on their
// futures first for a deterministic order.
func (c *QueryClient) DropKeyspace(ctx context.Context, name string) error {
	st, err := buildDropKeyspace(name)
	if err != nil {
		return err
	}
	c.warnPending("keyspace", name)
	if err := c.exec(ctx, st); err != nil {
		return err
	}
	c.config.Logger.Info("keyspace dropped", "keyspace", name)

	return nil
}

// DropTable drops a table if it exists. See DropKeyspace about in-flight
// queries.
func (c *QueryClient) DropTable(ctx context.Context, table string) error {
	st, err := buildDropTable(table)
	if err != nil {
		return err
	}
	c.warnPending("table", table)
	if err := c.exec(ctx, st); err != nil {
		return err
	}
	c.config.Logger.Info("table dropped", "table", table)

	return nil
}

// ReportResults prints the title/album/artist listing of rs to the
// configured output. See Reporter.ReportResults.
func (c *QueryClient) ReportResults(rs *types.ResultSet) error {
	return c.reporter.ReportResults(rs)
}

// ReportErrors writes a query fault to the error log.
func (c *QueryClient) ReportErrors(err error) {
	c.reporter.ReportErrors(err)
}

// PendingQueries returns the number of asynchronous queries not yet completed.
func (c *QueryClient) PendingQueries() int {
	return int(c.pending.Load())
}

// acquire returns the session and registers a statement in flight. The
// release func must be called once the statement is done with the session.
func (c *QueryClient) acquire() (cql.Session, func(), error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.session == nil {
		return nil, nil, types.ErrNotConnected
	}
	inflight := c.inflight
	inflight.Add(1)

	return c.session, inflight.Done, nil
}

func (c *QueryClient) exec(ctx context.Context, st statement) error {
	session, release, err := c.acquire()
	if err != nil {
		return err
	}
	defer release()

	stmtCtx, cancel := c.statementContext(ctx)
	defer cancel()

	start := time.Now()
	q := c.newQuery(session, st)
	err = q.ExecContext(stmtCtx)
	c.observe(ctx, st.kind, q, start, err)
	q.Release()

	if err != nil {
		return &types.StatementError{Kind: st.kind, Statement: st.cql, Cause: err}
	}

	return nil
}

func (c *QueryClient) query(ctx context.Context, session cql.Session, st statement) (*types.ResultSet, error) {
	stmtCtx, cancel := c.statementContext(ctx)
	defer cancel()

	start := time.Now()
	q := c.newQuery(session, st)
	iter := q.IterContext(stmtCtx)

	rs := &types.ResultSet{
		Columns: columnNames(iter.Columns()),
		Rows:    make([]types.Row, 0, iter.NumRows()),
	}
	for {
		row := make(map[string]any, len(rs.Columns))
		if !iter.MapScan(row) {
			break
		}
		rs.Rows = append(rs.Rows, types.Row(row))
	}
	for _, w := range iter.Warnings() {
		c.config.Logger.Warn("server warning", "statement", st.cql, "warning", w)
	}
	err := iter.Close()
	c.observe(ctx, st.kind, q, start, err)
	q.Release()

	if err != nil {
		return nil, &types.StatementError{Kind: st.kind, Statement: st.cql, Cause: err}
	}
	if len(rs.Columns) == 0 && len(rs.Rows) > 0 {
		rs.Columns = rowKeys(rs.Rows[0])
	}

	return rs, nil
}

// newQuery binds st to session and applies the configured consistency and
// page size.
func (c *QueryClient) newQuery(session cql.Session, st statement) cql.Query {
	q := session.Query(st.cql, st.args...)

	level := c.config.WriteConsistency
	if st.kind == types.KindSelect {
		level = c.config.ReadConsistency
		if c.config.PageSize > 0 {
			q = q.PageSize(c.config.PageSize)
		}
	}
	if level != nil {
		q = q.Consistency(*level)
	}

	return q
}

func (c *QueryClient) statementContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.config.StatementTimeout > 0 {
		return context.WithTimeout(ctx, c.config.StatementTimeout)
	}

	return context.WithCancel(ctx)
}

// observe records metrics and the journal entry for an executed statement.
// The journal takes the text and values as bound to q, so it must run before
// q is released.
func (c *QueryClient) observe(ctx context.Context, kind types.StatementKind, q cql.Query, start time.Time, err error) {
	elapsed := time.Since(start)

	c.config.Metrics.IncStatementTotal(kind)
	c.config.Metrics.ObserveStatementDuration(kind, elapsed.Seconds())
	if err != nil {
		c.config.Metrics.IncStatementError(kind)
	}

	if c.config.Journal == nil {
		return
	}

	entry := types.JournalEntry{
		ID:        uuid.New(),
		Kind:      kind,
		Statement: q.Statement(),
		Args:      q.Values(),
		Timestamp: start,
		Duration:  elapsed,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.config.JournalTimeout)
	defer cancel()

	if jerr := c.config.Journal.Record(jctx, entry); jerr != nil {
		c.config.Metrics.IncJournalDropped()
		c.config.Logger.Warn("journal write failed", "kind", kind, "error", jerr)

		return
	}
	c.config.Metrics.IncJournalRecorded()
}

func (c *QueryClient) warnPending(target, name string) {
	if n := c.pending.Load(); n > 0 {
		c.config.Logger.Warn("dropping "+target+" while asynchronous queries are in flight",
			target, name,
			"inflight", n,
		)
	}
}

func columnNames(cols []cql.ColumnInfo) []string {
	if len(cols) == 0 {
		return nil
	}
	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = col.Name
	}

	return names
}

func rowKeys(row types.Row) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
