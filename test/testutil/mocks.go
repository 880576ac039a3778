package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/hkhamm/cqlclient/adapter/cql"
)

// ExecutedQuery records one statement that reached the mock session.
type ExecutedQuery struct {
	Statement string
	Values    []any

	// Consistency and PageSize are zero unless set on the query.
	Consistency cql.Consistency
	PageSize    int
}

// MockSession is a mock implementation of cql.Session for testing.
//
// Statements are matched by exact text. A statement with no configured
// behavior succeeds and returns no rows.
type MockSession struct {
	mu       sync.RWMutex
	queries  map[string]*MockQuery
	log      []ExecutedQuery
	released int
	closed   bool

	// Hooks
	OnQuery func(stmt string, values []any)
	OnClose func()
}

// Compile-time assertion that MockSession implements cql.Session.
var _ cql.Session = (*MockSession)(nil)

// NewMockSession creates a new mock CQL session.
func NewMockSession() *MockSession {
	return &MockSession{
		queries: make(map[string]*MockQuery),
	}
}

// Query creates a query bound to the given values.
//
// If behavior was configured for stmt, the returned query shares it.
func (m *MockSession) Query(stmt string, values ...any) cql.Query {
	m.mu.RLock()
	tmpl, ok := m.queries[stmt]
	m.mu.RUnlock()

	q := NewMockQuery(stmt, values...)
	q.session = m
	if ok {
		tmpl.mu.RLock()
		q.execErr = tmpl.execErr
		q.scanErr = tmpl.scanErr
		q.scanData = tmpl.scanData
		q.iter = tmpl.iter
		tmpl.mu.RUnlock()
	}

	return q
}

// Close marks the session as closed.
func (m *MockSession) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	if m.OnClose != nil {
		m.OnClose()
	}
}

// IsClosed returns whether the session has been closed.
func (m *MockSession) IsClosed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.closed
}

// Executed returns every statement executed so far, in execution order.
func (m *MockSession) Executed() []ExecutedQuery {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]ExecutedQuery, len(m.log))
	copy(out, m.log)

	return out
}

// Released returns how many queries built by this session were released.
func (m *MockSession) Released() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.released
}

// ExecutedStatements returns the text of every executed statement.
func (m *MockSession) ExecutedStatements() []string {
	executed := m.Executed()
	out := make([]string, len(executed))
	for i, e := range executed {
		out[i] = e.Statement
	}

	return out
}

// SetQueryError configures a statement to fail with err on execution.
func (m *MockSession) SetQueryError(stmt string, err error) {
	m.template(stmt).SetExecError(err)
}

// SetQueryScan configures the single row returned by ScanContext.
func (m *MockSession) SetQueryScan(stmt string, data ...any) {
	m.template(stmt).SetScanData(data...)
}

// SetQueryIter configures the iterator returned for a statement.
func (m *MockSession) SetQueryIter(stmt string, iter *MockIter) {
	m.template(stmt).SetIter(iter)
}

func (m *MockSession) template(stmt string) *MockQuery {
	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.queries[stmt]
	if !ok {
		q = NewMockQuery(stmt)
		m.queries[stmt] = q
	}

	return q
}

func (m *MockSession) record(e ExecutedQuery) {
	m.mu.Lock()
	m.log = append(m.log, e)
	hook := m.OnQuery
	m.mu.Unlock()

	if hook != nil {
		hook(e.Statement, e.Values)
	}
}

// MockQuery is a mock implementation of cql.Query for testing.
type MockQuery struct {
	mu      sync.RWMutex
	stmt    string
	values  []any
	session *MockSession

	// Configuration
	consistency cql.Consistency
	pageSize    int

	// Return values
	execErr  error
	scanErr  error
	scanData []any
	iter     *MockIter
}

// Compile-time assertion that MockQuery implements cql.Query.
var _ cql.Query = (*MockQuery)(nil)

// NewMockQuery creates a new mock query.
func NewMockQuery(stmt string, values ...any) *MockQuery {
	return &MockQuery{
		stmt:   stmt,
		values: values,
	}
}

// Consistency sets the consistency level.
func (m *MockQuery) Consistency(c cql.Consistency) cql.Query {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.consistency = c

	return m
}

// PageSize sets the page size.
func (m *MockQuery) PageSize(n int) cql.Query {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pageSize = n

	return m
}

// ExecContext executes the query.
func (m *MockQuery) ExecContext(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.executed()

	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.execErr
}

// ScanContext scans a single row.
func (m *MockQuery) ScanContext(ctx context.Context, dest ...any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.executed()

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.execErr != nil {
		return m.execErr
	}
	if m.scanErr != nil {
		return m.scanErr
	}

	for i := 0; i < len(dest) && i < len(m.scanData); i++ {
		copyValue(dest[i], m.scanData[i])
	}

	return nil
}

// IterContext returns an iterator.
//
// A configured exec error is surfaced from the iterator's Close, the same
// way gocql reports query failures.
func (m *MockQuery) IterContext(ctx context.Context) cql.Iter {
	if err := ctx.Err(); err != nil {
		return NewMockIter().SetCloseError(err)
	}
	m.executed()

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.execErr != nil {
		return NewMockIter().SetCloseError(m.execErr)
	}
	if m.iter != nil {
		return m.iter.clone()
	}

	return NewMockIter()
}

// Statement returns the query statement.
func (m *MockQuery) Statement() string {
	return m.stmt
}

// Values returns the bound values.
func (m *MockQuery) Values() []any {
	return m.values
}

// Release counts the release on the owning session.
func (m *MockQuery) Release() {
	if m.session == nil {
		return
	}

	m.session.mu.Lock()
	m.session.released++
	m.session.mu.Unlock()
}

// SetExecError configures the error returned on execution.
func (m *MockQuery) SetExecError(err error) *MockQuery {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.execErr = err

	return m
}

// SetScanError configures the error returned by ScanContext.
func (m *MockQuery) SetScanError(err error) *MockQuery {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scanErr = err

	return m
}

// SetScanData configures the values copied into ScanContext destinations.
func (m *MockQuery) SetScanData(data ...any) *MockQuery {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.scanData = data

	return m
}

// SetIter configures the iterator returned by IterContext.
func (m *MockQuery) SetIter(iter *MockIter) *MockQuery {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.iter = iter

	return m
}

func (m *MockQuery) executed() {
	if m.session == nil {
		return
	}

	m.mu.RLock()
	e := ExecutedQuery{
		Statement:   m.stmt,
		Values:      m.values,
		Consistency: m.consistency,
		PageSize:    m.pageSize,
	}
	m.mu.RUnlock()

	m.session.record(e)
}

// MockIter is a mock implementation of cql.Iter for testing.
type MockIter struct {
	mu       sync.Mutex
	rows     [][]any
	mapRows  []map[string]any
	columns  []cql.ColumnInfo
	warnings []string
	index    int
	closeErr error
}

// Compile-time assertion that MockIter implements cql.Iter.
var _ cql.Iter = (*MockIter)(nil)

// NewMockIter creates a new mock iterator.
func NewMockIter() *MockIter {
	return &MockIter{}
}

// Scan reads the next positional row.
func (m *MockIter) Scan(dest ...any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index >= len(m.rows) {
		return false
	}

	row := m.rows[m.index]
	for i := 0; i < len(dest) && i < len(row); i++ {
		copyValue(dest[i], row[i])
	}
	m.index++

	return true
}

// MapScan reads the next map row.
func (m *MockIter) MapScan(dest map[string]any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.index >= len(m.mapRows) {
		return false
	}

	for k, v := range m.mapRows[m.index] {
		dest[k] = v
	}
	m.index++

	return true
}

// Close returns the configured close error.
func (m *MockIter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closeErr
}

// NumRows returns the number of configured rows.
func (m *MockIter) NumRows() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return max(len(m.rows), len(m.mapRows))
}

// Columns returns the configured column metadata.
func (m *MockIter) Columns() []cql.ColumnInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.columns
}

// Warnings returns the configured server warnings.
func (m *MockIter) Warnings() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.warnings
}

// AddRow adds a positional row to the iterator.
func (m *MockIter) AddRow(values ...any) *MockIter {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.rows = append(m.rows, values)

	return m
}

// AddMapRow adds a map row to the iterator.
func (m *MockIter) AddMapRow(row map[string]any) *MockIter {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.mapRows = append(m.mapRows, row)

	return m
}

// SetColumns sets the result column names in order.
func (m *MockIter) SetColumns(names ...string) *MockIter {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.columns = make([]cql.ColumnInfo, len(names))
	for i, n := range names {
		m.columns[i] = cql.ColumnInfo{Name: n}
	}

	return m
}

// SetWarnings sets the server warnings reported by the iterator.
func (m *MockIter) SetWarnings(warnings ...string) *MockIter {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.warnings = warnings

	return m
}

// SetCloseError configures the close error.
func (m *MockIter) SetCloseError(err error) *MockIter {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closeErr = err

	return m
}

// clone returns a fresh iterator over the same rows so a configured
// statement can be executed more than once.
func (m *MockIter) clone() *MockIter {
	m.mu.Lock()
	defer m.mu.Unlock()

	return &MockIter{
		rows:     m.rows,
		mapRows:  m.mapRows,
		columns:  m.columns,
		warnings: m.warnings,
		closeErr: m.closeErr,
	}
}

// MockConnector is a mock implementation of cql.Connector for testing.
type MockConnector struct {
	mu      sync.Mutex
	session cql.Session
	err     error
	calls   [][]string
}

// Compile-time assertion that MockConnector implements cql.Connector.
var _ cql.Connector = (*MockConnector)(nil)

// ErrMockUnreachable is returned by a MockConnector configured to fail.
var ErrMockUnreachable = errors.New("testutil: no hosts available")

// NewMockConnector creates a connector that hands out the given session.
func NewMockConnector(session cql.Session) *MockConnector {
	return &MockConnector{session: session}
}

// Connect returns the configured session or error.
func (m *MockConnector) Connect(ctx context.Context, nodes []string) (cql.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, nodes)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}

	return m.session, nil
}

// SetError configures Connect to fail with err.
func (m *MockConnector) SetError(err error) *MockConnector {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.err = err

	return m
}

// Calls returns the node lists passed to Connect.
func (m *MockConnector) Calls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([][]string, len(m.calls))
	copy(out, m.calls)

	return out
}

func copyValue(dest, src any) {
	switch d := dest.(type) {
	case *string:
		if s, ok := src.(string); ok {
			*d = s
		}
	case *int:
		if s, ok := src.(int); ok {
			*d = s
		}
	case *int64:
		if s, ok := src.(int64); ok {
			*d = s
		}
	case *float64:
		if s, ok := src.(float64); ok {
			*d = s
		}
	case *bool:
		if s, ok := src.(bool); ok {
			*d = s
		}
	case *[]byte:
		if s, ok := src.([]byte); ok {
			*d = s
		}
	case *[]string:
		if s, ok := src.([]string); ok {
			*d = s
		}
	}
}
