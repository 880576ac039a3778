// Package cql provides CQL-specific adapter interfaces for different gocql versions.
package cql

import (
	"context"

	"github.com/hkhamm/cqlclient/types"
)

// Consistency is re-exported from the types package for convenience.
type Consistency = types.Consistency

// Re-export consistency level constants for convenience.
const (
	Any         = types.Any
	One         = types.One
	Two         = types.Two
	Three       = types.Three
	Quorum      = types.Quorum
	All         = types.All
	LocalQuorum = types.LocalQuorum
	EachQuorum  = types.EachQuorum
	Serial      = types.Serial
	LocalSerial = types.LocalSerial
	LocalOne    = types.LocalOne
)

// Connector establishes sessions against a set of contact nodes.
//
// Implementations own the driver's cluster configuration (port, timeouts,
// authentication, consistency). The driver chooses the first reachable node.
type Connector interface {
	// Connect creates a session using the given contact nodes.
	//
	// Parameters:
	//   - ctx: Context checked before dialing
	//   - nodes: Host names or IP addresses, optionally with ":port"
	//
	// Returns:
	//   - Session: The established session
	//   - error: Error if no node is reachable or the handshake fails
	Connect(ctx context.Context, nodes []string) (Session, error)
}

// Session represents a raw CQL session from the underlying driver.
//
// This interface is implemented by adapters for gocql v1 and v2.
type Session interface {
	// Query creates a new query for the given statement.
	//
	// Parameters:
	//   - stmt: CQL statement with ? placeholders
	//   - values: Values to bind to placeholders
	//
	// Returns:
	//   - Query: A query builder
	Query(stmt string, values ...any) Query

	// Close terminates the session and all pooled connections.
	Close()
}

// Query represents a raw CQL query from the underlying driver.
type Query interface {
	// Consistency sets the consistency level.
	Consistency(c Consistency) Query

	// PageSize sets the page size.
	PageSize(n int) Query

	// ExecContext executes the query with context.
	ExecContext(ctx context.Context) error

	// ScanContext executes and scans a single row with context.
	ScanContext(ctx context.Context, dest ...any) error

	// IterContext returns an iterator for results with context.
	IterContext(ctx context.Context) Iter

	// Statement returns the CQL statement.
	Statement() string

	// Values returns the bound values.
	Values() []any

	// Release returns the query to a pool (if applicable).
	Release()
}

// Iter represents a raw CQL iterator from the underlying driver.
type Iter interface {
	// Scan reads the next row.
	Scan(dest ...any) bool

	// MapScan reads the next row into a map.
	MapScan(m map[string]any) bool

	// Close closes the iterator and returns any error from iteration.
	Close() error

	// NumRows returns the number of rows in the current page.
	NumRows() int

	// Columns returns metadata about the columns in the result set.
	Columns() []ColumnInfo

	// Warnings returns any warnings from the Cassandra server.
	Warnings() []string
}

// ColumnInfo holds metadata about a column in query results.
type ColumnInfo struct {
	Keyspace string
	Table    string
	Name     string
	TypeInfo any
}
