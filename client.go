package cqlclient

import (
	"context"

	"github.com/hkhamm/cqlclient/types"
)

// Type aliases for convenience - re-export from types package.
type (
	Consistency      = types.Consistency
	StatementKind    = types.StatementKind
	Host             = types.Host
	ClusterInfo      = types.ClusterInfo
	Row              = types.Row
	ResultSet        = types.ResultSet
	JournalEntry     = types.JournalEntry
	Logger           = types.Logger
	MetricsCollector = types.MetricsCollector
)

// Re-export statement kinds for convenience.
const (
	KindCreateKeyspace = types.KindCreateKeyspace
	KindCreateTable    = types.KindCreateTable
	KindInsert         = types.KindInsert
	KindSelect         = types.KindSelect
	KindUpdate         = types.KindUpdate
	KindDropKeyspace   = types.KindDropKeyspace
	KindDropTable      = types.KindDropTable
)

// Journal records executed statements.
//
// Implementations must be safe for concurrent use: asynchronous queries
// record from their own goroutines.
type Journal interface {
	// Record stores one entry.
	//
	// Parameters:
	//   - ctx: Context bounding the write
	//   - entry: The executed statement
	//
	// Returns:
	//   - error: ErrJournalClosed after Close, or a storage error
	Record(ctx context.Context, entry types.JournalEntry) error

	// Close releases journal resources. Later Record calls fail.
	Close() error
}
