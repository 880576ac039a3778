// Package types provides shared types and error definitions for the cqlclient library.
//
// This is a leaf package with zero cqlclient imports to prevent import cycles.
// All packages in cqlclient can safely import this package.
//
// # Types
//
// Consistency levels mirror gocql consistency levels:
//
//	const (
//	    Any         Consistency = 0x00
//	    One         Consistency = 0x01
//	    Quorum      Consistency = 0x04
//	    LocalQuorum Consistency = 0x06
//	    LocalOne    Consistency = 0x0A
//	)
//
// ResultSet carries the rows of a SELECT keyed by column name, and
// ClusterInfo carries the topology discovered at connect time.
//
// # Errors
//
// Sentinel errors are provided for common failure scenarios:
//
//   - ErrNotConnected: A statement or Close was issued without a session
//   - ErrAlreadyConnected: Connect was called twice
//   - ErrInvalidIdentifier: A keyspace, table or column name was rejected
//   - ErrSchemaMismatch: A result set lacks the columns a report needs
//
// Driver faults are wrapped in StatementError, which supports errors.Is/As.
package types
