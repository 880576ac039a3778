// Package types provides shared types and errors for the cqlclient library.
//
// This is a "leaf" package with no imports from other cqlclient packages,
// allowing it to be imported by any package without causing import cycles.
package types

import (
	"errors"
	"strings"
	"time"
)

// Consistency represents the Cassandra consistency level.
type Consistency uint16

// Common consistency levels matching gocql.
const (
	Any         Consistency = 0x00
	One         Consistency = 0x01
	Two         Consistency = 0x02
	Three       Consistency = 0x03
	Quorum      Consistency = 0x04
	All         Consistency = 0x05
	LocalQuorum Consistency = 0x06
	EachQuorum  Consistency = 0x07
	Serial      Consistency = 0x08
	LocalSerial Consistency = 0x09
	LocalOne    Consistency = 0x0A
)

var consistencyNames = map[Consistency]string{
	Any:         "ANY",
	One:         "ONE",
	Two:         "TWO",
	Three:       "THREE",
	Quorum:      "QUORUM",
	All:         "ALL",
	LocalQuorum: "LOCAL_QUORUM",
	EachQuorum:  "EACH_QUORUM",
	Serial:      "SERIAL",
	LocalSerial: "LOCAL_SERIAL",
	LocalOne:    "LOCAL_ONE",
}

// String returns the CQL name of the consistency level.
func (c Consistency) String() string {
	if name, ok := consistencyNames[c]; ok {
		return name
	}

	return "UNKNOWN"
}

// ParseConsistency parses a consistency name such as "quorum" or "LOCAL_ONE".
//
// Parameters:
//   - s: Consistency name (case-insensitive)
//
// Returns:
//   - Consistency: The parsed level
//   - error: ErrInvalidConsistency if the name is unknown
func ParseConsistency(s string) (Consistency, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for c, n := range consistencyNames {
		if n == name {
			return c, nil
		}
	}

	return 0, errors.Join(ErrInvalidConsistency, errors.New("cqlclient: unknown consistency "+s))
}

// StatementKind classifies an executed statement for logs, metrics and the journal.
type StatementKind string

const (
	KindCreateKeyspace StatementKind = "create_keyspace"
	KindCreateTable    StatementKind = "create_table"
	KindInsert         StatementKind = "insert"
	KindSelect         StatementKind = "select"
	KindUpdate         StatementKind = "update"
	KindDropKeyspace   StatementKind = "drop_keyspace"
	KindDropTable      StatementKind = "drop_table"
	KindDiscovery      StatementKind = "discovery"
)

// String returns the string representation of the StatementKind.
func (k StatementKind) String() string {
	return string(k)
}

// Host describes one node discovered at connect time.
type Host struct {
	Datacenter string
	Address    string
	Rack       string
}

// ClusterInfo is the topology recorded when a session is established.
type ClusterInfo struct {
	// Name is the cluster_name reported by the coordinator.
	Name string

	// Hosts lists the coordinator followed by its peers.
	Hosts []Host
}

// Row is one result row keyed by column name.
type Row map[string]any

// ResultSet holds the rows returned by a SELECT.
type ResultSet struct {
	// Columns lists the column names in result order.
	Columns []string

	// Rows holds the result rows.
	Rows []Row
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}

	return len(rs.Rows)
}

// HasColumn reports whether the result set carries the named column.
func (rs *ResultSet) HasColumn(name string) bool {
	if rs == nil {
		return false
	}
	for _, c := range rs.Columns {
		if c == name {
			return true
		}
	}

	return false
}

// JournalEntry records one executed statement.
type JournalEntry struct {
	// ID uniquely identifies the entry (16 bytes, RFC 4122 layout).
	ID [16]byte

	// Kind classifies the statement.
	Kind StatementKind

	// Statement is the CQL text with bind markers.
	Statement string

	// Args are the bound values.
	Args []any

	// Timestamp is when execution started.
	Timestamp time.Time

	// Duration is how long execution took.
	Duration time.Duration

	// Error holds the failure message, empty on success.
	Error string
}

// Failed reports whether the journaled statement failed.
func (e JournalEntry) Failed() bool {
	return e.Error != ""
}

// Sentinel errors for common failure scenarios.
var (
	// ErrNotConnected indicates a statement or Close was attempted without a session.
	ErrNotConnected = errors.New("cqlclient: not connected")

	// ErrAlreadyConnected indicates Connect was called while a session is held.
	ErrAlreadyConnected = errors.New("cqlclient: already connected")

	// ErrNoNodes indicates Connect was called with an empty node list.
	ErrNoNodes = errors.New("cqlclient: no contact nodes given")

	// ErrNilConnector indicates that a nil connector was provided.
	ErrNilConnector = errors.New("cqlclient: connector cannot be nil")

	// ErrNilSession indicates that a connector returned a nil session.
	ErrNilSession = errors.New("cqlclient: session cannot be nil")

	// ErrInvalidIdentifier indicates a keyspace, table or column name failed validation.
	ErrInvalidIdentifier = errors.New("cqlclient: invalid identifier")

	// ErrInvalidType indicates a column type failed validation.
	ErrInvalidType = errors.New("cqlclient: invalid column type")

	// ErrInvalidStatement indicates the statement arguments are inconsistent.
	ErrInvalidStatement = errors.New("cqlclient: invalid statement")

	// ErrInvalidConsistency indicates an unknown consistency name.
	ErrInvalidConsistency = errors.New("cqlclient: invalid consistency")

	// ErrSchemaMismatch indicates a result set lacks the columns a report needs.
	ErrSchemaMismatch = errors.New("cqlclient: result schema mismatch")

	// ErrJournalClosed indicates a record was attempted on a closed journal.
	ErrJournalClosed = errors.New("cqlclient: journal is closed")
)

// StatementError wraps a driver fault raised while executing a statement.
type StatementError struct {
	// Kind classifies the failed statement.
	Kind StatementKind

	// Statement is the CQL text that failed.
	Statement string

	// Cause is the underlying driver error.
	Cause error
}

// Error implements the error interface.
func (e *StatementError) Error() string {
	return "cqlclient: " + string(e.Kind) + " failed: " + e.Cause.Error()
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *StatementError) Unwrap() error {
	return e.Cause
}

// SchemaMismatchError reports which columns a result set was missing.
type SchemaMismatchError struct {
	// Missing lists the required columns not present (or not text).
	Missing []string
}

// Error implements the error interface.
func (e *SchemaMismatchError) Error() string {
	return "cqlclient: result schema mismatch, missing text columns: " + strings.Join(e.Missing, ", ")
}

// Unwrap returns ErrSchemaMismatch so callers can use errors.Is.
func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}
