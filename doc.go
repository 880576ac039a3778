// Package cqlclient provides a small CQL client for Cassandra that issues
// keyspace and table DDL, inserts, selects, updates and drops through a
// third-party driver and prints song listings to a console.
//
// Cluster discovery, connection pooling, retries and the wire protocol stay
// inside the driver. The driver is reached through the adapter/cql
// interfaces, with one adapter per driver generation:
//
//   - adapter/cql/v1: github.com/gocql/gocql
//   - adapter/cql/v2: github.com/apache/cassandra-gocql-driver/v2
//
// # Basic Usage
//
//	client, err := cqlclient.NewQueryClient(v1.NewConnector(),
//	    cqlclient.WithLogger(logger),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := client.Connect(ctx, "127.0.0.1"); err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.CreateKeyspace(ctx, "simplex", cqlclient.SimpleStrategy(3))
//	err = client.InsertRow(ctx, "simplex.songs",
//	    []string{"id", "title"}, []any{id, "La Petite Tonkinoise"})
//
//	rs, err := client.QueryTable(ctx, "simplex.songs").Wait(ctx)
//	if err != nil {
//	    client.ReportErrors(err)
//	} else if err := client.ReportResults(rs); err != nil {
//	    client.ReportErrors(err)
//	}
//
// # Statements
//
// Statements are always built from validated identifiers and bind markers.
// Values are never interpolated into the statement text. Keyspace, table and
// column names must match [A-Za-z][A-Za-z0-9_]{0,47}. They are folded to
// lower case like unquoted CQL names, and reserved words such as "order" are
// quoted. Column types are checked against the CQL type grammar. INSERT,
// SELECT and UPDATE text is rendered with github.com/scylladb/gocqlx/v2/qb.
//
// # Asynchronous Queries
//
// QueryTable returns a *QueryFuture immediately. The caller either waits on
// it, registers OnComplete callbacks, or calls Ignore. Futures have no
// ordering between each other or against later statements: a DropKeyspace
// issued before an outstanding query completes may run first. The client
// logs a warning when that happens. Close waits for every outstanding query.
//
// # Error Handling
//
// Sentinel errors live in the types package:
//
//   - types.ErrNotConnected: statement or Close without a session
//   - types.ErrAlreadyConnected: Connect while connected
//   - types.ErrNoNodes: Connect with no contact nodes
//   - types.ErrInvalidIdentifier, types.ErrInvalidType, types.ErrInvalidStatement:
//     a statement was rejected before reaching the driver
//   - types.ErrSchemaMismatch: ReportResults got rows without text
//     title/album/artist columns
//
// Driver failures are wrapped in *types.StatementError, which carries the
// statement kind and text:
//
//	var stmtErr *types.StatementError
//	if errors.As(err, &stmtErr) {
//	    log.Printf("%s failed: %v", stmtErr.Kind, stmtErr.Cause)
//	}
//
// # Journal
//
// WithJournal records every executed statement. The journal package provides
// a bounded in-memory ring and a NATS JetStream journal. Journal failures are
// logged and counted but never fail the statement.
package cqlclient
