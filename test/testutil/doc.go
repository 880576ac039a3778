// Package testutil provides test utilities and mock implementations for cqlclient testing.
//
// # Mock Implementations
//
//   - [MockSession]: Mock implementation of cql.Session that logs executed statements
//   - [MockQuery]: Mock implementation of cql.Query
//   - [MockIter]: Mock implementation of cql.Iter with positional and map rows
//   - [MockConnector]: Mock implementation of cql.Connector
//   - [SlowSession]: Wraps a session and delays selected statements
//   - [TestMetricsCollector]: Records metrics calls for assertions
//
// # Usage
//
//	session := testutil.NewMockSession()
//	session.SetQueryIter(`SELECT * FROM simplex.songs;`,
//	    testutil.NewMockIter().
//	        SetColumns("title", "album", "artist").
//	        AddMapRow(map[string]any{"title": "La Petite Tonkinoise", ...}),
//	)
//
//	client, _ := cqlclient.NewQueryClient(testutil.NewMockConnector(session))
//
// # Integration Test Helpers
//
//   - [StartEmbeddedNATS]: Starts an embedded NATS server for journal testing
//   - [StartCQLCluster]: Starts a Cassandra or ScyllaDB test container (requires Docker)
package testutil
