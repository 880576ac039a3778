// Package v2 provides an adapter for gocql v2 (github.com/apache/cassandra-gocql-driver).
//
// Use it when the application already depends on the Apache driver:
//
//	connector := v2.NewConnector(cql.WithConsistency(cql.LocalQuorum))
//	client, _ := cqlclient.NewQueryClient(connector)
//
// The v2 driver has no query pooling, so Query.Release is a no-op.
package v2
