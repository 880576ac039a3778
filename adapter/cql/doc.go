// Package cql provides adapter interfaces and implementations for CQL (Cassandra Query Language)
// database drivers.
//
// This package defines the common interfaces that CQL driver adapters must implement,
// allowing cqlclient to work with different versions of gocql.
//
// # Interfaces
//
//   - Connector: Establishes a Session from a list of contact nodes
//   - Session: Wraps a database session for executing queries
//   - Query: Represents a CQL query with bind parameters
//   - Iter: Iterates over query results
//
// # Adapters
//
// Driver-specific adapters are provided in subpackages:
//
//   - [github.com/hkhamm/cqlclient/adapter/cql/v1]: Adapter for gocql v1.x
//   - [github.com/hkhamm/cqlclient/adapter/cql/v2]: Adapter for apache/cassandra-gocql-driver v2.x
//
// # Usage
//
//	connector := v1.NewConnector(v1.WithConsistency(cql.Quorum))
//	client, _ := cqlclient.NewQueryClient(connector)
//	if err := client.Connect(ctx, "127.0.0.1"); err != nil {
//	    log.Fatal(err)
//	}
package cql
