// Package v1 provides an adapter for gocql v1.x to work with cqlclient.
//
// It wraps gocql sessions, queries and iterators to implement the cql
// interfaces, and supplies a Connector that turns contact nodes into a session.
//
// # Usage
//
//	connector := v1.NewConnector(
//	    cql.WithConsistency(cql.Quorum),
//	    cql.WithTimeout(10*time.Second),
//	)
//	client, err := cqlclient.NewQueryClient(connector)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = client.Connect(ctx, "127.0.0.1")
//
// # Thread Safety
//
// All adapter types are safe for concurrent use, matching gocql's thread safety guarantees.
package v1
