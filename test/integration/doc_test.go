// Package integration_test runs the client against a real Cassandra (or
// ScyllaDB) container started with testcontainers-go.
//
// The tests are skipped with -short or when SKIP_INTEGRATION_TESTS=1. Set
// CQLCLIENT_TEST_SCYLLA=1 to try ScyllaDB first.
//
//	go test ./test/integration/...
package integration_test
