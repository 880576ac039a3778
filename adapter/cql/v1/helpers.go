package v1

import (
	"github.com/gocql/gocql"

	"github.com/hkhamm/cqlclient/adapter/cql"
)

// ToGocqlConsistency converts a cqlclient Consistency to gocql.Consistency.
//
// Example:
//
//	cluster := gocql.NewCluster("127.0.0.1")
//	cluster.Consistency = v1.ToGocqlConsistency(cql.Quorum)
func ToGocqlConsistency(c cql.Consistency) gocql.Consistency {
	return gocql.Consistency(c)
}

// FromGocqlConsistency converts a gocql.Consistency to cqlclient Consistency.
func FromGocqlConsistency(c gocql.Consistency) cql.Consistency {
	return cql.Consistency(c)
}

// UnwrapSession returns the underlying gocql.Session from a Session adapter.
//
// Example:
//
//	gocqlSession := v1.UnwrapSession(session)
//	keyspaceMeta, _ := gocqlSession.KeyspaceMetadata("simplex")
func UnwrapSession(s *Session) *gocql.Session {
	return s.session
}
