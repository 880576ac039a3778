package v2

import (
	"context"
	"fmt"

	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"github.com/hkhamm/cqlclient/adapter/cql"
)

// Connector creates sessions with the Apache gocql v2 driver.
type Connector struct {
	config cql.ConnectorConfig
}

// Compile-time assertion that Connector implements cql.Connector.
var _ cql.Connector = (*Connector)(nil)

// NewConnector creates a connector for gocql v2.
func NewConnector(opts ...cql.ConnectorOption) *Connector {
	return &Connector{config: cql.BuildConnectorConfig(opts...)}
}

// Config returns the connector's resolved configuration.
func (c *Connector) Config() cql.ConnectorConfig {
	return c.config
}

// Connect creates a session using the given contact nodes.
func (c *Connector) Connect(ctx context.Context, nodes []string) (cql.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := c.ClusterConfig(nodes).CreateSession()
	if err != nil {
		return nil, fmt.Errorf("cqlclient: failed to create gocql v2 session: %w", err)
	}

	return NewSession(session), nil
}

// ClusterConfig builds the gocql v2 cluster configuration for the given nodes.
func (c *Connector) ClusterConfig(nodes []string) *gocql.ClusterConfig {
	cluster := gocql.NewCluster(nodes...)
	cluster.Port = c.config.Port
	cluster.Keyspace = c.config.Keyspace
	cluster.Consistency = gocql.Consistency(c.config.Consistency)
	cluster.Timeout = c.config.Timeout
	cluster.ConnectTimeout = c.config.ConnectTimeout
	cluster.DisableInitialHostLookup = c.config.DisableInitialHostLookup

	if c.config.CAPath != "" {
		cluster.SslOpts = &gocql.SslOptions{
			CaPath:                 c.config.CAPath,
			EnableHostVerification: c.config.HostVerification,
		}
	}
	if c.config.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: c.config.Username,
			Password: c.config.Password,
		}
	}

	return cluster
}
