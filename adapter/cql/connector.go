package cql

import "time"

// ConnectorConfig holds the driver settings shared by the v1 and v2 connectors.
type ConnectorConfig struct {
	// Port is the native protocol port. Default: 9042
	Port int

	// Keyspace is the session's default keyspace. Empty means none.
	Keyspace string

	// Consistency is the default consistency for statements. Default: Quorum
	Consistency Consistency

	// Timeout bounds each request to a node. Default: 10s
	Timeout time.Duration

	// ConnectTimeout bounds the initial dial. Default: 10s
	ConnectTimeout time.Duration

	// DisableInitialHostLookup skips reading system.peers when connecting.
	DisableInitialHostLookup bool

	// Username and Password enable password authentication when Username is set.
	Username string
	Password string

	// CAPath enables TLS with the given CA bundle when set.
	CAPath string

	// HostVerification requires certificate host verification under TLS.
	HostVerification bool
}

// DefaultConnectorConfig returns a ConnectorConfig with the driver defaults used by cqlclient.
//
// Returns:
//   - ConnectorConfig: Default configuration
func DefaultConnectorConfig() ConnectorConfig {
	return ConnectorConfig{
		Port:             9042,
		Consistency:      Quorum,
		Timeout:          10 * time.Second,
		ConnectTimeout:   10 * time.Second,
		HostVerification: true,
	}
}

// ConnectorOption configures a ConnectorConfig.
type ConnectorOption func(*ConnectorConfig)

// WithPort sets the native protocol port.
func WithPort(port int) ConnectorOption {
	return func(c *ConnectorConfig) {
		c.Port = port
	}
}

// WithKeyspace sets the session's default keyspace.
func WithKeyspace(keyspace string) ConnectorOption {
	return func(c *ConnectorConfig) {
		c.Keyspace = keyspace
	}
}

// WithConsistency sets the default consistency level.
func WithConsistency(consistency Consistency) ConnectorOption {
	return func(c *ConnectorConfig) {
		c.Consistency = consistency
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) ConnectorOption {
	return func(c *ConnectorConfig) {
		c.Timeout = d
	}
}

// WithConnectTimeout sets the initial dial timeout.
func WithConnectTimeout(d time.Duration) ConnectorOption {
	return func(c *ConnectorConfig) {
		c.ConnectTimeout = d
	}
}

// WithDisableInitialHostLookup stops the driver from reading system.peers on connect.
//
// Useful when nodes are reachable only through addresses that differ from the
// ones they advertise (NAT, containers).
func WithDisableInitialHostLookup(disable bool) ConnectorOption {
	return func(c *ConnectorConfig) {
		c.DisableInitialHostLookup = disable
	}
}

// WithPasswordAuth enables password authentication.
func WithPasswordAuth(username, password string) ConnectorOption {
	return func(c *ConnectorConfig) {
		c.Username = username
		c.Password = password
	}
}

// WithTLS enables TLS using the given CA bundle.
//
// Parameters:
//   - caPath: Path to the CA certificate file
//   - verifyHost: Require certificate host verification
//
// Returns:
//   - ConnectorOption: Configuration option
func WithTLS(caPath string, verifyHost bool) ConnectorOption {
	return func(c *ConnectorConfig) {
		c.CAPath = caPath
		c.HostVerification = verifyHost
	}
}

// BuildConnectorConfig applies options over the defaults.
func BuildConnectorConfig(opts ...ConnectorOption) ConnectorConfig {
	cfg := DefaultConnectorConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
