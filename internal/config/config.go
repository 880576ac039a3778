// Package config loads the cqlclient command's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hkhamm/cqlclient/types"
)

// Config represents the command configuration.
type Config struct {
	Cluster ClusterConfig `yaml:"cluster"`
	Demo    DemoConfig    `yaml:"demo"`
	Log     LogConfig     `yaml:"log"`
	Journal JournalConfig `yaml:"journal"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type ClusterConfig struct {
	Nodes          []string      `yaml:"nodes"`
	Port           int           `yaml:"port"`
	Driver         string        `yaml:"driver"` // v1 | v2
	Consistency    string        `yaml:"consistency"`
	Timeout        time.Duration `yaml:"timeout"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	Username       string        `yaml:"username"`
	Password       string        `yaml:"password"`
	CAPath         string        `yaml:"ca_path"`
}

type DemoConfig struct {
	Keyspace          string        `yaml:"keyspace"`
	Strategy          string        `yaml:"strategy"`
	ReplicationFactor int           `yaml:"replication_factor"`
	StatementTimeout  time.Duration `yaml:"statement_timeout"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type JournalConfig struct {
	URL    string `yaml:"url"` // NATS URL; empty keeps the journal in memory
	Stream string `yaml:"stream"`
}

type MetricsConfig struct {
	Dump   bool   `yaml:"dump"`
	Prefix string `yaml:"prefix"`
}

// Default returns the configuration of the built-in demo.
func Default() *Config {
	return &Config{
		Cluster: ClusterConfig{
			Nodes:          []string{"127.0.0.1"},
			Port:           9042,
			Driver:         "v1",
			Consistency:    "quorum",
			Timeout:        10 * time.Second,
			ConnectTimeout: 10 * time.Second,
		},
		Demo: DemoConfig{
			Keyspace:          "simplex",
			Strategy:          "SimpleStrategy",
			ReplicationFactor: 3,
		},
		Log: LogConfig{
			Level: "info",
		},
		Journal: JournalConfig{
			Stream: "cqlclient-journal",
		},
		Metrics: MetricsConfig{
			Prefix: "cqlclient",
		},
	}
}

// Load reads configuration from a YAML file.
//
// Fields absent from the file keep their Default values.
//
// Parameters:
//   - path: Path to the YAML file
//
// Returns:
//   - *Config: The merged, validated configuration
//   - error: Read, parse or validation error
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the command cannot use.
func (c *Config) Validate() error {
	var errs []error

	if len(c.Cluster.Nodes) == 0 {
		errs = append(errs, errors.New("cluster.nodes must not be empty"))
	}
	if c.Cluster.Port <= 0 || c.Cluster.Port > 65535 {
		errs = append(errs, fmt.Errorf("cluster.port %d out of range", c.Cluster.Port))
	}
	if c.Cluster.Driver != "v1" && c.Cluster.Driver != "v2" {
		errs = append(errs, fmt.Errorf("cluster.driver %q must be v1 or v2", c.Cluster.Driver))
	}
	if _, err := types.ParseConsistency(c.Cluster.Consistency); err != nil {
		errs = append(errs, fmt.Errorf("cluster.consistency: %w", err))
	}
	if c.Demo.Keyspace == "" {
		errs = append(errs, errors.New("demo.keyspace must not be empty"))
	}
	if c.Demo.ReplicationFactor < 1 {
		errs = append(errs, fmt.Errorf("demo.replication_factor %d must be at least 1", c.Demo.ReplicationFactor))
	}
	if c.Demo.StatementTimeout < 0 {
		errs = append(errs, errors.New("demo.statement_timeout must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}

	return nil
}

// Consistency returns the parsed cluster consistency level.
func (c *Config) Consistency() types.Consistency {
	cl, err := types.ParseConsistency(c.Cluster.Consistency)
	if err != nil {
		return types.Quorum
	}

	return cl
}
