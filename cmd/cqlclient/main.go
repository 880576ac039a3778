// Command cqlclient runs the songs and playlists demo against a Cassandra
// cluster: it creates a keyspace and two tables, loads a song, queries it back,
// updates it and drops the keyspace again.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/hkhamm/cqlclient"
	"github.com/hkhamm/cqlclient/adapter/cql"
	v1 "github.com/hkhamm/cqlclient/adapter/cql/v1"
	v2 "github.com/hkhamm/cqlclient/adapter/cql/v2"
	"github.com/hkhamm/cqlclient/contrib/metrics/vm"
	"github.com/hkhamm/cqlclient/internal/config"
	"github.com/hkhamm/cqlclient/internal/logging"
	"github.com/hkhamm/cqlclient/journal"
)

const songColumns = `
	id uuid PRIMARY KEY,
	title text,
	album text,
	artist text,
	tags set<text>
`

var (
	songID     = uuid.MustParse("756716f7-2e54-4715-9f00-91dcbea6cf50")
	playlistID = uuid.MustParse("2cc9ccb7-6221-4ccb-8387-f22b6a1b354d")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "cqlclient:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	nodes := flag.String("nodes", "", "Comma-separated contact nodes (default 127.0.0.1)")
	driver := flag.String("driver", "", "Driver generation: v1 (gocql) or v2 (cassandra-gocql-driver)")
	keyspace := flag.String("keyspace", "", "Demo keyspace (default simplex)")
	rf := flag.Int("rf", 0, "Replication factor (default 3)")
	logLevel := flag.String("log-level", "", "Log level: debug, info, warn, error")
	journalURL := flag.String("journal-url", "", "NATS URL for the statement journal (optional)")
	dumpMetrics := flag.Bool("metrics", false, "Print Prometheus metrics on exit")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}

	// Flags set explicitly override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "nodes":
			cfg.Cluster.Nodes = strings.Split(*nodes, ",")
		case "driver":
			cfg.Cluster.Driver = *driver
		case "keyspace":
			cfg.Demo.Keyspace = *keyspace
		case "rf":
			cfg.Demo.ReplicationFactor = *rf
		case "log-level":
			cfg.Log.Level = *logLevel
		case "journal-url":
			cfg.Journal.URL = *journalURL
		case "metrics":
			cfg.Metrics.Dump = *dumpMetrics
		}
	})
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.NewConsoleLogger(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	j, closeJournal, err := openJournal(cfg)
	if err != nil {
		logger.Error("failed to open journal", "url", cfg.Journal.URL, "error", err)
		return err
	}
	defer closeJournal()

	collector := vm.New(vm.WithPrefix(cfg.Metrics.Prefix))

	client, err := cqlclient.NewQueryClient(newConnector(cfg),
		cqlclient.WithLogger(logger),
		cqlclient.WithMetrics(collector),
		cqlclient.WithJournal(j),
		cqlclient.WithStatementTimeout(cfg.Demo.StatementTimeout),
	)
	if err != nil {
		return err
	}

	if err := client.Connect(ctx, cfg.Cluster.Nodes...); err != nil {
		logger.Error("failed to connect", "nodes", cfg.Cluster.Nodes, "error", err)
		return err
	}

	demoErr := runDemo(ctx, client, cfg)
	if demoErr != nil {
		logger.Error("demo aborted", "error", demoErr)
	}
	if err := client.Close(); err != nil {
		logger.Error("failed to close connection", "error", err)
	}

	if mem, ok := j.(*journal.Memory); ok {
		logger.Info("statements journaled", "count", mem.Total())
	}
	if cfg.Metrics.Dump {
		collector.WritePrometheus(os.Stdout)
	}

	return demoErr
}

func runDemo(ctx context.Context, client *cqlclient.QueryClient, cfg *config.Config) error {
	ks := cfg.Demo.Keyspace
	songs := ks + ".songs"
	playlists := ks + ".playlists"

	repl := cqlclient.Replication{Class: cfg.Demo.Strategy, Factor: cfg.Demo.ReplicationFactor}
	if err := client.CreateKeyspace(ctx, ks, repl); err != nil {
		return err
	}

	songSchema, err := cqlclient.ParseColumnDefinitions(songColumns)
	if err != nil {
		return err
	}
	if err := client.CreateTable(ctx, songs, songSchema); err != nil {
		return err
	}

	playlistSchema := cqlclient.TableSchema{
		Columns: []cqlclient.ColumnDef{
			{Name: "id", Type: "uuid"},
			{Name: "title", Type: "text"},
			{Name: "album", Type: "text"},
			{Name: "artist", Type: "text"},
			{Name: "song_id", Type: "uuid"},
		},
		PartitionKey:  []string{"id"},
		ClusteringKey: []string{"title", "album", "artist"},
	}
	if err := client.CreateTable(ctx, playlists, playlistSchema); err != nil {
		return err
	}

	err = client.InsertRow(ctx, songs,
		[]string{"id", "title", "album", "artist", "tags"},
		[]any{[16]byte(songID), "La Petite Tonkinoise", "Bye Bye Blackbird", "Joséphine Baker", []string{"jazz", "2013"}},
	)
	if err != nil {
		return err
	}
	err = client.InsertRow(ctx, playlists,
		[]string{"id", "song_id", "title", "album", "artist"},
		[]any{[16]byte(playlistID), [16]byte(songID), "La Petite Tonkinoise", "Bye Bye Blackbird", "Joséphine Baker"},
	)
	if err != nil {
		return err
	}

	// Both queries run concurrently. Waiting on them keeps the drop below
	// from overtaking either.
	futures := []*cqlclient.QueryFuture{
		client.QueryTable(ctx, songs),
		client.QueryTable(ctx, playlists, cqlclient.Eq("id", [16]byte(playlistID))),
	}
	for _, f := range futures {
		rs, err := f.Wait(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			client.ReportErrors(err)
			continue
		}
		if err := client.ReportResults(rs); err != nil {
			client.ReportErrors(err)
		}
	}

	err = client.UpdateRow(ctx, songs,
		[]cqlclient.Assignment{cqlclient.Set("tags", []string{"jazz", "2013", "chanson"})},
		[]cqlclient.Predicate{cqlclient.Eq("id", [16]byte(songID))},
	)
	if err != nil {
		return err
	}

	return client.DropKeyspace(ctx, ks)
}

func newConnector(cfg *config.Config) cql.Connector {
	opts := []cql.ConnectorOption{
		cql.WithPort(cfg.Cluster.Port),
		cql.WithConsistency(cfg.Consistency()),
		cql.WithTimeout(cfg.Cluster.Timeout),
		cql.WithConnectTimeout(cfg.Cluster.ConnectTimeout),
	}
	if cfg.Cluster.Username != "" {
		opts = append(opts, cql.WithPasswordAuth(cfg.Cluster.Username, cfg.Cluster.Password))
	}
	if cfg.Cluster.CAPath != "" {
		opts = append(opts, cql.WithTLS(cfg.Cluster.CAPath, true))
	}

	if cfg.Cluster.Driver == "v2" {
		return v2.NewConnector(opts...)
	}

	return v1.NewConnector(opts...)
}

// openJournal returns a NATS journal when a URL is configured and an
// in-memory one otherwise. The returned func closes the journal and its
// connection.
func openJournal(cfg *config.Config) (cqlclient.Journal, func(), error) {
	if cfg.Journal.URL == "" {
		mem := journal.NewMemory()
		return mem, func() { _ = mem.Close() }, nil
	}

	nc, err := nats.Connect(cfg.Journal.URL, nats.Name("cqlclient"))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	j, err := journal.NewNATS(js, journal.WithStreamName(cfg.Journal.Stream))
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	return j, func() {
		_ = j.Close()
		nc.Close()
	}, nil
}
