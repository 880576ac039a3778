package cqlclient

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hkhamm/cqlclient/adapter/cql"
	"github.com/hkhamm/cqlclient/internal/logging"
	"github.com/hkhamm/cqlclient/journal"
	"github.com/hkhamm/cqlclient/test/testutil"
	"github.com/hkhamm/cqlclient/topology"
	"github.com/hkhamm/cqlclient/types"
)

const (
	songsSelect  = "SELECT * FROM simplex.songs;"
	dropSimplex  = "DROP KEYSPACE IF EXISTS simplex;"
	dropWarnMsg  = "dropping keyspace while asynchronous queries are in flight"
	songsInsert  = "INSERT INTO simplex.songs (id,title,album,artist,tags) VALUES (?,?,?,?,?);"
	songsUpdate  = "UPDATE simplex.songs SET album=? WHERE id=?;"
	createSimple = "CREATE KEYSPACE IF NOT EXISTS simplex WITH replication = {'class': 'SimpleStrategy', 'replication_factor': 1};"
)

var songInsertColumns = []string{"id", "title", "album", "artist", "tags"}

// newClusterSession returns a mock session that answers topology discovery
// for a three node cluster.
func newClusterSession() *testutil.MockSession {
	session := testutil.NewMockSession()
	session.SetQueryScan(topology.LocalStatement, "Test Cluster", "dc1", "rack1", "10.0.0.1", "10.0.0.1")
	session.SetQueryIter(topology.PeersStatement, testutil.NewMockIter().
		AddRow("10.0.0.2", "dc1", "rack1", "10.0.0.2").
		AddRow("10.0.0.3", "dc2", "rack1", "10.0.0.3"),
	)

	return session
}

func newObservedLogger(level zapcore.Level) (types.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)

	return logging.NewZapLogger(zap.New(core)), logs
}

// connectedClient returns a client connected through a connector that hands
// out session.
func connectedClient(t *testing.T, session cql.Session, opts ...Option) *QueryClient {
	t.Helper()

	client, err := NewQueryClient(testutil.NewMockConnector(session), opts...)
	require.NoError(t, err)
	require.NoError(t, client.Connect(t.Context(), "127.0.0.1"))

	return client
}

// userStatements returns the executed statements without topology discovery.
func userStatements(session *testutil.MockSession) []string {
	return slices.DeleteFunc(session.ExecutedStatements(), func(s string) bool {
		return s == topology.LocalStatement || s == topology.PeersStatement
	})
}

func TestNewQueryClientNilConnector(t *testing.T) {
	client, err := NewQueryClient(nil)
	require.ErrorIs(t, err, types.ErrNilConnector)
	require.Nil(t, client)
}

func TestNewQueryClientNilOptions(t *testing.T) {
	client, err := NewQueryClient(testutil.NewMockConnector(testutil.NewMockSession()),
		WithLogger(nil),
		WithMetrics(nil),
		WithOutput(nil),
		WithJournalTimeout(0),
	)
	require.NoError(t, err)
	assert.NotNil(t, client.config.Logger)
	assert.NotNil(t, client.config.Metrics)
	assert.NotNil(t, client.config.Output)
	assert.Equal(t, DefaultJournalTimeout, client.config.JournalTimeout)
}

// Connect, build the schema, load and read back a song, update it and drop
// everything.
func TestQueryClientDemoFlow(t *testing.T) {
	ctx := t.Context()
	id := uuid.MustParse("756716f7-2e54-4715-9f00-91dcbea6cf50")

	session := newClusterSession()
	session.SetQueryIter(songsSelect, testutil.NewMockIter().
		SetColumns(songInsertColumns...).
		AddMapRow(map[string]any{
			"id":     [16]byte(id),
			"title":  "La Petite Tonkinoise",
			"album":  "Bye Bye Blackbird",
			"artist": "Joséphine Baker",
			"tags":   []string{"jazz", "2013"},
		}),
	)

	var out bytes.Buffer
	client := connectedClient(t, session, WithOutput(&out))

	require.NoError(t, client.CreateKeyspace(ctx, "simplex", SimpleStrategy(1)))

	schema, err := ParseColumnDefinitions(songColumns)
	require.NoError(t, err)
	require.NoError(t, client.CreateTable(ctx, "simplex.songs", schema))

	values := []any{[16]byte(id), "La Petite Tonkinoise", "Bye Bye Blackbird", "Joséphine Baker", []string{"jazz", "2013"}}
	require.NoError(t, client.InsertRow(ctx, "simplex.songs", songInsertColumns, values))

	rs, err := client.QueryTable(ctx, "simplex.songs").Wait(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, songInsertColumns, rs.Columns)
	require.NoError(t, client.ReportResults(rs))
	assert.Contains(t, out.String(), "La Petite Tonkinoise")
	assert.Contains(t, out.String(), "Joséphine Baker")

	require.NoError(t, client.UpdateRow(ctx, "simplex.songs",
		[]Assignment{Set("album", "Bye Bye Blackbird (Remastered)")},
		[]Predicate{Eq("id", [16]byte(id))},
	))
	require.NoError(t, client.DropKeyspace(ctx, "simplex"))
	require.NoError(t, client.Close())

	assert.Equal(t, []string{
		createSimple,
		"CREATE TABLE IF NOT EXISTS simplex.songs (id uuid PRIMARY KEY, title text, album text, artist text, tags set<text>);",
		songsInsert,
		songsSelect,
		songsUpdate,
		dropSimplex,
	}, userStatements(session))

	executed := session.Executed()
	for _, e := range executed {
		switch e.Statement {
		case songsInsert:
			assert.Equal(t, values, e.Values)
		case songsUpdate:
			assert.Equal(t, []any{"Bye Bye Blackbird (Remastered)", [16]byte(id)}, e.Values)
		}
	}
	assert.True(t, session.IsClosed())
}

func TestQueryClientConnect(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.InfoLevel)
	metrics := testutil.NewTestMetricsCollector()
	connector := testutil.NewMockConnector(newClusterSession())

	client, err := NewQueryClient(connector, WithLogger(logger), WithMetrics(metrics))
	require.NoError(t, err)

	require.NoError(t, client.Connect(t.Context(), "", "127.0.0.1", "127.0.0.2"))
	assert.Equal(t, [][]string{{"127.0.0.1", "127.0.0.2"}}, connector.Calls())

	info := client.ClusterInfo()
	assert.Equal(t, "Test Cluster", info.Name)
	require.Len(t, info.Hosts, 3)
	assert.Equal(t, types.Host{Datacenter: "dc2", Address: "10.0.0.3", Rack: "rack1"}, info.Hosts[2])

	connected := logs.FilterMessage("connected to cluster").All()
	require.Len(t, connected, 1)
	assert.Equal(t, "Test Cluster", connected[0].ContextMap()["cluster"])
	assert.Len(t, logs.FilterMessage("discovered host").All(), 3)

	total, errs := metrics.GetConnectTotal()
	assert.Equal(t, int64(1), total)
	assert.Zero(t, errs)
	assert.Equal(t, 3, metrics.GetConnectedHosts())
}

func TestQueryClientClusterInfoIsCopy(t *testing.T) {
	client := connectedClient(t, newClusterSession())
	defer client.Close()

	info := client.ClusterInfo()
	info.Hosts[0].Address = "tampered"

	assert.Equal(t, "10.0.0.1", client.ClusterInfo().Hosts[0].Address)
}

func TestQueryClientConnectNoNodes(t *testing.T) {
	connector := testutil.NewMockConnector(testutil.NewMockSession())
	client, err := NewQueryClient(connector)
	require.NoError(t, err)

	require.ErrorIs(t, client.Connect(t.Context()), types.ErrNoNodes)
	require.ErrorIs(t, client.Connect(t.Context(), "", ""), types.ErrNoNodes)
	assert.Empty(t, connector.Calls())
}

func TestQueryClientConnectUnreachable(t *testing.T) {
	metrics := testutil.NewTestMetricsCollector()
	connector := testutil.NewMockConnector(nil).SetError(testutil.ErrMockUnreachable)

	client, err := NewQueryClient(connector, WithMetrics(metrics))
	require.NoError(t, err)

	err = client.Connect(t.Context(), "10.255.255.1")
	require.ErrorIs(t, err, testutil.ErrMockUnreachable)
	assert.Contains(t, err.Error(), "10.255.255.1")

	total, errs := metrics.GetConnectTotal()
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), errs)

	// Nothing to close after a failed connect.
	require.ErrorIs(t, client.Close(), types.ErrNotConnected)
}

func TestQueryClientConnectNilSession(t *testing.T) {
	client, err := NewQueryClient(testutil.NewMockConnector(nil))
	require.NoError(t, err)

	require.ErrorIs(t, client.Connect(t.Context(), "127.0.0.1"), types.ErrNilSession)
}

func TestQueryClientConnectTwice(t *testing.T) {
	client := connectedClient(t, newClusterSession())
	defer client.Close()

	require.ErrorIs(t, client.Connect(t.Context(), "127.0.0.1"), types.ErrAlreadyConnected)
}

func TestQueryClientDiscoveryFailureDoesNotFailConnect(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.WarnLevel)
	session := testutil.NewMockSession()
	session.SetQueryError(topology.LocalStatement, errors.New("unauthorized"))

	client := connectedClient(t, session, WithLogger(logger))
	defer client.Close()

	assert.Empty(t, client.ClusterInfo().Hosts)
	assert.Len(t, logs.FilterMessage("topology discovery failed").All(), 1)
}

func TestQueryClientCloseWithoutConnect(t *testing.T) {
	client, err := NewQueryClient(testutil.NewMockConnector(testutil.NewMockSession()))
	require.NoError(t, err)

	require.ErrorIs(t, client.Close(), types.ErrNotConnected)
}

func TestQueryClientCloseTwice(t *testing.T) {
	session := newClusterSession()
	client := connectedClient(t, session)

	require.NoError(t, client.Close())
	assert.True(t, session.IsClosed())
	require.ErrorIs(t, client.Close(), types.ErrNotConnected)
	assert.Empty(t, client.ClusterInfo().Hosts)
}

func TestQueryClientReconnectAfterClose(t *testing.T) {
	connector := testutil.NewMockConnector(newClusterSession())
	client, err := NewQueryClient(connector)
	require.NoError(t, err)

	require.NoError(t, client.Connect(t.Context(), "127.0.0.1"))
	require.NoError(t, client.Close())
	require.NoError(t, client.Connect(t.Context(), "127.0.0.1"))
	require.NoError(t, client.Close())
	assert.Len(t, connector.Calls(), 2)
}

func TestQueryClientStatementsRequireConnection(t *testing.T) {
	ctx := t.Context()
	client, err := NewQueryClient(testutil.NewMockConnector(testutil.NewMockSession()))
	require.NoError(t, err)

	schema, err := ParseColumnDefinitions(songColumns)
	require.NoError(t, err)

	require.ErrorIs(t, client.CreateKeyspace(ctx, "simplex", SimpleStrategy(1)), types.ErrNotConnected)
	require.ErrorIs(t, client.CreateTable(ctx, "simplex.songs", schema), types.ErrNotConnected)
	require.ErrorIs(t, client.InsertRow(ctx, "simplex.songs", []string{"title"}, []any{"x"}), types.ErrNotConnected)
	require.ErrorIs(t, client.UpdateRow(ctx, "simplex.songs", []Assignment{Set("title", "x")}, []Predicate{Eq("id", 1)}), types.ErrNotConnected)
	require.ErrorIs(t, client.DropTable(ctx, "simplex.songs"), types.ErrNotConnected)
	require.ErrorIs(t, client.DropKeyspace(ctx, "simplex"), types.ErrNotConnected)

	_, err = client.QueryTable(ctx, "simplex.songs").Wait(ctx)
	require.ErrorIs(t, err, types.ErrNotConnected)
}

func TestQueryClientValidationRunsBeforeSession(t *testing.T) {
	ctx := t.Context()
	session := newClusterSession()
	client := connectedClient(t, session)
	defer client.Close()

	require.ErrorIs(t, client.CreateKeyspace(ctx, "simplex; DROP KEYSPACE x", SimpleStrategy(1)), types.ErrInvalidIdentifier)
	require.ErrorIs(t, client.InsertRow(ctx, "simplex.songs", []string{"a", "b"}, []any{1}), types.ErrInvalidStatement)

	_, err := client.QueryTable(ctx, "songs WHERE 1=1").Wait(ctx)
	require.ErrorIs(t, err, types.ErrInvalidIdentifier)

	assert.Empty(t, userStatements(session))
}

func TestQueryClientStatementError(t *testing.T) {
	metrics := testutil.NewTestMetricsCollector()
	logger, logs := newObservedLogger(zapcore.ErrorLevel)
	session := newClusterSession()
	cause := errors.New("Keyspace simplex does not exist")
	session.SetQueryError("INSERT INTO simplex.songs (title) VALUES (?);", cause)

	client := connectedClient(t, session, WithMetrics(metrics), WithLogger(logger))
	defer client.Close()

	err := client.InsertRow(t.Context(), "simplex.songs", []string{"title"}, []any{"x"})
	require.ErrorIs(t, err, cause)

	var stmtErr *types.StatementError
	require.ErrorAs(t, err, &stmtErr)
	assert.Equal(t, types.KindInsert, stmtErr.Kind)
	assert.Equal(t, "INSERT INTO simplex.songs (title) VALUES (?);", stmtErr.Statement)

	assert.Equal(t, int64(1), metrics.GetStatementTotal(types.KindInsert))
	assert.Equal(t, int64(1), metrics.GetStatementErrors(types.KindInsert))

	client.ReportErrors(err)
	failed := logs.FilterMessage("query failed").All()
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].ContextMap()["error"], "does not exist")
}

func TestQueryClientAsyncFailure(t *testing.T) {
	session := newClusterSession()
	cause := errors.New("unconfigured table songs")
	session.SetQueryError(songsSelect, cause)

	client := connectedClient(t, session)
	defer client.Close()

	failed := make(chan error, 1)
	future := client.QueryTable(t.Context(), "simplex.songs")
	future.OnComplete(func(*types.ResultSet) {
		t.Error("unexpected success")
	}, func(err error) {
		failed <- err
	})

	select {
	case err := <-failed:
		require.ErrorIs(t, err, cause)
		var stmtErr *types.StatementError
		require.ErrorAs(t, err, &stmtErr)
		assert.Equal(t, types.KindSelect, stmtErr.Kind)
	case <-time.After(5 * time.Second):
		t.Fatal("future did not complete")
	}
}

func TestQueryClientQueryCancelledContext(t *testing.T) {
	client := connectedClient(t, newClusterSession())
	defer client.Close()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := client.QueryTable(ctx, "simplex.songs").Wait(t.Context())
	require.ErrorIs(t, err, context.Canceled)
}

func TestQueryClientQueryWithPredicates(t *testing.T) {
	session := newClusterSession()
	client := connectedClient(t, session)
	defer client.Close()

	id := uuid.New()
	_, err := client.QueryTable(t.Context(), "simplex.playlists",
		Eq("id", [16]byte(id)),
		In("title", "La Petite Tonkinoise", "Bye Bye Blackbird"),
	).Wait(t.Context())
	require.NoError(t, err)

	executed := session.Executed()
	last := executed[len(executed)-1]
	assert.Equal(t, "SELECT * FROM simplex.playlists WHERE id=? AND title IN ?;", last.Statement)
	assert.Equal(t, []any{[16]byte(id), []any{"La Petite Tonkinoise", "Bye Bye Blackbird"}}, last.Values)
}

func TestQueryClientQueryColumnsFromRows(t *testing.T) {
	session := newClusterSession()
	session.SetQueryIter(songsSelect, testutil.NewMockIter().
		AddMapRow(map[string]any{"title": "t", "artist": "a"}),
	)
	client := connectedClient(t, session)
	defer client.Close()

	rs, err := client.QueryTable(t.Context(), "simplex.songs").Wait(t.Context())
	require.NoError(t, err)
	assert.Equal(t, []string{"artist", "title"}, rs.Columns)

	// The listing needs an album column as well.
	require.ErrorIs(t, client.ReportResults(rs), types.ErrSchemaMismatch)
}

func TestQueryClientQueryNoMatchingRows(t *testing.T) {
	session := newClusterSession()
	session.SetQueryIter("SELECT * FROM simplex.songs WHERE id=?;", testutil.NewMockIter().
		SetColumns(songInsertColumns...),
	)
	var out bytes.Buffer
	client := connectedClient(t, session, WithOutput(&out))
	defer client.Close()
	ctx := t.Context()

	rs, err := client.QueryTable(ctx, "simplex.songs", Eq("id", [16]byte(uuid.New()))).Wait(ctx)
	require.NoError(t, err)
	assert.Zero(t, rs.Len())
	assert.Equal(t, songInsertColumns, rs.Columns)

	require.NoError(t, client.ReportResults(rs))
	assert.Equal(t, 2, bytes.Count(out.Bytes(), []byte("\n")), "header and separator only")
}

func TestQueryClientConsistencyAndPageSize(t *testing.T) {
	session := newClusterSession()
	client := connectedClient(t, session,
		WithReadConsistency(types.LocalOne),
		WithWriteConsistency(types.Quorum),
		WithPageSize(100),
	)
	defer client.Close()
	ctx := t.Context()

	require.NoError(t, client.InsertRow(ctx, "simplex.songs", []string{"title"}, []any{"t"}))
	_, err := client.QueryTable(ctx, "simplex.songs").Wait(ctx)
	require.NoError(t, err)

	executed := session.Executed()
	require.GreaterOrEqual(t, len(executed), 2)
	insert, query := executed[len(executed)-2], executed[len(executed)-1]

	assert.Equal(t, types.Quorum, insert.Consistency)
	assert.Zero(t, insert.PageSize)
	assert.Equal(t, types.LocalOne, query.Consistency)
	assert.Equal(t, 100, query.PageSize)
	assert.Equal(t, len(executed), session.Released(), "every executed query is released")
}

func TestQueryClientDefaultQuerySettings(t *testing.T) {
	session := newClusterSession()
	client := connectedClient(t, session, WithPageSize(-5))
	defer client.Close()

	assert.Zero(t, client.config.PageSize)
	assert.Nil(t, client.config.ReadConsistency)
	assert.Nil(t, client.config.WriteConsistency)

	_, err := client.QueryTable(t.Context(), "simplex.songs").Wait(t.Context())
	require.NoError(t, err)

	executed := session.Executed()
	last := executed[len(executed)-1]
	assert.Equal(t, songsSelect, last.Statement)
	assert.Zero(t, last.PageSize)
	assert.Zero(t, last.Consistency)
}

func TestQueryClientServerWarnings(t *testing.T) {
	logger, logs := newObservedLogger(zapcore.WarnLevel)
	session := newClusterSession()
	session.SetQueryIter(songsSelect, testutil.NewMockIter().
		SetWarnings("Aggregation query used without partition key"),
	)
	client := connectedClient(t, session, WithLogger(logger))
	defer client.Close()

	_, err := client.QueryTable(t.Context(), "simplex.songs").Wait(t.Context())
	require.NoError(t, err)

	warnings := logs.FilterMessage("server warning").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "Aggregation query used without partition key", warnings[0].ContextMap()["warning"])
}

func TestQueryClientConcurrentQueries(t *testing.T) {
	metrics := testutil.NewTestMetricsCollector()
	session := newClusterSession()
	session.SetQueryIter(songsSelect, testutil.NewMockIter().
		SetColumns("title", "album", "artist").
		AddMapRow(map[string]any{"title": "t", "album": "al", "artist": "ar"}),
	)
	client := connectedClient(t, session, WithMetrics(metrics))
	defer client.Close()

	futures := make([]*QueryFuture, 20)
	for i := range futures {
		futures[i] = client.QueryTable(t.Context(), "simplex.songs")
	}
	for _, f := range futures {
		rs, err := f.Wait(t.Context())
		require.NoError(t, err)
		assert.Equal(t, 1, rs.Len())
	}

	assert.Eventually(t, func() bool { return client.PendingQueries() == 0 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, int64(20), metrics.GetStatementTotal(types.KindSelect))
}

// A SELECT issued without waiting and immediately followed by a DROP races
// with it: the DROP can reach the cluster first.
func TestQueryClientQueryThenImmediateDrop(t *testing.T) {
	setup := func(t *testing.T) (*QueryClient, *testutil.MockSession, *observer.ObservedLogs) {
		t.Helper()

		logger, logs := newObservedLogger(zapcore.WarnLevel)
		session := newClusterSession()
		slow := &testutil.SlowSession{Session: session, Delay: 100 * time.Millisecond, Prefix: "SELECT * FROM"}

		return connectedClient(t, slow, WithLogger(logger)), session, logs
	}

	t.Run("drop overtakes unawaited query", func(t *testing.T) {
		client, session, logs := setup(t)
		defer client.Close()
		ctx := t.Context()

		future := client.QueryTable(ctx, "simplex.songs")
		require.NoError(t, client.DropKeyspace(ctx, "simplex"))

		_, err := future.Wait(ctx)
		require.NoError(t, err)

		assert.Equal(t, []string{dropSimplex, songsSelect}, userStatements(session),
			"DROP executed before the pending SELECT")

		warnings := logs.FilterMessage(dropWarnMsg).All()
		require.Len(t, warnings, 1, "the race must be flagged")
		assert.Equal(t, "simplex", warnings[0].ContextMap()["keyspace"])
		assert.EqualValues(t, 1, warnings[0].ContextMap()["inflight"])
	})

	t.Run("awaiting first orders the drop", func(t *testing.T) {
		client, session, logs := setup(t)
		defer client.Close()
		ctx := t.Context()

		_, err := client.QueryTable(ctx, "simplex.songs").Wait(ctx)
		require.NoError(t, err)
		require.NoError(t, client.DropKeyspace(ctx, "simplex"))

		assert.Equal(t, []string{songsSelect, dropSimplex}, userStatements(session))
		assert.Empty(t, logs.FilterMessage(dropWarnMsg).All())
	})
}

func TestQueryClientCloseWaitsForQueries(t *testing.T) {
	session := newClusterSession()
	slow := &testutil.SlowSession{Session: session, Delay: 100 * time.Millisecond, Prefix: "SELECT * FROM"}
	client := connectedClient(t, slow)

	future := client.QueryTable(t.Context(), "simplex.songs")
	require.NoError(t, client.Close())

	select {
	case <-future.Done():
	default:
		t.Fatal("Close returned before the query completed")
	}
	_, err := future.Wait(t.Context())
	require.NoError(t, err)
	assert.True(t, session.IsClosed())
}

func TestQueryClientCloseConcurrentWithStatements(t *testing.T) {
	client := connectedClient(t, newClusterSession())

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			err := client.InsertRow(context.Background(), "simplex.songs", []string{"title"}, []any{"x"})
			if err != nil {
				assert.ErrorIs(t, err, types.ErrNotConnected)
			}
		})
	}
	require.NoError(t, client.Close())
	wg.Wait()
}

func TestQueryClientReconnectWhileClosing(t *testing.T) {
	slow := &testutil.SlowSession{Session: newClusterSession(), Delay: 100 * time.Millisecond, Prefix: "SELECT * FROM"}
	client := connectedClient(t, slow)
	ctx := t.Context()

	first := client.QueryTable(ctx, "simplex.songs")

	closed := make(chan error, 1)
	go func() { closed <- client.Close() }()

	// Connect succeeds as soon as Close has let go of the session, while it
	// still waits for the first query.
	require.Eventually(t, func() bool {
		return client.Connect(ctx, "127.0.0.1") == nil
	}, time.Second, time.Millisecond)

	second := client.QueryTable(ctx, "simplex.songs")

	require.NoError(t, <-closed)
	_, err := first.Wait(ctx)
	require.NoError(t, err)

	_, err = second.Wait(ctx)
	require.NoError(t, err)
	require.NoError(t, client.Close())
}

func TestQueryClientStatementTimeout(t *testing.T) {
	session := newClusterSession()
	slow := &testutil.SlowSession{Session: session, Delay: time.Second, Prefix: "INSERT"}
	client := connectedClient(t, slow, WithStatementTimeout(20*time.Millisecond))
	defer client.Close()

	start := time.Now()
	err := client.InsertRow(t.Context(), "simplex.songs", []string{"title"}, []any{"x"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Empty(t, userStatements(session))
}

func TestQueryClientJournal(t *testing.T) {
	j := journal.NewMemory()
	metrics := testutil.NewTestMetricsCollector()
	session := newClusterSession()
	session.SetQueryError(dropSimplex, errors.New("timeout"))

	client := connectedClient(t, session, WithJournal(j), WithMetrics(metrics))
	defer client.Close()
	ctx := t.Context()

	require.NoError(t, client.InsertRow(ctx, "simplex.songs", []string{"title"}, []any{"Bye Bye Blackbird"}))
	_, err := client.QueryTable(ctx, "simplex.songs").Wait(ctx)
	require.NoError(t, err)
	require.Error(t, client.DropKeyspace(ctx, "simplex"))

	entries := j.Entries()
	require.Len(t, entries, 3)

	assert.Equal(t, types.KindInsert, entries[0].Kind)
	assert.Equal(t, "INSERT INTO simplex.songs (title) VALUES (?);", entries[0].Statement)
	assert.Equal(t, []any{"Bye Bye Blackbird"}, entries[0].Args)
	assert.False(t, entries[0].Failed())
	assert.NotEqual(t, [16]byte{}, entries[0].ID)

	assert.Equal(t, types.KindSelect, entries[1].Kind)

	assert.Equal(t, types.KindDropKeyspace, entries[2].Kind)
	assert.True(t, entries[2].Failed())
	assert.Equal(t, "timeout", entries[2].Error)

	assert.NotEqual(t, entries[0].ID, entries[1].ID)
	assert.Equal(t, int64(3), metrics.GetJournalRecorded())
}

func TestQueryClientJournalFailureDoesNotFailStatement(t *testing.T) {
	j := journal.NewMemory()
	require.NoError(t, j.Close())

	metrics := testutil.NewTestMetricsCollector()
	logger, logs := newObservedLogger(zapcore.WarnLevel)
	client := connectedClient(t, newClusterSession(), WithJournal(j), WithMetrics(metrics), WithLogger(logger))
	defer client.Close()

	require.NoError(t, client.InsertRow(t.Context(), "simplex.songs", []string{"title"}, []any{"x"}))

	assert.Equal(t, int64(1), metrics.GetJournalDropped())
	assert.Zero(t, metrics.GetJournalRecorded())
	assert.Len(t, logs.FilterMessage("journal write failed").All(), 1)
}
