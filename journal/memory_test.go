package journal_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkhamm/cqlclient"
	"github.com/hkhamm/cqlclient/journal"
	"github.com/hkhamm/cqlclient/types"
)

var (
	_ cqlclient.Journal = (*journal.Memory)(nil)
	_ cqlclient.Journal = (*journal.NATS)(nil)
)

func entry(stmt string) types.JournalEntry {
	return types.JournalEntry{Kind: types.KindInsert, Statement: stmt}
}

func TestMemoryRecord(t *testing.T) {
	j := journal.NewMemory()
	defer j.Close()

	require.NoError(t, j.Record(context.Background(), entry("a")))
	require.NoError(t, j.Record(context.Background(), entry("b")))

	entries := j.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Statement)
	assert.Equal(t, "b", entries[1].Statement)
	assert.Equal(t, uint64(2), j.Total())
}

func TestMemoryEvictsOldest(t *testing.T) {
	j := journal.NewMemory(journal.WithCapacity(3))

	for i := range 5 {
		require.NoError(t, j.Record(context.Background(), entry(fmt.Sprint(i))))
	}

	var stmts []string
	for _, e := range j.Entries() {
		stmts = append(stmts, e.Statement)
	}
	assert.Equal(t, []string{"2", "3", "4"}, stmts)
	assert.Equal(t, 3, j.Len())
	assert.Equal(t, uint64(5), j.Total())
}

func TestMemoryCopiesArgs(t *testing.T) {
	j := journal.NewMemory()
	args := []any{"original"}

	e := entry("x")
	e.Args = args
	require.NoError(t, j.Record(context.Background(), e))

	args[0] = "mutated"
	assert.Equal(t, []any{"original"}, j.Entries()[0].Args)
}

func TestMemoryClosed(t *testing.T) {
	j := journal.NewMemory()
	require.NoError(t, j.Record(context.Background(), entry("kept")))
	require.NoError(t, j.Close())

	err := j.Record(context.Background(), entry("dropped"))
	require.ErrorIs(t, err, types.ErrJournalClosed)
	assert.Len(t, j.Entries(), 1)
}

func TestMemoryCancelledContext(t *testing.T) {
	j := journal.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, j.Record(ctx, entry("x")), context.Canceled)
	assert.Zero(t, j.Len())
}

func TestMemoryConcurrentRecord(t *testing.T) {
	j := journal.NewMemory(journal.WithCapacity(64))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Go(func() {
			for n := range 50 {
				_ = j.Record(context.Background(), entry(fmt.Sprintf("%d-%d", i, n)))
			}
		})
	}
	wg.Wait()

	assert.Equal(t, uint64(400), j.Total())
	assert.Equal(t, 64, j.Len())
}

func TestMemoryIgnoresInvalidCapacity(t *testing.T) {
	j := journal.NewMemory(journal.WithCapacity(0))
	for range journal.DefaultMemoryCapacity + 1 {
		require.NoError(t, j.Record(context.Background(), entry("x")))
	}
	assert.Equal(t, journal.DefaultMemoryCapacity, j.Len())
}
