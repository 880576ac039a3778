package journal

import (
	"context"
	"slices"
	"sync"

	"github.com/hkhamm/cqlclient/types"
)

// DefaultMemoryCapacity is the number of entries a Memory journal keeps.
const DefaultMemoryCapacity = 1024

// MemoryOption configures a Memory journal.
type MemoryOption func(*Memory)

// WithCapacity sets how many entries are retained. Values below 1 are ignored.
func WithCapacity(n int) MemoryOption {
	return func(m *Memory) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// Memory is an in-process journal that keeps the most recent entries.
//
// When full, the oldest entry is overwritten.
type Memory struct {
	mu       sync.Mutex
	capacity int
	entries  []types.JournalEntry
	next     int
	total    uint64
	closed   bool
}

// NewMemory creates an empty in-memory journal.
//
// Parameters:
//   - opts: Optional configuration
//
// Returns:
//   - *Memory: A ready journal
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{capacity: DefaultMemoryCapacity}
	for _, opt := range opts {
		opt(m)
	}
	m.entries = make([]types.JournalEntry, 0, m.capacity)

	return m
}

// Record stores an entry, evicting the oldest one when full.
//
// Parameters:
//   - ctx: Checked for cancellation before storing
//   - entry: The executed statement
//
// Returns:
//   - error: types.ErrJournalClosed after Close, or the context error
func (m *Memory) Record(ctx context.Context, entry types.JournalEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entry.Args = slices.Clone(entry.Args)

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return types.ErrJournalClosed
	}

	if len(m.entries) < m.capacity {
		m.entries = append(m.entries, entry)
	} else {
		m.entries[m.next] = entry
	}
	m.next = (m.next + 1) % m.capacity
	m.total++

	return nil
}

// Entries returns the retained entries, oldest first.
func (m *Memory) Entries() []types.JournalEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]types.JournalEntry, 0, len(m.entries))
	if len(m.entries) < m.capacity {
		return append(out, m.entries...)
	}
	out = append(out, m.entries[m.next:]...)

	return append(out, m.entries[:m.next]...)
}

// Len returns the number of retained entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.entries)
}

// Total returns the number of entries ever recorded, including evicted ones.
func (m *Memory) Total() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.total
}

// Close marks the journal closed. Retained entries stay readable.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}
