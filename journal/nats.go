package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/hkhamm/cqlclient/types"
)

// NATSConfig configures the NATS JetStream journal.
type NATSConfig struct {
	// StreamName is the JetStream stream holding journal entries.
	// Default: "cqlclient-journal"
	StreamName string

	// SubjectPrefix is the prefix for subjects. Entries are published to
	// "{SubjectPrefix}.{kind}" (e.g., "cqlclient.journal.insert").
	// Default: "cqlclient.journal"
	SubjectPrefix string

	// MaxAge is the maximum age of entries in the stream.
	// Default: 7 days
	MaxAge time.Duration

	// MaxMsgs is the maximum number of entries in the stream.
	// Default: 1,000,000
	MaxMsgs int64

	// MaxBytes is the maximum total size of the stream in bytes.
	// Default: 1GB
	MaxBytes int64

	// Replicas is the number of stream replicas.
	// Default: 1
	Replicas int

	// PublishTimeout bounds each publish.
	// Default: 5 seconds
	PublishTimeout time.Duration

	// FetchWait is how long Fetch waits for entries that have not arrived.
	// Default: 1 second
	FetchWait time.Duration
}

// DefaultNATSConfig returns the default configuration.
func DefaultNATSConfig() NATSConfig {
	return NATSConfig{
		StreamName:     "cqlclient-journal",
		SubjectPrefix:  "cqlclient.journal",
		MaxAge:         7 * 24 * time.Hour,
		MaxMsgs:        1_000_000,
		MaxBytes:       1 << 30, // 1GB
		Replicas:       1,
		PublishTimeout: 5 * time.Second,
		FetchWait:      time.Second,
	}
}

// NATSOption configures a NATS journal.
type NATSOption func(*NATSConfig)

// WithStreamName sets the JetStream stream name.
func WithStreamName(name string) NATSOption {
	return func(c *NATSConfig) {
		c.StreamName = name
	}
}

// WithSubjectPrefix sets the subject prefix for journal entries.
//
// Parameters:
//   - prefix: Subject prefix
//
// Returns:
//   - NATSOption: Configuration option
func WithSubjectPrefix(prefix string) NATSOption {
	return func(c *NATSConfig) {
		c.SubjectPrefix = prefix
	}
}

// WithMaxAge sets the maximum age of entries in the stream.
func WithMaxAge(d time.Duration) NATSOption {
	return func(c *NATSConfig) {
		c.MaxAge = d
	}
}

// WithMaxMsgs sets the maximum number of entries in the stream.
func WithMaxMsgs(n int64) NATSOption {
	return func(c *NATSConfig) {
		c.MaxMsgs = n
	}
}

// WithMaxBytes sets the maximum total size of the stream.
func WithMaxBytes(n int64) NATSOption {
	return func(c *NATSConfig) {
		c.MaxBytes = n
	}
}

// WithReplicas sets the number of stream replicas.
//
// Parameters:
//   - n: Number of replicas (1 for dev, 3 for production)
//
// Returns:
//   - NATSOption: Configuration option
func WithReplicas(n int) NATSOption {
	return func(c *NATSConfig) {
		c.Replicas = n
	}
}

// WithPublishTimeout sets the timeout for publishing entries.
func WithPublishTimeout(d time.Duration) NATSOption {
	return func(c *NATSConfig) {
		c.PublishTimeout = d
	}
}

// WithFetchWait sets how long Fetch waits for missing entries.
func WithFetchWait(d time.Duration) NATSOption {
	return func(c *NATSConfig) {
		c.FetchWait = d
	}
}

// NATS is a durable journal backed by a NATS JetStream stream.
type NATS struct {
	js     jetstream.JetStream
	stream jetstream.Stream
	config NATSConfig
	closed bool
	mu     sync.RWMutex
}

// NewNATS creates a journal publishing to a JetStream stream.
//
// The stream is created, or updated to the given limits, before returning.
// The caller owns the NATS connection behind js.
//
// Parameters:
//   - js: A JetStream context (created via jetstream.New(conn))
//   - opts: Optional configuration options
//
// Returns:
//   - *NATS: A ready journal
//   - error: Error if js is nil or stream creation fails
//
// Example:
//
//	nc, _ := nats.Connect("nats://localhost:4222")
//	js, _ := jetstream.New(nc)
//	j, _ := journal.NewNATS(js)
func NewNATS(js jetstream.JetStream, opts ...NATSOption) (*NATS, error) {
	if js == nil {
		return nil, errors.New("cqlclient: JetStream context is nil")
	}

	config := DefaultNATSConfig()
	for _, opt := range opts {
		opt(&config)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stream, err := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:        config.StreamName,
		Description: "cqlclient statement journal",
		Subjects:    []string{config.SubjectPrefix + ".*"}, // {prefix}.{kind}
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      config.MaxAge,
		MaxMsgs:     config.MaxMsgs,
		MaxBytes:    config.MaxBytes,
		Replicas:    config.Replicas,
		Storage:     jetstream.FileStorage,
		Discard:     jetstream.DiscardOld,
	})
	if err != nil {
		return nil, fmt.Errorf("cqlclient: failed to create/update stream: %w", err)
	}

	return &NATS{
		js:     js,
		stream: stream,
		config: config,
	}, nil
}

// Record publishes an entry to "{prefix}.{kind}".
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - entry: The executed statement
//
// Returns:
//   - error: types.ErrJournalClosed after Close, or an encode/publish error
func (n *NATS) Record(ctx context.Context, entry types.JournalEntry) error {
	if n.isClosed() {
		return types.ErrJournalClosed
	}

	data, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("cqlclient: failed to marshal journal entry: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, n.config.PublishTimeout)
	defer cancel()

	if _, err := n.js.Publish(pubCtx, n.subject(entry.Kind), data); err != nil {
		return fmt.Errorf("cqlclient: failed to publish journal entry: %w", err)
	}

	return nil
}

// Fetch reads up to limit entries from the start of the stream.
//
// An ordered consumer is used, so nothing is acknowledged or removed; calling
// Fetch again returns the same entries. Malformed messages are skipped.
//
// Parameters:
//   - ctx: Context for cancellation
//   - limit: Maximum number of entries to return
//   - kinds: Optional statement kinds to filter on; none means all
//
// Returns:
//   - []types.JournalEntry: Entries in publish order
//   - error: types.ErrJournalClosed after Close, or a fetch error
func (n *NATS) Fetch(ctx context.Context, limit int, kinds ...types.StatementKind) ([]types.JournalEntry, error) {
	if n.isClosed() {
		return nil, types.ErrJournalClosed
	}
	if limit <= 0 {
		return nil, nil
	}

	cfg := jetstream.OrderedConsumerConfig{DeliverPolicy: jetstream.DeliverAllPolicy}
	for _, k := range kinds {
		cfg.FilterSubjects = append(cfg.FilterSubjects, n.subject(k))
	}

	consumer, err := n.stream.OrderedConsumer(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("cqlclient: failed to create consumer: %w", err)
	}

	msgs, err := consumer.Fetch(limit, jetstream.FetchMaxWait(n.config.FetchWait))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, jetstream.ErrNoMessages) {
			return nil, nil
		}

		return nil, fmt.Errorf("cqlclient: failed to fetch journal entries: %w", err)
	}

	result := make([]types.JournalEntry, 0, limit)
	for msg := range msgs.Messages() {
		entry, err := decodeEntry(msg.Data())
		if err != nil {
			continue
		}
		result = append(result, entry)
	}

	if err := msgs.Error(); err != nil && !errors.Is(err, jetstream.ErrNoMessages) {
		return result, fmt.Errorf("cqlclient: error during journal fetch: %w", err)
	}

	return result, ctx.Err()
}

// Count returns the number of entries held by the stream.
func (n *NATS) Count(ctx context.Context) (int, error) {
	if n.isClosed() {
		return 0, types.ErrJournalClosed
	}

	info, err := n.stream.Info(ctx)
	if err != nil {
		return 0, fmt.Errorf("cqlclient: failed to get stream info: %w", err)
	}

	// Cap at max int to prevent overflow
	msgs := info.State.Msgs
	if msgs > uint64(^uint(0)>>1) {
		msgs = uint64(^uint(0) >> 1)
	}

	//nolint:gosec // overflow is handled by the cap above
	return int(msgs), nil
}

// StreamName returns the JetStream stream name.
func (n *NATS) StreamName() string {
	return n.config.StreamName
}

// Close closes the journal.
//
// Note: This does NOT close the NATS connection - that is the caller's responsibility.
func (n *NATS) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true

	return nil
}

func (n *NATS) isClosed() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return n.closed
}

func (n *NATS) subject(kind types.StatementKind) string {
	return n.config.SubjectPrefix + "." + string(kind)
}
