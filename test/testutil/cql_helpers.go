package testutil

import (
	"context"
	"strings"
	"time"

	"github.com/hkhamm/cqlclient/adapter/cql"
)

// SlowSession wraps a CQL session and delays the execution of selected
// statements. This is useful for testing statement timeouts and the ordering
// of asynchronous queries against later statements.
type SlowSession struct {
	Session cql.Session
	Delay   time.Duration

	// Prefix limits the delay to statements starting with it. Empty delays all.
	Prefix string
}

// Compile-time assertion that SlowSession implements cql.Session.
var _ cql.Session = (*SlowSession)(nil)

// Query returns a query that waits before execution.
func (s *SlowSession) Query(stmt string, values ...any) cql.Query {
	q := s.Session.Query(stmt, values...)
	if s.Prefix != "" && !strings.HasPrefix(stmt, s.Prefix) {
		return q
	}

	return &SlowQuery{Query: q, Delay: s.Delay}
}

// Close closes the wrapped session.
func (s *SlowSession) Close() {
	s.Session.Close()
}

// SlowQuery wraps a CQL query and adds delay to its execution methods.
//
// The delay honors context cancellation: a query whose context ends while
// waiting fails with the context error and never reaches the wrapped query.
type SlowQuery struct {
	cql.Query
	Delay time.Duration
}

// Compile-time assertion that SlowQuery implements cql.Query.
var _ cql.Query = (*SlowQuery)(nil)

// Consistency sets the consistency level on the wrapped query.
func (q *SlowQuery) Consistency(c cql.Consistency) cql.Query {
	q.Query = q.Query.Consistency(c)

	return q
}

// PageSize sets the page size on the wrapped query.
func (q *SlowQuery) PageSize(n int) cql.Query {
	q.Query = q.Query.PageSize(n)

	return q
}

// ExecContext waits for the delay, then executes.
func (q *SlowQuery) ExecContext(ctx context.Context) error {
	if err := q.wait(ctx); err != nil {
		return err
	}

	return q.Query.ExecContext(ctx)
}

// ScanContext waits for the delay, then scans.
func (q *SlowQuery) ScanContext(ctx context.Context, dest ...any) error {
	if err := q.wait(ctx); err != nil {
		return err
	}

	return q.Query.ScanContext(ctx, dest...)
}

// IterContext waits for the delay, then returns the iterator.
func (q *SlowQuery) IterContext(ctx context.Context) cql.Iter {
	if err := q.wait(ctx); err != nil {
		return NewMockIter().SetCloseError(err)
	}

	return q.Query.IterContext(ctx)
}

func (q *SlowQuery) wait(ctx context.Context) error {
	timer := time.NewTimer(q.Delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
