package cqlclient

import (
	"context"
	"sync"

	"github.com/hkhamm/cqlclient/types"
)

type completion struct {
	onSuccess func(*types.ResultSet)
	onFailure func(error)
}

// QueryFuture is the pending result of an asynchronous SELECT.
//
// A future completes exactly once, with either a result set or an error.
// Callers must either await it (Wait, Done) or say they do not care
// (Ignore); registering callbacks with OnComplete is also fine.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type QueryFuture struct {
	done   chan struct{}
	logger types.Logger

	mu        sync.Mutex
	completed bool
	rs        *types.ResultSet
	err       error
	callbacks []completion
}

func newQueryFuture(logger types.Logger) *QueryFuture {
	return &QueryFuture{
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Done returns a channel that is closed when the query completes.
func (f *QueryFuture) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the query completes or ctx ends.
//
// A ctx that ends first only stops the wait; the query keeps running and
// its result stays available to later calls.
//
// Parameters:
//   - ctx: Context bounding the wait
//
// Returns:
//   - *types.ResultSet: The rows, nil on failure
//   - error: The query fault, or ctx.Err() if the wait was abandoned
func (f *QueryFuture) Wait(ctx context.Context) (*types.ResultSet, error) {
	select {
	case <-f.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	return f.rs, f.err
}

// OnComplete registers a success and a failure callback.
//
// Exactly one of the two runs per registration. If the future has already
// completed, the callback runs immediately on the calling goroutine;
// otherwise it runs on the goroutine that completes the query. Either
// callback may be nil.
//
// Callbacks run before the owning client considers the query finished, so
// they must not call QueryClient.Close.
func (f *QueryFuture) OnComplete(onSuccess func(*types.ResultSet), onFailure func(error)) {
	c := completion{onSuccess: onSuccess, onFailure: onFailure}

	f.mu.Lock()
	if !f.completed {
		f.callbacks = append(f.callbacks, c)
		f.mu.Unlock()

		return
	}
	rs, err := f.rs, f.err
	f.mu.Unlock()

	c.run(rs, err)
}

// Ignore discards the result. A failure is still written to the error log.
func (f *QueryFuture) Ignore() {
	f.OnComplete(nil, func(err error) {
		f.logger.Error("ignored query failed", "error", err)
	})
}

func (f *QueryFuture) complete(rs *types.ResultSet, err error) {
	f.mu.Lock()
	if f.completed {
		f.mu.Unlock()
		return
	}
	f.completed = true
	f.rs, f.err = rs, err
	callbacks := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, c := range callbacks {
		c.run(rs, err)
	}
}

func (c completion) run(rs *types.ResultSet, err error) {
	if err != nil {
		if c.onFailure != nil {
			c.onFailure(err)
		}

		return
	}
	if c.onSuccess != nil {
		c.onSuccess(rs)
	}
}
