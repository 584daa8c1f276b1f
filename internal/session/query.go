package session

import (
	"context"
	"sync"

	"github.com/five82/logscope/internal/logapi"
)

// QueryResult is the settlement of a Query. Err is nil or a *SearchError.
type QueryResult struct {
	Lines []string
	Err   error
}

// SettleFunc receives a query's result. It runs at most once, never after
// Cancel, and must give up if ctx is canceled while it blocks.
type SettleFunc func(ctx context.Context, res QueryResult)

// Query is one in-flight historical search that its owner can cancel.
type Query struct {
	params SearchParams

	cancel context.CancelFunc
	done   chan struct{}

	mu       sync.Mutex
	canceled bool
	err      error
}

// StartQuery issues the search described by params on a new goroutine and
// returns a handle for canceling it.
func StartQuery(ctx context.Context, searcher logapi.Searcher, params SearchParams, settle SettleFunc) *Query {
	qctx, cancel := context.WithCancel(ctx)
	q := &Query{
		params: params,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go q.run(qctx, searcher, settle)
	return q
}

// Params returns the parameters the query was started with.
func (q *Query) Params() SearchParams {
	return q.params
}

// Cancel aborts the request if it is still in flight and suppresses its
// settlement. It is a no-op after completion and safe to call repeatedly.
func (q *Query) Cancel() {
	q.cancel()
	q.mu.Lock()
	q.canceled = true
	q.mu.Unlock()
}

// Wait blocks until the request goroutine exits. It returns ErrCanceled when
// the query was canceled before settling, the *SearchError on failure, and nil
// on success.
func (q *Query) Wait() error {
	<-q.done
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.err
}

// Done is closed when the request goroutine has exited.
func (q *Query) Done() <-chan struct{} {
	return q.done
}

func (q *Query) run(ctx context.Context, searcher logapi.Searcher, settle SettleFunc) {
	defer close(q.done)
	defer q.cancel()

	lines, err := searcher.Search(ctx, q.params.query())

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.canceled || (logapi.IsCanceled(err) && ctx.Err() != nil) {
		q.err = ErrCanceled
		return
	}
	res := QueryResult{Lines: lines}
	if err != nil {
		res.Err = &SearchError{Stream: q.params.Stream, Err: err}
		q.err = res.Err
	}
	if settle != nil {
		settle(ctx, res)
	}
}
