package app

import (
	"context"
	"sync"

	"github.com/five82/logscope/internal/logapi"
	"github.com/five82/logscope/internal/logx"
	"github.com/five82/logscope/internal/session"
	"github.com/five82/logscope/internal/state"
)

// StreamLoader fetches the stream list into a store. Each Load is one
// user-initiated attempt; failures are recorded, never retried.
type StreamLoader struct {
	lister logapi.StreamLister
	store  *state.Store

	mu      sync.Mutex
	running bool
}

// NewStreamLoader returns a loader that writes to store.
func NewStreamLoader(lister logapi.StreamLister, store *state.Store) *StreamLoader {
	return &StreamLoader{lister: lister, store: store}
}

// Load fetches the stream list once. A Load issued while another is running
// returns immediately with nil.
func (l *StreamLoader) Load(ctx context.Context) error {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return nil
	}
	l.running = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.running = false
		l.mu.Unlock()
	}()

	streams, err := l.lister.ListStreams(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		listErr := &session.ListError{Err: err}
		l.store.UpdateStreams(nil, listErr)
		logx.Ctx(ctx).Warn("stream list fetch failed", "err", err)
		return listErr
	}
	l.store.UpdateStreams(streams, nil)
	logx.Ctx(ctx).Debug("stream list loaded", "count", len(streams))
	return nil
}
