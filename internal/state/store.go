package state

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/five82/logscope/internal/session"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	Streams     []string
	HasStreams  bool
	ListError   error // *session.ListError when the last stream fetch failed
	LastUpdated time.Time
	Session     session.Snapshot
}

// Store coordinates the stream list loader, the session controller and the UI.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	notify   chan struct{}
	once     sync.Once
}

// UpdateStreams records the result of a stream list fetch. When err is non-nil
// the previous list is kept and the error is recorded for display.
func (s *Store) UpdateStreams(streams []string, err error) {
	s.mu.Lock()
	if err != nil {
		s.snapshot.ListError = err
	} else {
		s.snapshot.Streams = slices.Clone(streams)
		s.snapshot.HasStreams = true
		s.snapshot.ListError = nil
	}
	s.snapshot.LastUpdated = time.Now()
	s.mu.Unlock()
	s.signal()
}

// UpdateSession stores the controller's latest snapshot. Older versions are
// ignored.
func (s *Store) UpdateSession(snap session.Snapshot) {
	s.mu.Lock()
	if snap.Version != 0 && snap.Version < s.snapshot.Session.Version {
		s.mu.Unlock()
		return
	}
	s.snapshot.Session = snap.Clone()
	s.snapshot.LastUpdated = time.Now()
	s.mu.Unlock()
	s.signal()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Streams = slices.Clone(s.snapshot.Streams)
	snap.Session = s.snapshot.Session.Clone()
	if s.snapshot.ListError != nil {
		snap.ListError = fmt.Errorf("%w", s.snapshot.ListError)
	}
	return snap
}

// Updates returns a channel that receives a value after each change. Signals
// coalesce: a slow reader sees one pending notification, not one per update.
func (s *Store) Updates() <-chan struct{} {
	s.init()
	return s.notify
}

func (s *Store) init() {
	s.once.Do(func() {
		s.notify = make(chan struct{}, 1)
	})
}

func (s *Store) signal() {
	s.init()
	select {
	case s.notify <- struct{}{}:
	default:
	}
}
