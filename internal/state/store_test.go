package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/logscope/internal/session"
)

func TestStore_UpdateStreamsAndSnapshotClone(t *testing.T) {
	var s Store

	before := time.Now()
	s.UpdateStreams([]string{"app", "db"}, nil)

	snap := s.Snapshot()
	if !snap.HasStreams || len(snap.Streams) != 2 || snap.Streams[0] != "app" {
		t.Fatalf("snapshot streams = %#v, want [app db]", snap.Streams)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.ListError != nil {
		t.Fatalf("ListError = %v, want nil", snap.ListError)
	}

	// Returned snapshot should be independent of the stored one.
	snap.Streams[0] = "mutated"
	if got := s.Snapshot().Streams[0]; got != "app" {
		t.Fatalf("Snapshot should clone streams; got %q want app", got)
	}
}

func TestStore_ListErrorKeepsPreviousStreams(t *testing.T) {
	var s Store

	s.UpdateStreams([]string{"app"}, nil)
	origErr := &session.ListError{Err: errors.New("boom")}
	s.UpdateStreams(nil, origErr)

	snap := s.Snapshot()
	if len(snap.Streams) != 1 || snap.Streams[0] != "app" {
		t.Fatalf("streams changed on error: got %#v", snap.Streams)
	}
	if snap.ListError == nil || snap.ListError.Error() != "load streams: boom" {
		t.Fatalf("ListError = %v, want load streams: boom", snap.ListError)
	}
	if reflect.ValueOf(snap.ListError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
	var listErr *session.ListError
	if !errors.As(snap.ListError, &listErr) {
		t.Fatalf("ListError should unwrap to *session.ListError")
	}

	// A later success clears the error.
	s.UpdateStreams([]string{"app", "db"}, nil)
	if snap := s.Snapshot(); snap.ListError != nil || len(snap.Streams) != 2 {
		t.Fatalf("success did not replace error: %#v", snap)
	}
}

func TestStore_UpdateSessionIgnoresOlderVersions(t *testing.T) {
	var s Store

	s.UpdateSession(session.Snapshot{Mode: session.ModeTailing, Lines: []string{"a", "b"}, Version: 3})
	s.UpdateSession(session.Snapshot{Mode: session.ModeIdle, Version: 2})

	snap := s.Snapshot()
	if snap.Session.Mode != session.ModeTailing || snap.Session.Version != 3 {
		t.Fatalf("session = %#v, want version 3 tailing", snap.Session)
	}

	snap.Session.Lines[0] = "mutated"
	if got := s.Snapshot().Session.Lines[0]; got != "a" {
		t.Fatalf("Snapshot should clone lines; got %q want a", got)
	}
}

func TestStore_UpdatesCoalesce(t *testing.T) {
	var s Store
	updates := s.Updates()

	s.UpdateStreams([]string{"app"}, nil)
	s.UpdateSession(session.Snapshot{Version: 1})
	s.UpdateSession(session.Snapshot{Version: 2})

	select {
	case <-updates:
	default:
		t.Fatal("expected a pending update")
	}
	select {
	case <-updates:
		t.Fatal("updates should coalesce into one signal")
	default:
	}
}
