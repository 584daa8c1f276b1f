package session

import (
	"errors"
	"fmt"
)

var (
	// ErrCanceled marks a query that was canceled by its owner. It is expected,
	// not exceptional, and never becomes a session status error.
	ErrCanceled = errors.New("canceled")
	// ErrNoStream is returned by intents that need a selected stream.
	ErrNoStream = errors.New("no stream selected")
	// ErrClosed is returned by intents issued after the controller shut down.
	ErrClosed = errors.New("controller closed")
)

// ListError reports that fetching the available streams failed.
type ListError struct {
	Err error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("load streams: %v", e.Err)
}

func (e *ListError) Unwrap() error { return e.Err }

// TailError reports that a tail session stopped: the dial failed, the
// transport errored, the server closed the connection, or a frame could not be
// decoded. Tail sessions are never restarted automatically.
type TailError struct {
	Stream string
	Err    error
}

func (e *TailError) Error() string {
	return fmt.Sprintf("tailing stopped: %v", e.Err)
}

func (e *TailError) Unwrap() error { return e.Err }

// SearchError reports a failed search, either a transport failure or a
// non-success response.
type SearchError struct {
	Stream string
	Err    error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("search failed: %v", e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }
