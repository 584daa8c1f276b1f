package session

import (
	"github.com/five82/logscope/internal/logapi"
)

// Mode is the controller's active session kind.
type Mode int

const (
	ModeIdle Mode = iota
	ModeTailing
	ModeSearching
)

func (m Mode) String() string {
	switch m {
	case ModeTailing:
		return "tailing"
	case ModeSearching:
		return "searching"
	default:
		return "idle"
	}
}

// Status describes the active session. Idle has no status.
type Status int

const (
	StatusNone Status = iota
	StatusLoading
	StatusReady
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	default:
		return "none"
	}
}

// SearchParams are the inputs of one historical search.
type SearchParams struct {
	Stream string
	Range  logapi.TimeRange
	Term   string
}

func (p SearchParams) query() logapi.SearchQuery {
	return logapi.SearchQuery{Stream: p.Stream, Range: p.Range, Term: p.Term}
}

// Snapshot is the controller state handed to renderers.
type Snapshot struct {
	Mode    Mode
	Status  Status
	Stream  string
	Tailing bool // tail intent; may be set while Idle when no stream is selected
	Limit   int
	Range   logapi.TimeRange // set while Searching
	Term    string           // set while Searching
	Lines   []string
	Err     error
	Version uint64
}

// Clone returns a copy whose Lines can be modified freely.
func (s Snapshot) Clone() Snapshot {
	if s.Lines != nil {
		lines := make([]string, len(s.Lines))
		copy(lines, s.Lines)
		s.Lines = lines
	}
	return s
}
