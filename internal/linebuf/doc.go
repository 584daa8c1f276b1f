// Package linebuf provides the bounded line buffer used while tailing a stream.
//
// # Overview
//
// A Buffer is an ordered, capped sequence of log lines. Appending past the cap
// evicts the oldest lines first, so the buffer always holds the most recent
// Limit() lines in arrival order. This keeps memory bounded no matter how long a
// tail runs.
//
// # Value Semantics
//
// Buffer is an immutable value. Append and WithLimit return a new Buffer and
// leave the receiver untouched:
//
//	buf := linebuf.New(2)
//	next := buf.Append("a", "b", "c") // next.Lines() == ["b", "c"]
//	// buf.Len() is still 0
//
// Every result owns a fresh backing array, so two buffers derived from the same
// parent never overwrite each other. The session controller relies on this to
// publish snapshots without copying under a lock.
//
// # Limits
//
// A limit below one is clamped to one. Reducing the limit with WithLimit trims
// immediately, without waiting for the next append:
//
//	buf = buf.WithLimit(1) // keeps only the newest line
//
// # Memory
//
// Each append allocates O(Limit()) once per frame, not per line, since a whole
// decoded batch is appended in one call. Memory held by a live buffer is
// O(Limit() × average line length).
package linebuf
