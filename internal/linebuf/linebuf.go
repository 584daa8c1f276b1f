package linebuf

// Buffer is an immutable, capped sequence of lines.
type Buffer struct {
	lines []string
	limit int
}

// New returns an empty buffer that retains at most limit lines.
func New(limit int) Buffer {
	return Buffer{limit: clamp(limit)}
}

// Append returns a new buffer holding the receiver's lines followed by lines,
// trimmed from the front so that at most Limit() remain.
func (b Buffer) Append(lines ...string) Buffer {
	limit := b.Limit()
	if len(lines) == 0 {
		return b
	}
	total := len(b.lines) + len(lines)
	keep := min(total, limit)

	out := make([]string, keep)
	// Fill from the back: newest lines first, then whatever fits from the old ones.
	n := copy(out[max(keep-len(lines), 0):], lines[max(len(lines)-keep, 0):])
	if rest := keep - n; rest > 0 {
		copy(out[:rest], b.lines[len(b.lines)-rest:])
	}
	return Buffer{lines: out, limit: limit}
}

// WithLimit returns a buffer capped at n that keeps the most recent n lines.
func (b Buffer) WithLimit(n int) Buffer {
	limit := clamp(n)
	if len(b.lines) <= limit {
		return Buffer{lines: b.lines, limit: limit}
	}
	out := make([]string, limit)
	copy(out, b.lines[len(b.lines)-limit:])
	return Buffer{lines: out, limit: limit}
}

// Lines returns a copy of the buffered lines, oldest first.
func (b Buffer) Lines() []string {
	if len(b.lines) == 0 {
		return nil
	}
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Len reports how many lines are buffered.
func (b Buffer) Len() int {
	return len(b.lines)
}

// Limit reports the cap. The zero Buffer has a limit of one.
func (b Buffer) Limit() int {
	return clamp(b.limit)
}

func clamp(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
