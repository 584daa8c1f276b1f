package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const (
	streamPaneWidth = 28
	noStreamLabel   = "(no stream)"
)

// limitChoices are the buffer limits offered by the limit key.
var limitChoices = []int{50, 100, 500, 1000}

// nextLimit returns the choice after current, wrapping to the smallest.
func nextLimit(current int) int {
	for _, n := range limitChoices {
		if n > current {
			return n
		}
	}
	return limitChoices[0]
}

// streamItems is the picker content: the empty "no stream" entry first, then
// the server's streams.
func (m Model) streamItems() []string {
	items := make([]string, 0, len(m.snapshot.Streams)+1)
	items = append(items, "")
	return append(items, m.snapshot.Streams...)
}

func (m *Model) moveStreamCursor(delta int) {
	items := m.streamItems()
	m.streamCursor = min(max(m.streamCursor+delta, 0), len(items)-1)
}

// syncStreamCursor keeps the cursor inside the list after a reload.
func (m *Model) syncStreamCursor() {
	m.moveStreamCursor(0)
}

func (m Model) selectedStream() string {
	items := m.streamItems()
	if m.streamCursor < 0 || m.streamCursor >= len(items) {
		return ""
	}
	return items[m.streamCursor]
}

func (m Model) renderStreams(height int) string {
	styles := m.theme.Styles()
	focused := m.focus == paneStreams
	inner := streamPaneWidth - 2

	title := "Streams"
	if m.reloading {
		title = m.spinner.View() + " Streams"
	}

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(truncate(title, inner)))
	b.WriteString("\n")

	rows := height - 3
	items := m.streamItems()
	first := 0
	if m.streamCursor >= rows {
		first = m.streamCursor - rows + 1
	}
	active := m.snapshot.Session.Stream
	for i := first; i < len(items) && i < first+rows; i++ {
		name := items[i]
		label := name
		if name == "" {
			label = noStreamLabel
		}
		marker := "  "
		if name == active {
			marker = "● "
		}
		line := padRight(truncate(marker+label, inner), inner)
		switch {
		case i == m.streamCursor && focused:
			line = styles.Selected.Render(line)
		case name == active:
			line = styles.AccentText.Render(line)
		case name == "":
			line = styles.MutedText.Render(line)
		default:
			line = styles.Text.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	if !m.snapshot.HasStreams && m.snapshot.ListError == nil {
		b.WriteString(styles.FaintText.Render("loading…"))
	} else if len(m.snapshot.Streams) == 0 && m.snapshot.ListError == nil {
		b.WriteString(styles.FaintText.Render("no streams"))
	}

	return m.renderBox(strings.TrimRight(b.String(), "\n"), streamPaneWidth, height, focused)
}

// limitLabel describes the buffer limit for the header.
func limitLabel(n int) string {
	return fmt.Sprintf("%d lines", n)
}

// renderBox draws content inside a bordered pane of the given outer size.
func (m Model) renderBox(content string, width, height int, focused bool) string {
	border := m.theme.Border
	if focused {
		border = m.theme.BorderFocus
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Width(max(width-2, 1)).
		Height(max(height-2, 1)).
		MaxHeight(height).
		Render(content)
}
