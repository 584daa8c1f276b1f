package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/logscope/internal/session"
)

// logPaneSize returns the viewport size for the current window.
func (m Model) logPaneSize() (int, int) {
	w := m.width - streamPaneWidth - 2
	h := m.bodyHeight() - 3 // borders plus the title line
	return max(w, 1), max(h, 1)
}

func (m *Model) initLogViewport() {
	w, h := m.logPaneSize()
	m.logViewport = viewport.New(w, h)
	m.logViewport.Style = lipgloss.NewStyle()
}

// updateLogViewport resizes the viewport and refreshes its content when the
// session snapshot changed.
func (m *Model) updateLogViewport() {
	w, h := m.logPaneSize()
	m.logViewport.Width = w
	m.logViewport.Height = h

	// renderedVersion holds Version+1 so that zero means "never rendered".
	sess := m.snapshot.Session
	if sess.Version+1 != m.renderedVersion {
		m.logViewport.SetContent(m.renderLogContent())
		m.renderedVersion = sess.Version + 1
	}
	if m.follow {
		m.logViewport.GotoBottom()
	}
}

func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	sess := m.snapshot.Session
	if len(sess.Lines) == 0 {
		return styles.FaintText.Render(emptyLogHint(sess))
	}
	return strings.Join(sess.Lines, "\n")
}

func emptyLogHint(sess session.Snapshot) string {
	switch {
	case sess.Mode == session.ModeIdle && sess.Stream == "":
		return "Pick a stream and press enter."
	case sess.Mode == session.ModeIdle:
		return "Press t to tail " + sess.Stream + " or s to search it."
	case sess.Status == session.StatusLoading && sess.Mode == session.ModeTailing:
		return "Connecting…"
	case sess.Status == session.StatusLoading:
		return "Searching…"
	case sess.Mode == session.ModeTailing && sess.Status == session.StatusReady:
		return "Waiting for lines…"
	case sess.Mode == session.ModeSearching && sess.Status == session.StatusReady:
		return "No lines matched."
	default:
		return ""
	}
}

func (m Model) logTitle() string {
	sess := m.snapshot.Session
	switch sess.Mode {
	case session.ModeTailing:
		return fmt.Sprintf("Tail %s (%d/%d)", sess.Stream, len(sess.Lines), sess.Limit)
	case session.ModeSearching:
		title := fmt.Sprintf("Search %s %s → %s", sess.Stream,
			sess.Range.Start.Local().Format("01-02 15:04:05"),
			sess.Range.End.Local().Format("01-02 15:04:05"))
		if sess.Term != "" {
			title += fmt.Sprintf(" %q", sess.Term)
		}
		return fmt.Sprintf("%s (%d)", title, len(sess.Lines))
	default:
		return "Logs"
	}
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	width, _ := m.logPaneSize()

	title := m.logTitle()
	if m.snapshot.Session.Status == session.StatusLoading {
		title = m.spinner.View() + " " + title
	}
	follow := "paused"
	if m.follow {
		follow = "follow"
	}
	header := styles.AccentText.Bold(true).Render(truncate(title, width-len(follow)-1))
	gap := max(width-lipgloss.Width(header)-len(follow), 1)
	header += strings.Repeat(" ", gap) + styles.FaintText.Render(follow)

	content := header + "\n" + m.logViewport.View()
	return m.renderBox(content, m.width-streamPaneWidth, m.bodyHeight(), m.focus == paneLogs)
}

// handleLogsKey scrolls the log pane. Scrolling away from the bottom pauses
// follow mode; reaching the bottom does not resume it.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
		m.follow = false
	case key.Matches(msg, m.keys.Top):
		m.logViewport.GotoTop()
		m.follow = false
	case key.Matches(msg, m.keys.Bottom):
		m.logViewport.GotoBottom()
	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
		m.follow = false
	case key.Matches(msg, m.keys.HalfPageDown):
		m.logViewport.HalfPageDown()
	case key.Matches(msg, m.keys.HalfPageUp):
		m.logViewport.HalfPageUp()
		m.follow = false
	}
	return m, nil
}
