package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/logscope/internal/session"
)

// renderHeader renders the status bar: logo, server, session badges and the
// selected stream.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	sess := m.snapshot.Session
	compact := m.width < 100
	sep := lipgloss.NewStyle().Background(lipgloss.Color(m.theme.Surface)).Render("  ")

	parts := []string{styles.Logo.Render("logscope")}
	if !compact && m.server != "" {
		parts = append(parts, styles.MutedText.Render(truncateMiddle(m.server, 40)))
	}

	parts = append(parts, styles.Badge(sess.Mode.String(), strings.ToUpper(sess.Mode.String())))
	if sess.Mode != session.ModeIdle {
		parts = append(parts, styles.Badge(sess.Status.String(), strings.ToUpper(sess.Status.String())))
	}

	stream := sess.Stream
	if stream == "" {
		stream = noStreamLabel
	}
	parts = append(parts,
		styles.MutedText.Render("Stream:")+styles.Text.Render(" "+truncate(stream, 30)),
		styles.MutedText.Render("Limit:")+styles.Text.Render(" "+limitLabel(sess.Limit)),
	)

	tail := styles.FaintText.Render("off")
	if sess.Tailing {
		tail = styles.SuccessText.Render("on")
	}
	parts = append(parts, styles.MutedText.Render("Tail:")+styles.Text.Render(" ")+tail)

	if !compact && !m.lastUpdated.IsZero() {
		parts = append(parts, styles.FaintText.Render(m.lastUpdated.Format("15:04:05")))
	}

	return styles.Header.Width(m.width).MaxHeight(1).Render(strings.Join(parts, sep))
}

// renderBanner shows the most relevant problem: a failed stream fetch, a
// failed session or a transient notice. It renders an empty line otherwise so
// the layout does not jump.
func (m Model) renderBanner() string {
	styles := m.theme.Styles()
	width := max(m.width-2, 10)

	var line string
	switch {
	case m.notice != "":
		line = styles.WarningText.Render("! " + truncate(m.notice, width-2))
	case m.snapshot.Session.Err != nil:
		line = styles.DangerText.Render("ERROR ") +
			styles.DangerText.Bold(false).Render(truncate(m.snapshot.Session.Err.Error(), width-6)) +
			styles.FaintText.Render(sessionRecoveryHint(m.snapshot.Session))
	case m.snapshot.ListError != nil:
		line = styles.DangerText.Render("ERROR ") +
			styles.DangerText.Bold(false).Render(truncate(m.snapshot.ListError.Error(), width-20)) +
			styles.FaintText.Render("  r to retry")
	}
	return lipgloss.NewStyle().Padding(0, 1).Width(m.width).MaxHeight(1).Render(line)
}

func sessionRecoveryHint(sess session.Snapshot) string {
	switch sess.Mode {
	case session.ModeTailing:
		return "  t to reconnect"
	case session.ModeSearching:
		return "  s to search again"
	default:
		return ""
	}
}

// renderCommandBar renders the key hints and the log file location.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles()
	bar := m.help.ShortHelpView(m.keys.ShortHelp())
	if m.logPath != "" && m.width >= 120 {
		hint := styles.FaintText.Render(fmt.Sprintf("log %s", truncateMiddle(m.logPath, 40)))
		gap := max(m.width-lipgloss.Width(bar)-lipgloss.Width(hint)-2, 1)
		bar += strings.Repeat(" ", gap) + hint
	}
	return styles.Footer.Width(m.width).MaxHeight(1).Render(bar)
}
