package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/logscope/internal/logapi"
)

const (
	defaultSearchStart = "15m"
	defaultSearchEnd   = "now"
)

const (
	fieldStart = iota
	fieldEnd
	fieldTerm
	fieldCount
)

// searchForm collects a time range and term.
type searchForm struct {
	inputs [fieldCount]textinput.Model
	focus  int
	err    string
}

func newSearchForm() searchForm {
	var f searchForm
	labels := [fieldCount]string{"Start ", "End   ", "Term  "}
	placeholders := [fieldCount]string{
		"15m, 2h, 2024-05-01 16:50 or RFC 3339",
		"now or a timestamp",
		"optional text filter",
	}
	for i := range f.inputs {
		ti := textinput.New()
		ti.Prompt = labels[i]
		ti.Placeholder = placeholders[i]
		ti.CharLimit = 64
		f.inputs[i] = ti
	}
	f.reset()
	return f
}

// reset restores the default range and keeps the previous term.
func (f *searchForm) reset() {
	f.inputs[fieldStart].SetValue(defaultSearchStart)
	f.inputs[fieldEnd].SetValue(defaultSearchEnd)
	f.err = ""
	f.setFocus(fieldStart)
}

func (f *searchForm) setFocus(idx int) {
	f.focus = (idx + fieldCount) % fieldCount
	for i := range f.inputs {
		if i == f.focus {
			f.inputs[i].Focus()
		} else {
			f.inputs[i].Blur()
		}
	}
}

func (f *searchForm) setWidth(w int) {
	for i := range f.inputs {
		f.inputs[i].Width = max(w-lipgloss.Width(f.inputs[i].Prompt)-1, 10)
	}
}

// values parses the form against now.
func (f searchForm) values(now time.Time) (logapi.TimeRange, string, error) {
	start, err := logapi.ParseTime(f.inputs[fieldStart].Value(), now)
	if err != nil {
		return logapi.TimeRange{}, "", fmt.Errorf("start: %w", err)
	}
	end, err := logapi.ParseTime(f.inputs[fieldEnd].Value(), now)
	if err != nil {
		return logapi.TimeRange{}, "", fmt.Errorf("end: %w", err)
	}
	return logapi.TimeRange{Start: start, End: end}, strings.TrimSpace(f.inputs[fieldTerm].Value()), nil
}

func (m *Model) openSearch() {
	if m.snapshot.Session.Stream == "" {
		m.notice = "select a stream before searching"
		return
	}
	m.search.reset()
	m.search.setWidth(m.searchModalWidth() - 6)
	m.showSearch = true
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.showSearch = false
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.search.setFocus(m.search.focus + 1)
		return m, nil
	case key.Matches(msg, m.keys.PrevField):
		m.search.setFocus(m.search.focus - 1)
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		rng, term, err := m.search.values(m.now())
		if err != nil {
			m.search.err = err.Error()
			return m, nil
		}
		m.showSearch = false
		m.follow = false
		m.focus = paneLogs
		m.runIntent(func() error { return m.ctrl.SubmitSearch(rng, term) })
		return m, nil
	}

	var cmd tea.Cmd
	m.search.inputs[m.search.focus], cmd = m.search.inputs[m.search.focus].Update(msg)
	m.search.err = ""
	return m, cmd
}

func (m Model) searchModalWidth() int {
	return min(max(m.width-8, 30), 72)
}

func (m Model) renderSearch() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Search " + m.snapshot.Session.Stream))
	b.WriteString("\n\n")
	for i := range m.search.inputs {
		b.WriteString(m.search.inputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if m.search.err != "" {
		b.WriteString(styles.DangerText.Render(m.search.err))
	} else {
		b.WriteString(styles.FaintText.Render("times: now, 15m, 2h, 2024-05-01 16:50, RFC 3339"))
	}
	b.WriteString("\n")
	b.WriteString(m.help.ShortHelpView(m.keys.searchFormKeys()))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.BorderFocus)).
		Padding(1, 2).
		Width(m.searchModalWidth())

	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
