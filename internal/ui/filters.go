package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dinotail/dinotail/internal/filter"
	"github.com/dinotail/dinotail/internal/querylog"
)

var filterPlaceholders = map[filter.Field]string{
	filter.FieldDate:   "e.g. 14:0[0-5]",
	filter.FieldClient: "e.g. ^192\\.168\\.",
	filter.FieldQName:  "e.g. (ads|track)",
	filter.FieldQType:  "e.g. ^(A|AAAA)$",
	filter.FieldRCode:  "e.g. nxdomain",
	filter.FieldStatus: "e.g. blocked",
}

// initFilterInputs creates one text input per filterable field.
func (m *Model) initFilterInputs() {
	m.filterInputs = make([]textinput.Model, len(filter.Fields))
	for i, f := range filter.Fields {
		ti := textinput.New()
		ti.Placeholder = filterPlaceholders[f]
		ti.CharLimit = 200
		ti.Width = 36
		m.filterInputs[i] = ti
	}
}

// openFilters opens the filter modal pre-filled with the active patterns.
func (m *Model) openFilters() {
	var active filter.Options
	if m.session != nil {
		active = m.session.Filter()
	}
	for i, f := range filter.Fields {
		m.filterInputs[i].SetValue(active.Get(f))
	}
	m.filterErr = nil
	m.focusFilter(0)
	m.showFilters = true
}

func (m *Model) focusFilter(idx int) {
	for i := range m.filterInputs {
		m.filterInputs[i].Blur()
	}
	m.filterFocusIdx = idx
	m.filterInputs[idx].Focus()
}

// filterOptions collects the modal's inputs.
func (m Model) filterOptions() filter.Options {
	var opts filter.Options
	for i, f := range filter.Fields {
		opts.Set(f, m.filterInputs[i].Value())
	}
	return opts
}

// handleFiltersKey handles keyboard input for the filter modal.
func (m Model) handleFiltersKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.filterInputs)

	switch {
	case key.Matches(msg, m.keys.Escape):
		m.showFilters = false
		m.filterErr = nil
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		if !m.applyFilters() {
			return m, nil
		}
		m.showFilters = false
		return m, m.refreshCmd()

	case key.Matches(msg, m.keys.Tab), msg.String() == "down":
		m.focusFilter((m.filterFocusIdx + 1) % n)
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab), msg.String() == "up":
		m.focusFilter((m.filterFocusIdx - 1 + n) % n)
		return m, nil

	case msg.String() == "ctrl+c":
		// Clear all fields (modal-specific, doesn't quit)
		for i := range m.filterInputs {
			m.filterInputs[i].SetValue("")
		}
		m.filterErr = nil
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInputs[m.filterFocusIdx], cmd = m.filterInputs[m.filterFocusIdx].Update(msg)
	return m, cmd
}

// applyFilters installs the modal's patterns. An invalid pattern keeps the
// modal open on the offending field and leaves the active filter in place.
func (m *Model) applyFilters() bool {
	if m.session == nil {
		return true
	}
	opts := m.filterOptions()
	if err := m.session.SetFilter(opts); err != nil {
		m.filterErr = err
		var perr *filter.InvalidPatternError
		if errors.As(err, &perr) {
			for i, f := range filter.Fields {
				if f == perr.Field {
					m.focusFilter(i)
					break
				}
			}
		}
		return false
	}
	m.filterErr = nil
	m.prefs.Filter = opts
	m.savePrefs()
	return true
}

// clearFilters drops every pattern.
func (m *Model) clearFilters() {
	if err := m.session.SetFilter(filter.Options{}); err != nil {
		m.notice = err.Error()
		return
	}
	m.prefs.Filter = filter.Options{}
	m.savePrefs()
}

// rcodeNotes explains response codes the table lists under several names.
func rcodeNotes() []string {
	var notes []string
	for _, code := range querylog.AmbiguousRCodes() {
		notes = append(notes, fmt.Sprintf("rcode %d is %s; filters see %s",
			code, strings.Join(querylog.RCodeAliases(code), " or "), querylog.RCodeName(code)))
	}
	return notes
}

// renderFilters renders the filter modal.
func (m Model) renderFilters() string {
	styles := m.theme.Styles()

	var b strings.Builder

	b.WriteString(styles.Text.Bold(true).Render("Filters"))
	b.WriteString("\n")
	b.WriteString(styles.FaintText.Render(strings.Repeat("─", 48)))
	b.WriteString("\n\n")

	b.WriteString(styles.MutedText.Render("Patterns are regular expressions, all must match."))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("qtype and rcode ignore case. Empty matches all."))
	b.WriteString("\n")
	for _, note := range rcodeNotes() {
		b.WriteString(styles.FaintText.Render(note))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, f := range filter.Fields {
		label := padRight(f.String()+":", 9)
		if i == m.filterFocusIdx {
			label = styles.AccentText.Render(label)
		} else {
			label = styles.MutedText.Render(label)
		}
		b.WriteString(label)
		b.WriteString(m.filterInputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.filterErr != nil {
		b.WriteString(styles.DangerText.Render(truncate(m.filterErr.Error(), 120)))
		b.WriteString("\n\n")
	}

	b.WriteString(styles.FaintText.Render("Enter: Apply  •  Esc: Cancel  •  Ctrl+C: Clear"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(60)

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
