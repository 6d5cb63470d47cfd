package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dinotail/dinotail/internal/pager"
	"github.com/dinotail/dinotail/internal/querylog"
)

// handleLogKey processes keyboard input for the query log view.
func (m Model) handleLogKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.TogglePause):
		m.session.TogglePause()
		m.notice = ""

	case key.Matches(msg, m.keys.PageBack):
		// Paging only moves a frozen view.
		if m.session.Mode() == pager.Live {
			m.session.Pause()
		}
		if !m.session.PageBack() {
			m.notice = "oldest page"
		} else {
			m.notice = ""
		}

	case key.Matches(msg, m.keys.PageForward):
		m.session.PageForward()
		m.notice = ""

	case key.Matches(msg, m.keys.GoLive):
		m.session.Resume()
		m.notice = ""

	case key.Matches(msg, m.keys.WiderWindow):
		m.setWindow(m.session.Window() + windowStep)

	case key.Matches(msg, m.keys.NarrowerWin):
		m.setWindow(m.session.Window() - windowStep)

	case key.Matches(msg, m.keys.Filters):
		m.openFilters()
		return m, nil

	case key.Matches(msg, m.keys.ClearFilters):
		m.clearFilters()

	default:
		return m, scrollViewport(&m.logViewport, msg, m.keys)
	}

	return m, m.refreshCmd()
}

// setWindow clamps n to [1, capacity] and remembers the choice.
func (m *Model) setWindow(n int) {
	if capacity := m.stats.Capacity; capacity > 0 && n > capacity {
		n = capacity
	}
	if n < 1 {
		n = 1
	}
	if n == m.session.Window() {
		return
	}
	if err := m.session.SetWindow(n); err != nil {
		m.notice = err.Error()
		return
	}
	m.prefs.WindowSize = n
	m.savePrefs()
}

// resizePanels fits every viewport to the terminal.
func (m *Model) resizePanels() {
	width := m.width - 4
	height := m.contentHeight() - 2
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	for _, vp := range []*viewport.Model{&m.logViewport, &m.cacheViewport, &m.statusViewport} {
		vp.Width = width
		vp.Height = height
	}
}

// updateLogViewport re-renders the record rows.
func (m *Model) updateLogViewport() {
	m.logViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))
	m.logViewport.SetContent(m.renderLogContent())
	if m.stats.Mode == pager.Live {
		// Newest first, so live means the top.
		m.logViewport.GotoTop()
	}
}

// renderLog renders the query log view.
func (m Model) renderLog() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles()

	box := m.renderTitledBox(m.logTitle(), m.logViewport.View(), m.width, m.contentHeight(), true)
	return box + "\n" + m.renderLogStatus(styles, bg)
}

// logTitle returns the plain text title for the log box.
func (m Model) logTitle() string {
	title := "Query Log"
	if m.stats.Mode == pager.Paused {
		title += " (paused)"
	}
	if m.stats.Filter != "" {
		title += " (filtered)"
	}
	return title
}

// renderLogStatus renders the line under the log box.
func (m Model) renderLogStatus(styles Styles, bg BgStyle) string {
	st := m.stats
	var parts []string

	if st.Mode == pager.Paused {
		parts = append(parts, bg.Render("PAUSED", styles.WarningText.Bold(true)))
		parts = append(parts, bg.Render(fmt.Sprintf("%d older", st.Available), styles.MutedText))
	} else {
		parts = append(parts, bg.Render("LIVE", styles.SuccessText))
	}

	parts = append(parts, bg.Render(
		fmt.Sprintf("%d shown  window %d  buffer %d/%d", len(m.records), st.Window, st.Length, st.Capacity),
		styles.FaintText))

	if st.Filter != "" {
		parts = append(parts, bg.Render("filter: "+truncate(st.Filter, 60), styles.AccentText))
	}
	if st.Resumes > 0 {
		parts = append(parts, bg.Render(fmt.Sprintf("auto-resumed %d", st.Resumes), styles.FaintText))
	}

	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return bg.FillLine(strings.Join(parts, sep), m.width)
}

// renderLogContent renders one styled line per record.
func (m Model) renderLogContent() string {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.logViewport.Width

	if len(m.records) == 0 {
		msg := "Waiting for queries"
		if m.stats.Filter != "" {
			msg = "No queries match the filter"
		}
		return bg.FillLine(bg.Render(msg, styles.MutedText), width)
	}

	lines := make([]string, len(m.records))
	for i, rec := range m.records {
		lines[i] = bg.FillLine(m.renderRecord(rec, width, styles, bg), width)
	}
	return strings.Join(lines, "\n")
}

// renderRecord styles the columns of one record.
func (m Model) renderRecord(rec querylog.Record, width int, styles Styles, bg BgStyle) string {
	cols := recordColumns(rec, width)
	segments := make([]string, 0, len(cols))
	for _, c := range cols {
		var style lipgloss.Style
		switch c.kind {
		case columnDate, columnQueryTime:
			style = styles.FaintText
		case columnClient:
			style = styles.MutedText
		case columnQType:
			style = styles.AccentText
		case columnRCode:
			style = lipgloss.NewStyle().Foreground(lipgloss.Color(m.theme.RCodeColor(rec.RCode)))
		case columnStatus:
			if c.text == "" {
				continue
			}
			segments = append(segments, styles.StatusStyle(rec.StatusLabel()).Render(c.text))
			continue
		default:
			style = styles.Text
		}
		segments = append(segments, bg.Render(c.text, style))
	}
	return strings.Join(segments, bg.Space())
}

type columnKind int

const (
	columnDate columnKind = iota
	columnClient
	columnQName
	columnQType
	columnRCode
	columnQueryTime
	columnStatus
)

type column struct {
	kind columnKind
	text string
}

// recordColumns lays a record out for the given width. Fixed columns are
// padded so rows align; the query name takes whatever is left.
func recordColumns(rec querylog.Record, width int) []column {
	compact := width < LayoutCompactWidth
	wide := width >= LayoutWideWidth

	date := rec.FormattedDate()
	dateWidth := colDateWide
	if compact {
		date = rec.Timestamp.UTC().Format("15:04:05")
		dateWidth = colDateCompact
	}

	status := rec.StatusLabel()
	fixed := dateWidth + colClient + colQType + colRCode
	gaps := 4
	if wide {
		fixed += colQueryTime
		gaps++
	}
	if status != "" {
		fixed += len(status) + 2 // badge padding
		gaps++
	}
	nameWidth := width - fixed - gaps
	if nameWidth < 10 {
		nameWidth = 10
	}

	cols := []column{
		{columnDate, fit(date, dateWidth)},
		{columnClient, fit(rec.Client, colClient)},
		{columnQName, padRight(truncateLeft(rec.QName, nameWidth), nameWidth)},
		{columnQType, fit(rec.QType, colQType)},
		{columnRCode, fit(rec.RCodeName(), colRCode)},
	}
	if wide {
		cols = append(cols, column{columnQueryTime, fmt.Sprintf("%*s", colQueryTime, rec.FormatQueryTime())})
	}
	cols = append(cols, column{columnStatus, status})
	return cols
}
