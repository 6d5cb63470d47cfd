package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// renderTitledBox draws content inside a border with the title embedded in
// the top edge. Content lines beyond the box height are dropped.
func (m Model) renderTitledBox(title, content string, width, height int, focused bool) string {
	var borderColorStr, bgColorStr string
	if focused {
		borderColorStr = m.theme.BorderFocus
		bgColorStr = m.theme.FocusBg
	} else {
		borderColorStr = m.theme.Border
		bgColorStr = m.theme.SurfaceAlt
	}
	bg := NewBgStyle(bgColorStr)
	borderStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColorStr))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	innerWidth := width - 2
	if innerWidth < 4 {
		innerWidth = 4
	}
	title = truncate(title, innerWidth-4)
	titleLen := len([]rune(title))
	leftPad := (innerWidth - titleLen - 2) / 2
	rightPad := innerWidth - titleLen - 2 - leftPad

	topBorder := bg.Render("┌", borderStyle) +
		bg.Render(strings.Repeat("─", leftPad), borderStyle) +
		bg.Render(" "+title+" ", titleStyle) +
		bg.Render(strings.Repeat("─", rightPad), borderStyle) +
		bg.Render("┐", borderStyle)

	bottomBorder := bg.Render("└", borderStyle) +
		bg.Render(strings.Repeat("─", innerWidth), borderStyle) +
		bg.Render("┘", borderStyle)

	contentStyle := lipgloss.NewStyle().Width(innerWidth).Background(lipgloss.Color(bgColorStr))
	contentLines := strings.Split(content, "\n")
	boxHeight := height - 2

	lines := make([]string, 0, boxHeight+2)
	lines = append(lines, topBorder)
	for i := 0; i < boxHeight; i++ {
		var line string
		if i < len(contentLines) {
			line = ansi.Truncate(contentLines[i], innerWidth, "")
		}
		lines = append(lines,
			bg.Render("│", borderStyle)+
				contentStyle.Render(line)+
				bg.Render("│", borderStyle))
	}
	lines = append(lines, bottomBorder)
	return strings.Join(lines, "\n")
}

// updateCacheViewport lists the proxy's cache entries.
func (m *Model) updateCacheViewport() {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.cacheViewport.Width
	m.cacheViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	entries := m.snapshot.CacheEntries
	if len(entries) == 0 {
		m.cacheViewport.SetContent(bg.FillLine(bg.Render("Cache is empty", styles.MutedText), width))
		return
	}
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = bg.FillLine(
			bg.Render(fmt.Sprintf("%5d │ ", i+1), styles.FaintText)+bg.Render(entry, styles.Text),
			width)
	}
	m.cacheViewport.SetContent(strings.Join(lines, "\n"))
}

// renderCache renders the cache panel.
func (m Model) renderCache() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles()
	title := fmt.Sprintf("Cache (%d entries)", len(m.snapshot.CacheEntries))
	box := m.renderTitledBox(title, m.cacheViewport.View(), m.width, m.contentHeight(), true)
	status := bg.Render(fmt.Sprintf("updated %s", formatAge(m.snapshot.LastUpdated, time.Now())), styles.FaintText)
	return box + "\n" + bg.FillLine(status, m.width)
}

// statusRows builds the label/value pairs of the proxy status panel.
func (m Model) statusRows(now time.Time) [][2]string {
	snap := m.snapshot
	list := func(items []string) string {
		if len(items) == 0 {
			return "-"
		}
		return strings.Join(items, ", ")
	}

	feed := snap.Feed
	feedState := "disconnected"
	if feed.Connected {
		feedState = "connected since " + feed.ConnectedSince.Format("15:04:05")
	}
	rows := [][2]string{
		{"source", m.source},
		{"feed", feedState},
		{"last event", formatAge(feed.LastEvent, now)},
		{"accepted", fmt.Sprintf("%d", feed.Accepted)},
		{"malformed", fmt.Sprintf("%d", feed.Dropped)},
		{"reconnects", fmt.Sprintf("%d", feed.Reconnects)},
	}
	if feed.LastError != nil {
		rows = append(rows, [2]string{"feed error", feed.LastError.Error()})
	}

	rows = append(rows,
		[2]string{"", ""},
		[2]string{"polled", formatAge(snap.LastUpdated, now)},
		[2]string{"poll failures", fmt.Sprintf("%d", snap.ConsecutiveFailures)},
	)
	if snap.LastError != nil {
		rows = append(rows, [2]string{"poll error", snap.LastError.Error()})
	}

	if snap.HasConfig {
		c := snap.Config
		rows = append(rows,
			[2]string{"", ""},
			[2]string{"listen", list(c.Listen)},
			[2]string{"upstream", list(c.Upstream)},
			[2]string{"acl", list(c.ACL)},
			[2]string{"blocklists", list(c.Blocklist)},
			[2]string{"localzone", list(c.Localzone)},
			[2]string{"localrr", list(c.LocalRR)},
			[2]string{"dns64", fmt.Sprintf("%t %s", c.DNS64, c.DNS64Prefix)},
			[2]string{"refresh", fmt.Sprintf("%t %s", c.Refresh, c.RefreshInterval)},
			[2]string{"api-bind", c.APIBind},
		)
	}
	rows = append(rows, [2]string{"blocked names", fmt.Sprintf("%d", snap.BlockListCount)})

	st := m.stats
	rows = append(rows,
		[2]string{"", ""},
		[2]string{"view", st.String()},
		[2]string{"received", fmt.Sprintf("%d", st.Total)},
		[2]string{"recomputes", fmt.Sprintf("%d", st.Recomputes)},
	)

	if m.logFile == "" {
		return rows
	}
	rows = append(rows, [2]string{"", ""}, [2]string{"log file", m.logFile})
	switch {
	case m.logErr != nil:
		rows = append(rows, [2]string{"log error", m.logErr.Error()})
	case len(m.logLines) == 0:
		rows = append(rows, [2]string{"log", "-"})
	default:
		for i, line := range m.logLines {
			label := " "
			if i == 0 {
				label = "log"
			}
			rows = append(rows, [2]string{label, line})
		}
	}
	return rows
}

// updateStatusViewport renders the proxy status rows.
func (m *Model) updateStatusViewport() {
	bg := NewBgStyle(m.theme.FocusBg)
	styles := m.theme.Styles()
	width := m.statusViewport.Width
	m.statusViewport.Style = lipgloss.NewStyle().Background(lipgloss.Color(m.theme.FocusBg))

	rows := m.statusRows(time.Now())
	lines := make([]string, len(rows))
	for i, row := range rows {
		if row[0] == "" {
			lines[i] = bg.FillLine("", width)
			continue
		}
		valueStyle := styles.Text
		if strings.HasSuffix(row[0], "error") {
			valueStyle = styles.DangerText
		}
		lines[i] = bg.FillLine(
			bg.Render(padRight(row[0], 14), styles.MutedText)+bg.Render(truncate(row[1], max(width-14, 1)), valueStyle),
			width)
	}
	m.statusViewport.SetContent(strings.Join(lines, "\n"))
}

// renderStatus renders the proxy status panel.
func (m Model) renderStatus() string {
	bg := NewBgStyle(m.theme.Surface)
	styles := m.theme.Styles()
	box := m.renderTitledBox("Proxy", m.statusViewport.View(), m.width, m.contentHeight(), true)
	line := "status polled every few seconds"
	if m.snapshot.IsOffline() {
		line = "proxy API unreachable, retrying with backoff"
	}
	return box + "\n" + bg.FillLine(bg.Render(line, styles.FaintText), m.width)
}
