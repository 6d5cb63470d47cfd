package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dinotail/dinotail/internal/pager"
)

// renderHeader renders the status bar: feed health, view mode, buffer
// usage and proxy errors.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	var parts []string
	parts = append(parts, bg.Render("dinotail", styles.Logo))

	// Feed indicator
	feed := m.snapshot.Feed
	switch {
	case m.store == nil || strings.HasPrefix(m.source, "replay"):
		parts = append(parts, bg.Render("● REPLAY", styles.InfoText))
	case feed.Connected:
		parts = append(parts, bg.Render("● ON", styles.SuccessText))
	case feed.Reconnects > 0:
		label := "● " + classifyConnectionError(feed.LastError)
		parts = append(parts, bg.Render(label, styles.DangerText)+bg.Space()+
			bg.Render("Retrying...", styles.WarningText.Bold(true)))
	default:
		parts = append(parts, bg.Render("● CONNECTING", styles.WarningText))
	}

	// View mode
	if m.stats.Mode == pager.Paused {
		parts = append(parts, bg.Render("PAUSED", styles.WarningText.Bold(true)))
	} else {
		parts = append(parts, bg.Render("LIVE", styles.SuccessText))
	}

	parts = append(parts,
		bg.Render("Buffer:", styles.MutedText)+bg.Space()+
			bg.Render(fmt.Sprintf("%d/%d", m.stats.Length, m.stats.Capacity), styles.Text))

	if !compact {
		dropped := styles.MutedText
		if feed.Dropped > 0 {
			dropped = styles.WarningText
		}
		parts = append(parts,
			bg.Render("Seen:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", feed.Accepted), styles.Text)+bg.Spaces(2)+
				bg.Render("Bad:", styles.MutedText)+bg.Space()+
				bg.Render(fmt.Sprintf("%d", feed.Dropped), dropped))
		if m.snapshot.HasConfig || m.snapshot.BlockListCount > 0 {
			parts = append(parts,
				bg.Render("Blocked:", styles.MutedText)+bg.Space()+
					bg.Render(fmt.Sprintf("%d", m.snapshot.BlockListCount), styles.Text))
		}
		if m.source != "" {
			parts = append(parts, bg.Render(truncate(m.source, 40), styles.FaintText))
		}
	}

	if m.snapshot.IsOffline() {
		parts = append(parts, bg.Render("API OFFLINE", styles.DangerText))
	} else if m.snapshot.LastError != nil {
		limit := 60
		if compact {
			limit = 30
		}
		parts = append(parts,
			bg.Render("ERROR", styles.DangerText.Bold(true))+bg.Space()+
				bg.Render(truncate(m.snapshot.LastError.Error(), limit), styles.DangerText))
	}

	if m.notice != "" {
		parts = append(parts,
			bg.Render("!", styles.WarningText.Bold(true))+bg.Space()+
				bg.Render(m.notice, styles.WarningText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

// classifyConnectionError turns a transport error into a short label.
func classifyConnectionError(err error) string {
	if err == nil {
		return "OFFLINE"
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "connection refused"):
		return "OFFLINE"
	case strings.Contains(msg, "no such host"):
		return "HOST NOT FOUND"
	case strings.Contains(msg, "timeout"):
		return "TIMEOUT"
	case strings.Contains(msg, "closed"):
		return "CLOSED"
	default:
		return "ERROR"
	}
}

// renderCommandBar renders the key hints for the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.currentView {
	case ViewCache, ViewStatus:
		commands = []cmd{
			{"j/k", "Scroll"},
			{"l", "Log"},
			{"c", "Cache"},
			{"s", "Status"},
			{"Esc", "Back"},
			{"?", "More"},
		}
	default:
		pauseLabel := "Pause"
		if m.stats.Mode == pager.Paused {
			pauseLabel = "Resume"
		}
		commands = []cmd{
			{"Space", pauseLabel},
			{"b/f", "Page"},
			{"+/-", fmt.Sprintf("Window %d", m.stats.Window)},
			{"/", "Filters"},
			{"c", "Cache"},
			{"s", "Status"},
			{"?", "More"},
		}
	}

	colon := bg.Sep(":")
	sep := bg.Spaces(2)

	segments := make([]string, 0, len(commands)+2)
	for _, c := range commands {
		segments = append(segments,
			bg.Render(c.key, styles.AccentText)+colon+bg.Render(c.desc, styles.MutedText))
	}

	if m.currentView == ViewLog && m.stats.Filter != "" {
		segments = append(segments, bg.Render(truncate(m.stats.Filter, 30), styles.AccentText))
	}

	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(strings.Join(segments, sep))
}

// formatAge renders how long ago t was, for the status panel.
func formatAge(t time.Time, now time.Time) string {
	if t.IsZero() {
		return "never"
	}
	d := now.Sub(t)
	switch {
	case d < time.Second:
		return "just now"
	case d < time.Minute:
		return fmt.Sprintf("%ds ago", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return t.Format("15:04:05")
	}
}
