package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Tab        key.Binding
	ShiftTab   key.Binding
	Escape     key.Binding

	// View switching
	ViewLog    key.Binding
	ViewCache  key.Binding
	ViewStatus key.Binding

	// Paging
	TogglePause key.Binding
	PageBack    key.Binding
	PageForward key.Binding
	GoLive      key.Binding
	WiderWindow key.Binding
	NarrowerWin key.Binding

	// Filters
	Filters      key.Binding
	ClearFilters key.Binding

	// Scrolling within a panel
	Up           key.Binding
	Down         key.Binding
	HalfPageUp   key.Binding
	HalfPageDown key.Binding

	// Modal input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Cycle views"),
		),
		ShiftTab: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "Cycle views (reverse)"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to log"),
		),

		// View switching
		ViewLog: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Query log"),
		),
		ViewCache: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Cache"),
		),
		ViewStatus: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Proxy status"),
		),

		// Paging
		TogglePause: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Pause/resume"),
		),
		PageBack: key.NewBinding(
			key.WithKeys("pgup", "b"),
			key.WithHelp("pgup/b", "Older page"),
		),
		PageForward: key.NewBinding(
			key.WithKeys("pgdown", "f"),
			key.WithHelp("pgdn/f", "Newer page"),
		),
		GoLive: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Jump to live"),
		),
		WiderWindow: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "Larger window"),
		),
		NarrowerWin: key.NewBinding(
			key.WithKeys("-", "_"),
			key.WithHelp("-", "Smaller window"),
		),

		// Filters
		Filters: key.NewBinding(
			key.WithKeys("/", "F"),
			key.WithHelp("/", "Edit filters"),
		),
		ClearFilters: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Clear filters"),
		),

		// Scrolling
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Scroll down"),
		),
		HalfPageUp: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "Half page up"),
		),
		HalfPageDown: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "Half page down"),
		),

		// Modal input
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Apply"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.TogglePause, k.Filters, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ViewLog, k.ViewCache, k.ViewStatus},
		{k.TogglePause, k.PageBack, k.PageForward, k.GoLive},
		{k.WiderWindow, k.NarrowerWin},
		{k.Filters, k.ClearFilters},
		{k.Up, k.Down, k.HalfPageDown, k.HalfPageUp},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
