package browse

import "github.com/charmbracelet/bubbles/key"

// browseKeys holds key bindings for browse mode.
type browseKeys struct {
	Up      key.Binding
	Down    key.Binding
	Filter  key.Binding
	Delete  key.Binding
	Stats   key.Binding
	Tab     key.Binding
	Refresh key.Binding
	Quit    key.Binding
}

// ShortHelp returns the browse mode bindings for the help bar.
func (k browseKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Filter, k.Delete, k.Stats, k.Tab, k.Refresh, k.Quit}
}

// FullHelp returns the browse mode bindings grouped for expanded help.
func (k browseKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Tab},
		{k.Filter, k.Delete, k.Stats},
		{k.Refresh, k.Quit},
	}
}

// filterKeys holds key bindings while typing a filter.
type filterKeys struct {
	Apply  key.Binding
	Cancel key.Binding
}

// ShortHelp returns the filter mode bindings for the help bar.
func (k filterKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Apply, k.Cancel}
}

// FullHelp returns the filter mode bindings grouped for expanded help.
func (k filterKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Apply, k.Cancel}}
}

// confirmKeys holds key bindings for the delete confirmation screen.
type confirmKeys struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns the confirm mode bindings for the help bar.
func (k confirmKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Cancel}
}

// FullHelp returns the confirm mode bindings grouped for expanded help.
func (k confirmKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Cancel}}
}

// statsKeys holds key bindings for the statistics view.
type statsKeys struct {
	Back key.Binding
	Quit key.Binding
}

// ShortHelp returns the stats mode bindings for the help bar.
func (k statsKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Back, k.Quit}
}

// FullHelp returns the stats mode bindings grouped for expanded help.
func (k statsKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Back, k.Quit}}
}

// BrowseKeyMap returns the key bindings for browse mode.
func BrowseKeyMap() browseKeys {
	return browseKeys{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete"),
		),
		Stats: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "stats"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// FilterKeyMap returns the key bindings for filter mode.
func FilterKeyMap() filterKeys {
	return filterKeys{
		Apply: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "apply"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear"),
		),
	}
}

// ConfirmKeyMap returns the key bindings for confirm mode.
func ConfirmKeyMap() confirmKeys {
	return confirmKeys{
		Confirm: key.NewBinding(
			key.WithKeys("enter", "y"),
			key.WithHelp("enter/y", "delete"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "n"),
			key.WithHelp("esc/n", "cancel"),
		),
	}
}

// StatsKeyMap returns the key bindings for stats mode.
func StatsKeyMap() statsKeys {
	return statsKeys{
		Back: key.NewBinding(
			key.WithKeys("esc", "s"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}
