package browse

import "github.com/charmbracelet/bubbles/help"

// HelpBindings returns the help.KeyMap for the given mode,
// providing context-aware help bar content.
func HelpBindings(mode Mode) help.KeyMap {
	switch mode {
	case ModeFilter:
		return FilterKeyMap()
	case ModeConfirm:
		return ConfirmKeyMap()
	case ModeStats:
		return StatsKeyMap()
	default:
		return BrowseKeyMap()
	}
}
