// Package browse implements a two-pane TUI for browsing, filtering, and
// deleting contacts. Separate from internal/menu which drives the
// line-oriented prompt loop.
package browse

import "github.com/smileynet/contacts/internal/contact"

// Mode represents the current browser view mode.
type Mode int

const (
	ModeBrowse  Mode = iota // Browsing the contact list with the detail pane.
	ModeFilter              // Typing a name filter.
	ModeConfirm             // Asking for delete confirmation.
	ModeStats               // Showing group statistics.
)

// Focus represents which pane has keyboard focus.
type Focus int

const (
	PaneLeft  Focus = iota // Left pane (contact list) has focus.
	PaneRight              // Right pane (detail viewport) has focus.
)

// Directory is the contact source the browser reads and mutates.
// *contact.Book satisfies it.
type Directory interface {
	All() []contact.Entry
	Search(term string) []contact.Entry
	Stats() contact.Stats
	Delete(name string) error
}

// --- tea.Msg types ---

// ContactListMsg carries the result of a list load.
type ContactListMsg struct {
	Entries []contact.Entry
}

// DeleteDoneMsg carries the result of a confirmed delete.
type DeleteDoneMsg struct {
	Name string
	Err  error
}
