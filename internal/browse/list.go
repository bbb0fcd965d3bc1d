package browse

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/contact"
)

// CursorMarker is the prefix shown on the selected contact row.
const CursorMarker = "▸ "

// listState manages the contact list, cursor, and loading state for the
// left pane.
type listState struct {
	entries []contact.Entry
	cursor  int
	loading bool
}

// newListState returns a listState in the loading state.
func newListState() listState {
	return listState{loading: true}
}

// loadContacts returns a tea.Cmd that reads the directory asynchronously,
// applying filter when set, and wraps the result in a ContactListMsg.
func loadContacts(dir Directory, filter string) tea.Cmd {
	return func() tea.Msg {
		if filter == "" {
			return ContactListMsg{Entries: dir.All()}
		}
		return ContactListMsg{Entries: dir.Search(filter)}
	}
}

// apply replaces the entries, keeping the cursor on the same name when it is
// still present.
func (ls listState) apply(entries []contact.Entry) listState {
	selected, _ := ls.Selected()
	ls.loading = false
	ls.entries = append([]contact.Entry(nil), entries...)
	ls.cursor = 0
	for i, e := range ls.entries {
		if e.Name == selected.Name {
			ls.cursor = i
			break
		}
	}
	return ls
}

// Update processes messages for the list state.
func (ls listState) Update(msg tea.Msg) listState {
	switch msg := msg.(type) {
	case ContactListMsg:
		return ls.apply(msg.Entries)

	case tea.KeyMsg:
		if ls.loading || len(ls.entries) == 0 {
			return ls
		}
		switch msg.String() {
		case "up", "k":
			ls.cursor--
			if ls.cursor < 0 {
				ls.cursor = len(ls.entries) - 1
			}
		case "down", "j":
			ls.cursor++
			if ls.cursor >= len(ls.entries) {
				ls.cursor = 0
			}
		case "home", "g":
			ls.cursor = 0
		case "end", "G":
			ls.cursor = len(ls.entries) - 1
		}
	}
	return ls
}

// Selected returns the entry under the cursor.
func (ls listState) Selected() (contact.Entry, bool) {
	if len(ls.entries) == 0 || ls.cursor < 0 || ls.cursor >= len(ls.entries) {
		return contact.Entry{}, false
	}
	return ls.entries[ls.cursor], true
}

// View renders the list, scrolling so the cursor stays within height rows.
func (ls listState) View(height int, filtered bool) string {
	if ls.loading {
		return "Loading contacts..."
	}
	if len(ls.entries) == 0 {
		if filtered {
			return "No matching contacts"
		}
		return "No contacts yet. Add one with: contacts add"
	}

	start := 0
	if height > 0 && ls.cursor >= height {
		start = ls.cursor - height + 1
	}
	end := len(ls.entries)
	if height > 0 && end > start+height {
		end = start + height
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		if i > start {
			b.WriteByte('\n')
		}
		if i == ls.cursor {
			b.WriteString(CursorMarker)
		} else {
			b.WriteString("  ")
		}
		e := ls.entries[i]
		b.WriteString(e.Name + " " + mutedText.Render("["+e.Group+"]"))
	}
	return b.String()
}
