package browse

import (
	"fmt"
	"strings"

	"github.com/smileynet/contacts/internal/contact"
)

// confirmState holds the contact awaiting delete confirmation.
type confirmState struct {
	entry contact.Entry
}

// View renders the confirmation screen.
func (cs confirmState) View() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", warningText.Render(fmt.Sprintf("Delete %s?", cs.entry.Name)))
	fmt.Fprintf(&b, "\n  Phone: %s", cs.entry.Phone)
	if cs.entry.Email != "" {
		fmt.Fprintf(&b, "\n  Email: %s", cs.entry.Email)
	}
	fmt.Fprintf(&b, "\n  Group: %s", cs.entry.Group)
	b.WriteString("\n\n  The contact is removed from the data file immediately.")
	b.WriteString("\n\n  [Enter] Confirm   [Esc] Cancel")
	return b.String()
}
