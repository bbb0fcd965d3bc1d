package menu

import (
	"fmt"
	"io"

	"github.com/smileynet/contacts/internal/contact"
)

// PrintEntry writes one contact as a short card.
func PrintEntry(w io.Writer, e contact.Entry) {
	email := e.Email
	if email == "" {
		email = "-"
	}
	_, _ = fmt.Fprintf(w, "\n👤 %s\n", e.Name)
	_, _ = fmt.Fprintf(w, "📞 %s\n", e.Phone)
	_, _ = fmt.Fprintf(w, "📧 %s\n", email)
	_, _ = fmt.Fprintf(w, "👥 %s\n", e.Group)
}

// PrintStats writes the total followed by one line per group.
func PrintStats(w io.Writer, s contact.Stats) {
	_, _ = fmt.Fprintf(w, "Total Contacts: %d\n", s.Total)
	for _, g := range s.Groups {
		_, _ = fmt.Fprintf(w, "%s: %d\n", g.Group, g.Count)
	}
}
