package browse

import (
	"fmt"
	"strings"
	"time"

	"github.com/smileynet/contacts/internal/contact"
)

// timeLayout is how timestamps are shown in the detail pane.
const timeLayout = "2006-01-02 15:04"

// renderDetail renders the right pane for a single contact.
func renderDetail(e contact.Entry) string {
	email := e.Email
	if email == "" {
		email = mutedText.Render("-")
	}

	var b strings.Builder
	b.WriteString(titleText.Render(e.Name))
	b.WriteString("\n")
	fmt.Fprintf(&b, "\n  Phone    %s", e.Phone)
	fmt.Fprintf(&b, "\n  Email    %s", email)
	fmt.Fprintf(&b, "\n  Group    %s", GroupBadge(e.Group))
	fmt.Fprintf(&b, "\n\n  Created  %s", formatTime(e.CreatedAt))
	fmt.Fprintf(&b, "\n  Updated  %s", formatTime(e.UpdatedAt))
	return b.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return mutedText.Render("unknown")
	}
	return t.Local().Format(timeLayout)
}

// renderStats renders the group summary with proportional bars.
func renderStats(s contact.Stats, width int) string {
	var b strings.Builder
	b.WriteString(titleText.Render(fmt.Sprintf("Total Contacts: %d", s.Total)))
	if len(s.Groups) == 0 {
		return b.String()
	}
	b.WriteString("\n")

	nameWidth := 0
	maxCount := 0
	for _, g := range s.Groups {
		if len(g.Group) > nameWidth {
			nameWidth = len(g.Group)
		}
		if g.Count > maxCount {
			maxCount = g.Count
		}
	}

	// Leave room for the indent, name column, and count.
	barMax := width - nameWidth - 12
	if barMax < 1 {
		barMax = 1
	}

	for _, g := range s.Groups {
		n := g.Count * barMax / maxCount
		if n < 1 {
			n = 1
		}
		fmt.Fprintf(&b, "\n  %-*s %s %d", nameWidth, g.Group, barStyle.Render(strings.Repeat("█", n)), g.Count)
	}
	return b.String()
}
