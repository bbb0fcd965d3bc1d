package browse

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
)

// MinLeftWidth is the minimum character width for the left pane.
const MinLeftWidth = 28

// groupColors cycles through distinguishable badge colors.
var groupColors = []lipgloss.AdaptiveColor{
	{Light: "4", Dark: "12"},    // blue
	{Light: "2", Dark: "10"},    // green
	{Light: "5", Dark: "13"},    // magenta
	{Light: "208", Dark: "208"}, // orange
	{Light: "6", Dark: "14"},    // cyan
	{Light: "3", Dark: "11"},    // yellow
}

var (
	mutedText   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "245"})
	titleText   = lipgloss.NewStyle().Bold(true)
	warningText = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "1", Dark: "9"}).Bold(true)
	statusText  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "2", Dark: "10"})
	barStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
)

// GroupBadge returns the group label colored consistently by name.
func GroupBadge(group string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(group))
	c := groupColors[int(h.Sum32()%uint32(len(groupColors)))]
	return lipgloss.NewStyle().Foreground(c).Render(group)
}

// FocusedBorder returns a lipgloss style with an accent-colored rounded border.
func FocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "4", Dark: "12"})
}

// UnfocusedBorder returns a lipgloss style with a dim rounded border.
func UnfocusedBorder() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.AdaptiveColor{Light: "240", Dark: "240"})
}

// PaneWidths calculates the left and right pane widths from a total width.
// Left pane gets 1/3 (minimum MinLeftWidth), right pane gets the rest.
func PaneWidths(totalWidth int) (left, right int) {
	if totalWidth <= 0 {
		return 0, 0
	}
	left = totalWidth / 3
	if left < MinLeftWidth {
		left = MinLeftWidth
	}
	right = totalWidth - left
	if right < 0 {
		right = 0
	}
	return left, right
}
