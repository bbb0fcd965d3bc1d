package browse

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/contacts/internal/contact"
)

// helpBarHeight is the number of lines reserved for the help bar at the bottom.
const helpBarHeight = 1

// statusBarHeight is the number of lines reserved for the status line.
const statusBarHeight = 1

// borderChrome is the number of lines consumed by top + bottom borders.
const borderChrome = 2

// Model is the root Bubble Tea model for the contact browser.
// It manages a two-pane layout with mode-based routing and focus management.
type Model struct {
	dir      Directory
	mode     Mode
	focus    Focus
	width    int
	height   int
	list     listState
	filter   textinput.Model
	confirm  confirmState
	stats    contact.Stats
	status   string
	viewport viewport.Model
	help     help.Model
}

// NewModel creates a browser Model in browse mode with left-pane focus.
func NewModel(dir Directory) Model {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "filter by name"
	ti.CharLimit = 64

	return Model{
		dir:      dir,
		mode:     ModeBrowse,
		focus:    PaneLeft,
		list:     newListState(),
		filter:   ti,
		viewport: viewport.New(0, 0),
		help:     help.New(),
	}
}

// Init starts the initial contact load.
func (m Model) Init() tea.Cmd {
	return loadContacts(m.dir, "")
}

// Update handles incoming messages with mode-based routing, then refreshes
// the right-pane viewport content.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.viewport.SetContent(next.viewRight())
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		_, rightWidth := PaneWidths(msg.Width)
		vpWidth := rightWidth - borderChrome
		if vpWidth < 0 {
			vpWidth = 0
		}
		m.viewport.Width = vpWidth
		m.viewport.Height = m.contentHeight()
		return m, nil

	case ContactListMsg:
		m.list = m.list.Update(msg)
		return m, nil

	case DeleteDoneMsg:
		m.mode = ModeBrowse
		if msg.Err != nil {
			m.list.loading = false
			m.status = fmt.Sprintf("Delete failed: %v", msg.Err)
			return m, nil
		}
		m.status = fmt.Sprintf("Deleted %s", msg.Name)
		return m, loadContacts(m.dir, m.filter.Value())

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey processes key messages with global and mode-specific routing.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	m.status = ""

	switch m.mode {
	case ModeFilter:
		return m.handleFilterKey(msg)
	case ModeConfirm:
		return m.handleConfirmKey(msg)
	case ModeStats:
		switch msg.String() {
		case "esc", "s":
			m.mode = ModeBrowse
		case "q":
			return m, tea.Quit
		}
		return m, nil
	}

	if m.list.loading {
		if msg.String() == "q" {
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "tab":
		if m.focus == PaneLeft {
			m.focus = PaneRight
		} else {
			m.focus = PaneLeft
		}
		return m, nil
	case "/":
		m.mode = ModeFilter
		m.focus = PaneLeft
		return m, m.filter.Focus()
	case "d", "delete":
		if e, ok := m.list.Selected(); ok {
			m.confirm = confirmState{entry: e}
			m.mode = ModeConfirm
		}
		return m, nil
	case "s":
		m.stats = m.dir.Stats()
		m.mode = ModeStats
		m.viewport.GotoTop()
		return m, nil
	case "r":
		m.list.loading = true
		return m, loadContacts(m.dir, m.filter.Value())
	}

	if m.focus == PaneRight {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	before := m.list.cursor
	m.list = m.list.Update(msg)
	if m.list.cursor != before {
		m.viewport.GotoTop()
	}
	return m, nil
}

// handleFilterKey edits the filter, re-querying the directory on every change.
func (m Model) handleFilterKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = ModeBrowse
		m.filter.Blur()
		return m, nil
	case "esc":
		m.mode = ModeBrowse
		m.filter.Blur()
		m.filter.SetValue("")
		m.list = m.list.apply(m.dir.All())
		return m, nil
	}

	prev := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if v := m.filter.Value(); v != prev {
		if v == "" {
			m.list = m.list.apply(m.dir.All())
		} else {
			m.list = m.list.apply(m.dir.Search(v))
		}
	}
	return m, cmd
}

// handleConfirmKey deletes on an explicit confirmation and returns to browse
// mode on anything that cancels.
func (m Model) handleConfirmKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.list.loading {
		return m, nil
	}
	switch msg.String() {
	case "enter", "y":
		name := m.confirm.entry.Name
		dir := m.dir
		m.list.loading = true
		return m, func() tea.Msg {
			return DeleteDoneMsg{Name: name, Err: dir.Delete(name)}
		}
	case "esc", "n", "q":
		m.mode = ModeBrowse
		m.status = "Deletion cancelled"
	}
	return m, nil
}

// contentHeight returns the usable height for pane content,
// accounting for border chrome, the status line, and the help bar.
func (m Model) contentHeight() int {
	h := m.height - borderChrome - helpBarHeight - statusBarHeight
	if h < 1 {
		return 1
	}
	return h
}

// Mode returns the current view mode.
func (m Model) Mode() Mode {
	return m.mode
}

// View renders the two-pane layout with status line and help bar.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	leftWidth, rightWidth := PaneWidths(m.width)
	contentHeight := m.contentHeight()

	var leftStyle, rightStyle lipgloss.Style
	if m.focus == PaneLeft {
		leftStyle = FocusedBorder()
		rightStyle = UnfocusedBorder()
	} else {
		leftStyle = UnfocusedBorder()
		rightStyle = FocusedBorder()
	}

	leftStyle = leftStyle.
		Width(leftWidth - borderChrome).
		Height(contentHeight)
	rightStyle = rightStyle.
		Width(rightWidth - borderChrome).
		Height(contentHeight)

	leftPane := leftStyle.Render(m.viewLeft(contentHeight))
	rightPane := rightStyle.Render(m.viewport.View())
	panes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, rightPane)
	statusLine := statusText.Render(m.status)
	helpView := m.help.View(HelpBindings(m.mode))

	return lipgloss.JoinVertical(lipgloss.Left, panes, statusLine, helpView)
}

// viewLeft renders the list pane, with the filter line on top when active.
func (m Model) viewLeft(height int) string {
	filtered := m.filter.Value() != ""
	if m.mode == ModeFilter || filtered {
		return m.filter.View() + "\n" + m.list.View(height-1, filtered)
	}
	return m.list.View(height, false)
}

// viewRight renders the right pane content based on mode.
func (m Model) viewRight() string {
	switch m.mode {
	case ModeConfirm:
		return m.confirm.View()
	case ModeStats:
		return renderStats(m.stats, m.viewport.Width)
	default:
		e, ok := m.list.Selected()
		if !ok {
			return mutedText.Render("No contact selected")
		}
		return renderDetail(e)
	}
}
