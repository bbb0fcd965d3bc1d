package browse

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/contact"
)

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(s string) string {
	var out []byte
	i := 0
	for i < len(s) {
		if s[i] == '\x1b' && i+1 < len(s) && s[i+1] == '[' {
			j := i + 2
			for j < len(s) && (s[j] < 'A' || s[j] > 'Z') && (s[j] < 'a' || s[j] > 'z') {
				j++
			}
			if j < len(s) {
				j++
			}
			i = j
		} else {
			out = append(out, s[i])
			i++
		}
	}
	return string(out)
}

// containsPlainText checks if s contains sub after stripping ANSI escapes.
func containsPlainText(s, sub string) bool {
	return strings.Contains(stripANSI(s), sub)
}

// sampleBook returns an in-memory book with three contacts.
func sampleBook(t *testing.T) *contact.Book {
	t.Helper()
	b := contact.NewBook(nil, nil)
	for _, c := range []struct{ name, phone, email, group string }{
		{"Alice Smith", "5551234567", "alice@example.com", "Friends"},
		{"Bob Jones", "5559876543", "", "Work"},
		{"Carol Smith", "5550001111", "carol@example.com", "Family"},
	} {
		if _, err := b.Add(c.name, c.phone, c.email, c.group); err != nil {
			t.Fatal(err)
		}
	}
	return b
}

// failingDir wraps a Directory and fails every Delete.
type failingDir struct {
	Directory
}

func (failingDir) Delete(string) error { return errors.New("read-only") }

// loaded returns a sized model with the initial load applied.
func loaded(t *testing.T, dir Directory) Model {
	t.Helper()
	m := NewModel(dir)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	return send(t, m, m.Init()())
}

// send applies msg and returns the concrete model.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// sendCmd applies msg and returns the model and command.
func sendCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}
