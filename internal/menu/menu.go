// Package menu implements the line-oriented interactive contact menu.
package menu

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/export"
)

// errEndOfInput is raised by prompts when the input stream is exhausted.
var errEndOfInput = errors.New("menu: end of input")

// Choices lists the menu entries in display order; the key is the 1-based index.
var Choices = []string{
	"Add Contact",
	"Search Contact",
	"Update Contact",
	"Delete Contact",
	"View All Contacts",
	"Export to CSV",
	"View Statistics",
	"Exit",
}

// Menu runs the interactive loop over a Book.
type Menu struct {
	book       *contact.Book
	in         *bufio.Scanner
	out        io.Writer
	exportPath string
	groups     []string
}

// Option configures a Menu.
type Option func(*Menu)

// WithExportPath sets the CSV export destination.
func WithExportPath(path string) Option {
	return func(m *Menu) {
		if path != "" {
			m.exportPath = path
		}
	}
}

// WithGroups sets the group names suggested by the add prompt.
func WithGroups(groups []string) Option {
	return func(m *Menu) {
		m.groups = append([]string(nil), groups...)
	}
}

// New creates a Menu reading answers from in and writing prompts to out.
func New(book *contact.Book, in io.Reader, out io.Writer, opts ...Option) *Menu {
	m := &Menu{
		book:       book,
		in:         bufio.NewScanner(in),
		out:        out,
		exportPath: "contacts_export.csv",
		groups:     []string{"Friends", "Work", "Family", contact.DefaultGroup},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run shows the menu until the user exits or input ends, then saves the book.
func (m *Menu) Run() error {
	for {
		m.printMenu()
		choice, err := m.prompt("Enter your choice: ")
		if err != nil {
			return m.exit()
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = m.add()
		case "2":
			err = m.search()
		case "3":
			err = m.update()
		case "4":
			err = m.delete()
		case "5":
			m.viewAll()
		case "6":
			m.exportCSV()
		case "7":
			PrintStats(m.out, m.book.Stats())
		case "8":
			return m.exit()
		default:
			m.println("❌ Invalid choice")
		}
		if errors.Is(err, errEndOfInput) {
			return m.exit()
		}
	}
}

func (m *Menu) printMenu() {
	m.println("\n========= CONTACT MANAGEMENT SYSTEM =========")
	for i, c := range Choices {
		m.printf("%d. %s\n", i+1, c)
	}
}

func (m *Menu) exit() error {
	if err := m.book.Save(); err != nil {
		m.printf("❌ %v\n", err)
		return err
	}
	m.println("👋 Exiting... Contacts Saved.")
	return nil
}

func (m *Menu) add() error {
	name, err := m.prompt("Enter contact name: ")
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		m.println("❌ Name cannot be empty")
		return nil
	}
	if m.book.Has(name) {
		m.println("⚠️ Contact already exists!")
		return nil
	}

	var phone string
	for {
		raw, err := m.prompt("Enter phone number: ")
		if err != nil {
			return err
		}
		if phone, err = contact.ValidatePhone(raw); err == nil {
			break
		}
		m.println("❌ Invalid phone number")
	}

	var email string
	for {
		raw, err := m.prompt("Enter email (optional): ")
		if err != nil {
			return err
		}
		email = strings.TrimSpace(raw)
		if contact.ValidateEmail(email) == nil {
			break
		}
		m.println("❌ Invalid email")
	}

	group, err := m.prompt(m.groupPrompt())
	if err != nil {
		return err
	}

	if _, err := m.book.Add(name, phone, email, group); err != nil {
		m.printf("❌ %v\n", err)
		return nil
	}
	m.printf("✅ Contact '%s' added successfully\n", name)
	return nil
}

func (m *Menu) groupPrompt() string {
	if len(m.groups) == 0 {
		return "Group: "
	}
	return fmt.Sprintf("Group (%s): ", strings.Join(m.groups, "/"))
}

func (m *Menu) search() error {
	term, err := m.prompt("Enter name to search: ")
	if err != nil {
		return err
	}
	results := m.book.Search(term)
	if len(results) == 0 {
		m.println("❌ No contacts found")
		return nil
	}
	for _, e := range results {
		PrintEntry(m.out, e)
	}
	return nil
}

func (m *Menu) update() error {
	name, err := m.prompt("Enter contact name to update: ")
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if !m.book.Has(name) {
		m.println("❌ Contact not found")
		return nil
	}

	var patch contact.Patch

	phone, err := m.prompt("New phone (press Enter to skip): ")
	if err != nil {
		return err
	}
	if strings.TrimSpace(phone) != "" {
		if _, verr := contact.ValidatePhone(phone); verr != nil {
			m.println("❌ Invalid phone number, keeping the current one")
		} else {
			patch.Phone = &phone
		}
	}

	email, err := m.prompt("New email (press Enter to skip): ")
	if err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	if email != "" {
		if verr := contact.ValidateEmail(email); verr != nil {
			m.println("❌ Invalid email, keeping the current one")
		} else {
			patch.Email = &email
		}
	}

	group, err := m.prompt("New group (press Enter to skip): ")
	if err != nil {
		return err
	}
	patch.Group = &group

	if _, err := m.book.Update(name, patch); err != nil {
		m.printf("❌ %v\n", err)
		return nil
	}
	m.println("✅ Contact updated")
	return nil
}

func (m *Menu) delete() error {
	name, err := m.prompt("Enter contact name to delete: ")
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if !m.book.Has(name) {
		m.println("❌ Contact not found")
		return nil
	}

	answer, err := m.prompt("Are you sure? (y/n): ")
	if err != nil {
		return err
	}
	if !Confirmed(answer) {
		m.println("Deletion cancelled")
		return nil
	}

	if err := m.book.Delete(name); err != nil {
		m.printf("❌ %v\n", err)
		return nil
	}
	m.println("✅ Contact deleted")
	return nil
}

func (m *Menu) viewAll() {
	if m.book.Len() == 0 {
		m.println("No contacts available")
		return
	}
	for _, e := range m.book.All() {
		PrintEntry(m.out, e)
	}
}

func (m *Menu) exportCSV() {
	n, err := export.ExportFile(m.exportPath, m.book.All())
	if err != nil {
		m.printf("❌ %v\n", err)
		return
	}
	m.printf("✅ Contacts exported to CSV (%d rows, %s)\n", n, m.exportPath)
}

// prompt writes label and reads one line of input.
func (m *Menu) prompt(label string) (string, error) {
	_, _ = io.WriteString(m.out, label)
	if !m.in.Scan() {
		m.println("")
		return "", errEndOfInput
	}
	return m.in.Text(), nil
}

func (m *Menu) println(s string) {
	_, _ = fmt.Fprintln(m.out, s)
}

func (m *Menu) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(m.out, format, args...)
}

// Confirmed reports whether answer is an explicit yes.
func Confirmed(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), "y")
}
