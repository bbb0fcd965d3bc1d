package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/smileynet/contacts/internal/browse"
	"github.com/smileynet/contacts/internal/config"
	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/export"
	"github.com/smileynet/contacts/internal/logging"
	"github.com/smileynet/contacts/internal/menu"
	"github.com/smileynet/contacts/internal/store"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Globals are the flags shared by every command.
type Globals struct {
	Config   string `help:"Extra config file layered over the user and project config." type:"path"`
	DataFile string `help:"Contacts data file (overrides config)." type:"path"`
	LogFile  string `help:"Write JSON logs to this file (overrides config)." type:"path"`
	Verbose  bool   `help:"Log at debug level." short:"v"`
}

// CLI is the top-level command structure for contacts.
type CLI struct {
	Globals

	Version kong.VersionFlag `help:"Show version." short:"V"`
	Menu    MenuCmd          `cmd:"" default:"1" help:"Open the interactive menu."`
	Add     AddCmd           `cmd:"" help:"Add a contact."`
	Search  SearchCmd        `cmd:"" help:"Search contacts by name."`
	Update  UpdateCmd        `cmd:"" help:"Update a contact."`
	Delete  DeleteCmd        `cmd:"" help:"Delete a contact."`
	List    ListCmd          `cmd:"" help:"List all contacts."`
	Export  ExportCmd        `cmd:"" help:"Export contacts to CSV."`
	Stats   StatsCmd         `cmd:"" help:"Show contact counts by group."`
	Browse  BrowseCmd        `cmd:"" help:"Open the interactive contact browser."`
}

// app bundles the dependencies a command needs.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	book   *contact.Book
}

// loadConfig loads layered config from user and project paths, applies env
// overrides, then the global flags.
func (g *Globals) loadConfig() (*config.Config, error) {
	paths := []string{
		os.ExpandEnv("$HOME/.config/contacts/config.yaml"),
		".contacts.yaml",
	}
	if g.Config != "" {
		if _, err := os.Stat(g.Config); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		paths = append(paths, g.Config)
	}
	cfg, err := config.LoadLayered(paths...)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()

	if g.DataFile != "" {
		cfg.Storage.DataFile = g.DataFile
	}
	if g.LogFile != "" {
		cfg.Logging.File = g.LogFile
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// open loads config, builds the logger, and loads the book. An unreadable
// data file is reported on w and replaced by an empty book.
func (g *Globals) open(w io.Writer) (*app, error) {
	cfg, err := g.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		File:    cfg.Logging.File,
		Level:   cfg.Logging.Level,
		Verbose: g.Verbose,
	})
	if err != nil {
		return nil, err
	}

	fs := store.NewFileStore(cfg.Storage.DataFile, logger)
	contacts, err := fs.Load()
	if err != nil {
		if !errors.Is(err, store.ErrCorrupt) {
			_ = logger.Sync()
			return nil, err
		}
		_, _ = fmt.Fprintln(w, "⚠️ Invalid JSON file detected. Resetting contacts.")
	}

	book := contact.NewBook(fs, contacts,
		contact.WithLogger(logger),
		contact.WithDefaultGroup(cfg.Contacts.DefaultGroup),
	)
	logger.Debug("book opened",
		zap.String("path", fs.Path()),
		zap.Int("contacts", book.Len()),
	)
	return &app{cfg: cfg, logger: logger, book: book}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

// MenuCmd runs the line-oriented menu on stdin/stdout.
type MenuCmd struct{}

// Run executes the menu command.
func (c *MenuCmd) Run(g *Globals) error {
	a, err := g.open(os.Stdout)
	if err != nil {
		return fmt.Errorf("menu: %w", err)
	}
	defer a.close()
	return c.run(a, os.Stdin, os.Stdout)
}

func (c *MenuCmd) run(a *app, in io.Reader, out io.Writer) error {
	m := menu.New(a.book, in, out,
		menu.WithExportPath(a.cfg.Export.CSVFile),
		menu.WithGroups(a.cfg.Contacts.Groups),
	)
	return m.Run()
}

// AddCmd adds one contact.
type AddCmd struct {
	Name  string `arg:"" help:"Contact name."`
	Phone string `required:"" help:"Phone number (10-15 digits, punctuation ignored)."`
	Email string `help:"Email address."`
	Group string `help:"Group name (defaults to the configured default group)."`
}

// Run executes the add command.
func (c *AddCmd) Run(g *Globals) error {
	a, err := g.open(os.Stdout)
	if err != nil {
		return fmt.Errorf("add: %w", err)
	}
	defer a.close()
	return c.run(a, os.Stdout)
}

func (c *AddCmd) run(a *app, w io.Writer) error {
	name := strings.TrimSpace(c.Name)
	if _, err := a.book.Add(name, c.Phone, c.Email, c.Group); err != nil {
		return fmt.Errorf("add: %w", err)
	}
	_, _ = fmt.Fprintf(w, "✅ Contact '%s' added successfully\n", name)
	return nil
}

// SearchCmd prints contacts whose name contains a term.
type SearchCmd struct {
	Term string `arg:"" help:"Case-insensitive name substring."`
}

// Run executes the search command.
func (c *SearchCmd) Run(g *Globals) error {
	a, err := g.open(os.Stdout)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	defer a.close()
	return c.run(a, os.Stdout)
}

func (c *SearchCmd) run(a *app, w io.Writer) error {
	results := a.book.Search(c.Term)
	if len(results) == 0 {
		_, _ = fmt.Fprintln(w, "❌ No contacts found")
		return nil
	}
	for _, e := range results {
		menu.PrintEntry(w, e)
	}
	return nil
}

// UpdateCmd changes fields of an existing contact. Omitted flags keep the
// current value.
type UpdateCmd struct {
	Name  string `arg:"" help:"Contact name."`
	Phone string `help:"New phone number."`
	Email string `help:"New email address."`
	Group string `help:"New group."`
}

// Run executes the update command.
func (c *UpdateCmd) Run(g *Globals) error {
	a, err := g.open(os.Stdout)
	if err != nil {
		return fmt.Errorf("update: %w", err)
	}
	defer a.close()
	return c.run(a, os.Stdout)
}

func (c *UpdateCmd) run(a *app, w io.Writer) error {
	p := contact.Patch{Phone: &c.Phone, Email: &c.Email, Group: &c.Group}
	if _, err := a.book.Update(strings.TrimSpace(c.Name), p); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	_, _ = fmt.Fprintln(w, "✅ Contact updated")
	return nil
}

// DeleteCmd removes a contact after confirmation.
type DeleteCmd struct {
	Name string `arg:"" help:"Contact name."`
	Yes  bool   `short:"y" help:"Delete without asking for confirmation."`
}

// Run executes the delete command.
func (c *DeleteCmd) Run(g *Globals) error {
	a, err := g.open(os.Stdout)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	defer a.close()
	return c.run(a, os.Stdin, os.Stdout)
}

func (c *DeleteCmd) run(a *app, in io.Reader, w io.Writer) error {
	name := strings.TrimSpace(c.Name)
	if !a.book.Has(name) {
		return fmt.Errorf("delete: %q: %w", name, contact.ErrNotFound)
	}
	if !c.Yes {
		_, _ = fmt.Fprint(w, "Are you sure? (y/n): ")
		sc := bufio.NewScanner(in)
		answer := ""
		if sc.Scan() {
			answer = sc.Text()
		}
		if !menu.Confirmed(answer) {
			_, _ = fmt.Fprintln(w, "Deletion cancelled")
			return nil
		}
	}
	if err := a.book.Delete(name); err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	_, _ = fmt.Fprintln(w, "✅ Contact deleted")
	return nil
}

// ListCmd prints every contact sorted by name.
type ListCmd struct{}

// Run executes the list command.
func (c *ListCmd) Run(g *Globals) error {
	a, err := g.open(os.Stdout)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}
	defer a.close()
	return c.run(a, os.Stdout)
}

func (c *ListCmd) run(a *app, w io.Writer) error {
	entries := a.book.All()
	if len(entries) == 0 {
		_, _ = fmt.Fprintln(w, "No contacts available")
		return nil
	}
	for _, e := range entries {
		menu.PrintEntry(w, e)
	}
	return nil
}

// ExportCmd writes all contacts to a CSV file.
type ExportCmd struct {
	Output string `short:"o" help:"CSV destination (defaults to the configured export file)." type:"path"`
}

// Run executes the export command.
func (c *ExportCmd) Run(g *Globals) error {
	a, err := g.open(os.Stdout)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer a.close()
	return c.run(a, os.Stdout)
}

func (c *ExportCmd) run(a *app, w io.Writer) error {
	path := c.Output
	if path == "" {
		path = a.cfg.Export.CSVFile
	}
	n, err := export.ExportFile(path, a.book.All())
	if err != nil {
		return err
	}
	a.logger.Info("contacts exported", zap.String("path", path), zap.Int("rows", n))
	_, _ = fmt.Fprintf(w, "✅ Contacts exported to CSV (%d rows, %s)\n", n, path)
	return nil
}

// StatsCmd prints the total and per-group counts.
type StatsCmd struct{}

// Run executes the stats command.
func (c *StatsCmd) Run(g *Globals) error {
	a, err := g.open(os.Stdout)
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}
	defer a.close()
	return c.run(a, os.Stdout)
}

func (c *StatsCmd) run(a *app, w io.Writer) error {
	menu.PrintStats(w, a.book.Stats())
	return nil
}

// BrowseCmd opens the full-screen browser.
type BrowseCmd struct{}

// teaRunner abstracts Bubble Tea program execution for testing.
type teaRunner interface {
	Run() (tea.Model, error)
}

// Run builds the book and launches the browser TUI.
func (c *BrowseCmd) Run(g *Globals) error {
	isTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !isTTY {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}
	a, err := g.open(os.Stderr)
	if err != nil {
		return fmt.Errorf("browse: %w", err)
	}
	defer a.close()

	prog := tea.NewProgram(browse.NewModel(a.book), tea.WithAltScreen())
	return c.run(isTTY, prog)
}

func (c *BrowseCmd) run(isTTY bool, prog teaRunner) error {
	if !isTTY {
		return fmt.Errorf("browse: requires a terminal (TTY)")
	}
	_, err := prog.Run()
	return err
}

// Exit codes returned by the contacts CLI.
const (
	exitSuccess   = 0
	exitOperation = 1
	exitSetup     = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	for _, target := range []error{
		contact.ErrEmptyName,
		contact.ErrExists,
		contact.ErrNotFound,
		contact.ErrInvalidPhone,
		contact.ErrInvalidEmail,
	} {
		if errors.Is(err, target) {
			return exitOperation
		}
	}
	return exitSetup
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("contacts"),
		kong.Description("A command-line contact book."),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run(&cli.Globals)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
