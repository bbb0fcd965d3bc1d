package main

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/smileynet/contacts/internal/contact"
	"github.com/smileynet/contacts/internal/store"
)

// errExitCalled is a sentinel used to catch kong's os.Exit calls in tests.
var errExitCalled = errors.New("exit called")

// isolate points HOME and the CONTACTS_* variables away from the real user.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	for _, k := range []string{
		"CONTACTS_DATA_FILE",
		"CONTACTS_EXPORT_FILE",
		"CONTACTS_DEFAULT_GROUP",
		"CONTACTS_LOG_FILE",
		"CONTACTS_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	return dir
}

// openApp opens an app on a data file inside a fresh temp dir.
func openApp(t *testing.T) (*app, *Globals) {
	t.Helper()
	dir := isolate(t)
	g := &Globals{DataFile: filepath.Join(dir, "contacts.json")}
	a, err := g.open(&bytes.Buffer{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(a.close)
	return a, g
}

// reopen loads the data file again from disk.
func reopen(t *testing.T, g *Globals) *app {
	t.Helper()
	a, err := g.open(&bytes.Buffer{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	return a
}

func seed(t *testing.T, a *app, name, phone, email, group string) {
	t.Helper()
	if _, err := a.book.Add(name, phone, email, group); err != nil {
		t.Fatal(err)
	}
}

func TestCLI_Parsing(t *testing.T) {
	t.Run("version flag prints version commit and date", func(t *testing.T) {
		// Given: a CLI parser with version, commit, and date fields
		var cli CLI
		var buf bytes.Buffer
		versionStr := "v1.0.0 abc1234 2026-01-01T00:00:00Z"
		k, err := kong.New(&cli,
			kong.Vars{"version": versionStr},
			kong.Writers(&buf, &buf),
			kong.Exit(func(int) { panic(errExitCalled) }),
		)
		if err != nil {
			t.Fatal(err)
		}

		// When: --version flag is passed
		defer func() {
			r := recover()
			if r == nil {
				t.Fatal("expected panic from --version flag")
			}
			err, ok := r.(error)
			if !ok || !errors.Is(err, errExitCalled) {
				panic(r)
			}

			// Then: version, commit, and date are all present in output
			output := buf.String()
			for _, want := range []string{"v1.0.0", "abc1234", "2026-01-01T00:00:00Z"} {
				if !strings.Contains(output, want) {
					t.Errorf("version output = %q, want to contain %q", output, want)
				}
			}
		}()

		k.Parse([]string{"--version"}) //nolint:errcheck // --version triggers panic via Exit hook
	})

	t.Run("no args selects the menu", func(t *testing.T) {
		var cli CLI
		k, err := kong.New(&cli, kong.Vars{"version": "test"})
		if err != nil {
			t.Fatal(err)
		}

		ctx, err := k.Parse([]string{})

		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if ctx.Command() != "menu" {
			t.Errorf("command = %q, want menu", ctx.Command())
		}
	})

	t.Run("add takes name and flags", func(t *testing.T) {
		var cli CLI
		k, err := kong.New(&cli, kong.Vars{"version": "test"})
		if err != nil {
			t.Fatal(err)
		}

		_, err = k.Parse([]string{"add", "Alice", "--phone", "555-123-4567", "--email", "a@b.co", "--group", "Work"})

		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		got := cli.Add
		if got.Name != "Alice" || got.Phone != "555-123-4567" || got.Email != "a@b.co" || got.Group != "Work" {
			t.Errorf("add = %+v", got)
		}
	})

	t.Run("add requires phone", func(t *testing.T) {
		var cli CLI
		k, err := kong.New(&cli, kong.Vars{"version": "test"})
		if err != nil {
			t.Fatal(err)
		}

		_, err = k.Parse([]string{"add", "Alice"})

		if err == nil {
			t.Error("expected error without --phone")
		}
	})

	t.Run("delete yes flag and globals", func(t *testing.T) {
		var cli CLI
		k, err := kong.New(&cli, kong.Vars{"version": "test"})
		if err != nil {
			t.Fatal(err)
		}

		ctx, err := k.Parse([]string{"--verbose", "delete", "Bob", "-y"})

		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if ctx.Command() != "delete <name>" {
			t.Errorf("command = %q", ctx.Command())
		}
		if !cli.Delete.Yes || cli.Delete.Name != "Bob" || !cli.Verbose {
			t.Errorf("delete = %+v, verbose = %v", cli.Delete, cli.Verbose)
		}
	})
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"not found", fmt.Errorf("delete: %w", contact.ErrNotFound), exitOperation},
		{"exists", fmt.Errorf("add: %w", contact.ErrExists), exitOperation},
		{"invalid phone", fmt.Errorf("add: %w", contact.ErrInvalidPhone), exitOperation},
		{"invalid email", contact.ErrInvalidEmail, exitOperation},
		{"empty name", contact.ErrEmptyName, exitOperation},
		{"setup", errors.New("config: bad"), exitSetup},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Errorf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAddCmd(t *testing.T) {
	// Given: an empty book
	a, g := openApp(t)
	var out bytes.Buffer

	// When: a contact is added
	cmd := &AddCmd{Name: "Alice", Phone: "(555) 123-4567", Email: "alice@example.com"}
	if err := cmd.run(a, &out); err != nil {
		t.Fatal(err)
	}

	// Then: it is reported and persisted with the default group
	if !strings.Contains(out.String(), "Contact 'Alice' added successfully") {
		t.Errorf("output = %q", out.String())
	}
	got, err := reopen(t, g).book.Get("Alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.Phone != "5551234567" || got.Group != contact.DefaultGroup {
		t.Errorf("stored = %+v", got)
	}
}

func TestAddCmd_Errors(t *testing.T) {
	tests := []struct {
		name string
		cmd  AddCmd
		want error
	}{
		{"duplicate", AddCmd{Name: "Alice", Phone: "5551234567"}, contact.ErrExists},
		{"short phone", AddCmd{Name: "Bob", Phone: "12345"}, contact.ErrInvalidPhone},
		{"bad email", AddCmd{Name: "Bob", Phone: "5551234567", Email: "nope"}, contact.ErrInvalidEmail},
		{"blank name", AddCmd{Name: "  ", Phone: "5551234567"}, contact.ErrEmptyName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := openApp(t)
			seed(t, a, "Alice", "5551234567", "", "")

			err := tt.cmd.run(a, &bytes.Buffer{})

			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
			if exitCode(err) != exitOperation {
				t.Errorf("exitCode = %d, want %d", exitCode(err), exitOperation)
			}
		})
	}
}

func TestSearchCmd(t *testing.T) {
	a, _ := openApp(t)
	seed(t, a, "Alice Smith", "5551234567", "alice@example.com", "Friends")
	seed(t, a, "Bob Jones", "5559876543", "", "Work")

	var out bytes.Buffer
	if err := (&SearchCmd{Term: "ALICE"}).run(a, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "👤 Alice Smith") || strings.Contains(out.String(), "Bob") {
		t.Errorf("output = %q", out.String())
	}

	out.Reset()
	if err := (&SearchCmd{Term: "zed"}).run(a, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No contacts found") {
		t.Errorf("output = %q", out.String())
	}
}

func TestUpdateCmd(t *testing.T) {
	a, g := openApp(t)
	seed(t, a, "Alice", "5551234567", "alice@example.com", "Friends")

	var out bytes.Buffer
	if err := (&UpdateCmd{Name: "Alice", Group: "Work"}).run(a, &out); err != nil {
		t.Fatal(err)
	}

	got, err := reopen(t, g).book.Get("Alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.Group != "Work" || got.Phone != "5551234567" || got.Email != "alice@example.com" {
		t.Errorf("stored = %+v", got)
	}
	if !strings.Contains(out.String(), "Contact updated") {
		t.Errorf("output = %q", out.String())
	}
}

func TestUpdateCmd_Errors(t *testing.T) {
	a, _ := openApp(t)
	seed(t, a, "Alice", "5551234567", "", "")

	if err := (&UpdateCmd{Name: "Nobody", Group: "Work"}).run(a, &bytes.Buffer{}); !errors.Is(err, contact.ErrNotFound) {
		t.Errorf("missing contact: err = %v", err)
	}
	if err := (&UpdateCmd{Name: "Alice", Phone: "12"}).run(a, &bytes.Buffer{}); !errors.Is(err, contact.ErrInvalidPhone) {
		t.Errorf("bad phone: err = %v", err)
	}
}

func TestDeleteCmd_Confirmation(t *testing.T) {
	tests := []struct {
		name        string
		cmd         DeleteCmd
		input       string
		wantDeleted bool
		wantOutput  string
	}{
		{"yes flag", DeleteCmd{Name: "Alice", Yes: true}, "", true, "Contact deleted"},
		{"answer y", DeleteCmd{Name: "Alice"}, "y\n", true, "Contact deleted"},
		{"answer Y", DeleteCmd{Name: "Alice"}, "Y\n", true, "Contact deleted"},
		{"answer n", DeleteCmd{Name: "Alice"}, "n\n", false, "Deletion cancelled"},
		{"answer yes", DeleteCmd{Name: "Alice"}, "yes\n", false, "Deletion cancelled"},
		{"no input", DeleteCmd{Name: "Alice"}, "", false, "Deletion cancelled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, g := openApp(t)
			seed(t, a, "Alice", "5551234567", "", "")
			var out bytes.Buffer

			if err := tt.cmd.run(a, strings.NewReader(tt.input), &out); err != nil {
				t.Fatal(err)
			}

			if got := !reopen(t, g).book.Has("Alice"); got != tt.wantDeleted {
				t.Errorf("deleted = %v, want %v", got, tt.wantDeleted)
			}
			if !strings.Contains(out.String(), tt.wantOutput) {
				t.Errorf("output = %q, want %q", out.String(), tt.wantOutput)
			}
		})
	}
}

func TestCommands_TrimNames(t *testing.T) {
	// Given a contact added with a padded name
	a, g := openApp(t)
	var out bytes.Buffer
	if err := (&AddCmd{Name: " Bob ", Phone: "5559876543"}).run(a, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "Contact 'Bob' added successfully") {
		t.Errorf("add output = %q", out.String())
	}

	// When it is updated and deleted by the padded name
	if err := (&UpdateCmd{Name: " Bob ", Group: "Work"}).run(a, &bytes.Buffer{}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := (&DeleteCmd{Name: " Bob ", Yes: true}).run(a, strings.NewReader(""), &bytes.Buffer{}); err != nil {
		t.Fatalf("delete: %v", err)
	}

	// Then the stored record is gone
	if reopen(t, g).book.Has("Bob") {
		t.Error("Bob should be deleted")
	}
}

func TestDeleteCmd_NotFound(t *testing.T) {
	a, _ := openApp(t)
	var out bytes.Buffer

	err := (&DeleteCmd{Name: "Nobody"}).run(a, strings.NewReader("y\n"), &out)

	if !errors.Is(err, contact.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if strings.Contains(out.String(), "Are you sure") {
		t.Error("missing contact should not prompt")
	}
}

func TestListCmd(t *testing.T) {
	a, _ := openApp(t)
	var out bytes.Buffer

	if err := (&ListCmd{}).run(a, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "No contacts available") {
		t.Errorf("empty output = %q", out.String())
	}

	seed(t, a, "Zed", "5551234567", "", "")
	seed(t, a, "Amy", "5559876543", "", "")
	out.Reset()
	if err := (&ListCmd{}).run(a, &out); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	if strings.Index(s, "Amy") > strings.Index(s, "Zed") {
		t.Errorf("list should be sorted by name:\n%s", s)
	}
}

func TestExportCmd(t *testing.T) {
	a, _ := openApp(t)
	seed(t, a, "Alice", "5551234567", "alice@example.com", "Friends")
	path := filepath.Join(t.TempDir(), "out.csv")
	var out bytes.Buffer

	if err := (&ExportCmd{Output: path}).run(a, &out); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[1][0] != "Alice" || rows[1][3] != "Friends" {
		t.Errorf("rows = %v", rows)
	}
	if !strings.Contains(out.String(), "1 rows") {
		t.Errorf("output = %q", out.String())
	}
}

func TestExportCmd_DefaultPath(t *testing.T) {
	dir := isolate(t)
	t.Setenv("CONTACTS_EXPORT_FILE", filepath.Join(dir, "env.csv"))
	g := &Globals{DataFile: filepath.Join(dir, "contacts.json")}
	a, err := g.open(&bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	defer a.close()

	if err := (&ExportCmd{}).run(a, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "env.csv")); err != nil {
		t.Errorf("export file not written: %v", err)
	}
}

func TestStatsCmd(t *testing.T) {
	a, _ := openApp(t)
	seed(t, a, "Alice", "5551234567", "", "Friends")
	seed(t, a, "Bob", "5559876543", "", "Friends")
	seed(t, a, "Carol", "5550001111", "", "Work")
	var out bytes.Buffer

	if err := (&StatsCmd{}).run(a, &out); err != nil {
		t.Fatal(err)
	}

	want := "Total Contacts: 3\nFriends: 2\nWork: 1\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestMenuCmd_UsesConfig(t *testing.T) {
	dir := isolate(t)
	t.Setenv("CONTACTS_DEFAULT_GROUP", "Misc")
	g := &Globals{DataFile: filepath.Join(dir, "contacts.json")}
	a, err := g.open(&bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	defer a.close()
	var out bytes.Buffer

	in := strings.NewReader("1\nAlice\n5551234567\n\n\n8\n")
	if err := (&MenuCmd{}).run(a, in, &out); err != nil {
		t.Fatal(err)
	}

	got, err := reopen(t, g).book.Get("Alice")
	if err != nil {
		t.Fatal(err)
	}
	if got.Group != "Misc" {
		t.Errorf("group = %q, want Misc", got.Group)
	}
	if !strings.Contains(out.String(), "Exiting... Contacts Saved.") {
		t.Errorf("output = %q", out.String())
	}
}

func TestOpen_CorruptDataFile(t *testing.T) {
	// Given: a data file that is not valid JSON
	dir := isolate(t)
	path := filepath.Join(dir, "contacts.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	g := &Globals{DataFile: path}
	var out bytes.Buffer

	// When: the app opens
	a, err := g.open(&out)

	// Then: it warns and continues with an empty book
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.close()
	if a.book.Len() != 0 {
		t.Errorf("book has %d contacts, want 0", a.book.Len())
	}
	if !strings.Contains(out.String(), "Invalid JSON file detected") {
		t.Errorf("output = %q", out.String())
	}
}

func TestOpen_BadTimestampKeepsContacts(t *testing.T) {
	// Given: valid JSON where one record has an unparseable timestamp
	dir := isolate(t)
	path := filepath.Join(dir, "contacts.json")
	content := `{"Alice": {"phone": "5551234567", "email": "", "group": "Friends"},
 "Bob": {"phone": "5559876543", "email": null, "group": "Work", "created_at": "yesterday"}}`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	g := &Globals{DataFile: path}
	var out bytes.Buffer

	// When: the app opens and the menu exits straight away
	a, err := g.open(&out)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer a.close()
	if err := (&MenuCmd{}).run(a, strings.NewReader("8\n"), &out); err != nil {
		t.Fatal(err)
	}

	// Then: no reset warning is shown and both contacts are still on disk
	if strings.Contains(out.String(), "Invalid JSON file detected") {
		t.Errorf("output = %q, want no reset warning", out.String())
	}
	if n := reopen(t, g).book.Len(); n != 2 {
		t.Errorf("book has %d contacts after exit, want 2", n)
	}
}

func TestOpen_UnreadableDataFile(t *testing.T) {
	dir := isolate(t)
	g := &Globals{DataFile: dir}

	_, err := g.open(&bytes.Buffer{})

	if err == nil {
		t.Fatal("expected error when the data file is a directory")
	}
	if errors.Is(err, store.ErrCorrupt) {
		t.Error("read failure should not be reported as corruption")
	}
	if exitCode(err) != exitSetup {
		t.Errorf("exitCode = %d, want %d", exitCode(err), exitSetup)
	}
}

func TestLoadConfig_Layers(t *testing.T) {
	// Given: a user config, an extra config file, and a data-file flag
	home := isolate(t)
	userDir := filepath.Join(home, ".config", "contacts")
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		t.Fatal(err)
	}
	user := "contacts:\n  default_group: Family\nexport:\n  csv_file: user.csv\n"
	if err := os.WriteFile(filepath.Join(userDir, "config.yaml"), []byte(user), 0o644); err != nil {
		t.Fatal(err)
	}
	extra := filepath.Join(home, "extra.yaml")
	if err := os.WriteFile(extra, []byte("export:\n  csv_file: extra.csv\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	g := &Globals{Config: extra, DataFile: "flag.json"}

	// When: config is loaded
	cfg, err := g.loadConfig()

	// Then: each layer contributes, later layers win
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Contacts.DefaultGroup != "Family" {
		t.Errorf("default group = %q, want Family", cfg.Contacts.DefaultGroup)
	}
	if cfg.Export.CSVFile != "extra.csv" {
		t.Errorf("csv file = %q, want extra.csv", cfg.Export.CSVFile)
	}
	if cfg.Storage.DataFile != "flag.json" {
		t.Errorf("data file = %q, want flag.json", cfg.Storage.DataFile)
	}
}

func TestLoadConfig_MissingExtraFile(t *testing.T) {
	home := isolate(t)
	g := &Globals{Config: filepath.Join(home, "missing.yaml")}

	if _, err := g.loadConfig(); err == nil {
		t.Error("expected error for a missing --config file")
	}
}

func TestLoadConfig_InvalidLevel(t *testing.T) {
	isolate(t)
	t.Setenv("CONTACTS_LOG_LEVEL", "loud")
	g := &Globals{}

	if _, err := g.loadConfig(); err == nil {
		t.Error("expected validation error for an unknown log level")
	}
}

func TestOpen_WritesLogFile(t *testing.T) {
	dir := isolate(t)
	logPath := filepath.Join(dir, "contacts.log")
	g := &Globals{DataFile: filepath.Join(dir, "contacts.json"), LogFile: logPath}
	a, err := g.open(&bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	seed(t, a, "Alice", "5551234567", "", "")
	a.close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"msg":"contact added"`) {
		t.Errorf("log = %s", data)
	}
}

// fakeRunner records whether the program was started.
type fakeRunner struct {
	ran bool
	err error
}

func (f *fakeRunner) Run() (tea.Model, error) {
	f.ran = true
	return nil, f.err
}

func TestBrowseCmd(t *testing.T) {
	t.Run("requires a TTY", func(t *testing.T) {
		prog := &fakeRunner{}

		err := (&BrowseCmd{}).run(false, prog)

		if err == nil || !strings.Contains(err.Error(), "requires a terminal") {
			t.Errorf("err = %v", err)
		}
		if prog.ran {
			t.Error("program should not run without a TTY")
		}
	})

	t.Run("runs the program", func(t *testing.T) {
		prog := &fakeRunner{}

		if err := (&BrowseCmd{}).run(true, prog); err != nil {
			t.Fatal(err)
		}
		if !prog.ran {
			t.Error("program should run")
		}
	})

	t.Run("propagates program errors", func(t *testing.T) {
		prog := &fakeRunner{err: errors.New("boom")}

		if err := (&BrowseCmd{}).run(true, prog); err == nil {
			t.Error("expected error")
		}
	})
}
