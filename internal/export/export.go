// Package export writes contacts to CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/smileynet/contacts/internal/contact"
)

// Header is the first CSV row.
var Header = []string{"Name", "Phone", "Email", "Group"}

// WriteCSV writes the header followed by one row per entry, in the order given.
func WriteCSV(w io.Writer, entries []contact.Entry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: writing header: %w", err)
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Name, e.Phone, e.Email, e.Group}); err != nil {
			return fmt.Errorf("export: writing %q: %w", e.Name, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flushing: %w", err)
	}
	return nil
}

// ExportFile writes entries to the CSV file at path, replacing it, and
// returns the number of data rows written.
func ExportFile(path string, entries []contact.Entry) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("export: creating %s: %w", path, err)
	}
	if err := WriteCSV(f, entries); err != nil {
		_ = f.Close()
		return 0, err
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("export: closing %s: %w", path, err)
	}
	return len(entries), nil
}
