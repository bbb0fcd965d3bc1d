// Package store implements contact persistence as a single JSON file.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/smileynet/contacts/internal/contact"
)

// ErrCorrupt indicates the data file exists but does not hold a valid
// contact mapping. Load still returns an empty, usable mapping alongside it.
var ErrCorrupt = errors.New("store: invalid contacts file")

// FileStore persists the contact mapping as an indented JSON object keyed by
// name. Every save rewrites the whole file.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a FileStore backed by path.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the mapping. A missing or blank file yields an empty mapping
// and no error. Content that is not a JSON object of records yields an empty
// mapping and an error wrapping ErrCorrupt so the caller can warn and carry
// on. Records with unparseable timestamps or an out-of-range phone are kept
// as read and logged.
func (s *FileStore) Load() (map[string]contact.Contact, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("no contacts file, starting empty", zap.String("path", s.path))
			return map[string]contact.Contact{}, nil
		}
		return nil, fmt.Errorf("store: reading %s: %w", s.path, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return map[string]contact.Contact{}, nil
	}

	var records map[string]json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return s.corrupt(err)
	}

	contacts := make(map[string]contact.Contact, len(records))
	for name, rec := range records {
		var c contact.Contact
		if err := json.Unmarshal(rec, &c); err != nil {
			if !errors.Is(err, contact.ErrInvalidTimestamp) {
				return s.corrupt(fmt.Errorf("record %q: %w", name, err))
			}
			s.logger.Warn("contact has an invalid timestamp, keeping it unset",
				zap.String("name", name), zap.Error(err))
		}
		if _, err := contact.ValidatePhone(c.Phone); err != nil {
			s.logger.Warn("contact has an invalid phone number",
				zap.String("name", name), zap.String("phone", c.Phone))
		}
		contacts[name] = c
	}

	s.logger.Debug("contacts loaded", zap.String("path", s.path), zap.Int("count", len(contacts)))
	return contacts, nil
}

func (s *FileStore) corrupt(err error) (map[string]contact.Contact, error) {
	s.logger.Warn("contacts file is corrupt, starting empty",
		zap.String("path", s.path), zap.Error(err))
	return map[string]contact.Contact{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, s.path, err)
}

// Save replaces the file with the full mapping. The data is written to a
// temporary file in the same directory and renamed into place, so a crash
// never leaves a half-written file behind.
func (s *FileStore) Save(contacts map[string]contact.Contact) error {
	if contacts == nil {
		contacts = map[string]contact.Contact{}
	}

	data, err := json.MarshalIndent(contacts, "", "    ")
	if err != nil {
		return fmt.Errorf("store: marshaling: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("store: creating directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("store: creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("store: writing %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("store: closing %s: %w", tmpPath, err)
	}
	if err := os.Chmod(tmpPath, s.fileMode()); err != nil {
		return fmt.Errorf("store: chmod %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("store: replacing %s: %w", s.path, err)
	}

	s.logger.Debug("contacts saved", zap.String("path", s.path), zap.Int("count", len(contacts)))
	return nil
}

// fileMode returns the permissions of the existing data file, or 0600 for a
// new one.
func (s *FileStore) fileMode() os.FileMode {
	if info, err := os.Stat(s.path); err == nil {
		return info.Mode().Perm()
	}
	return 0o600
}
