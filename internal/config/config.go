// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config holds all contacts configuration.
type Config struct {
	Storage  Storage  `yaml:"storage"`
	Export   Export   `yaml:"export"`
	Contacts Contacts `yaml:"contacts"`
	Logging  Logging  `yaml:"logging"`
}

// Storage holds the data file location.
type Storage struct {
	DataFile string `yaml:"data_file"`
}

// Export holds CSV export settings.
type Export struct {
	CSVFile string `yaml:"csv_file"`
}

// Contacts holds record defaults.
type Contacts struct {
	DefaultGroup string   `yaml:"default_group"`
	Groups       []string `yaml:"groups"` // Suggested groups shown in prompts.
}

// Logging holds log output settings.
type Logging struct {
	File  string `yaml:"file"`  // Empty disables logging.
	Level string `yaml:"level"` // debug | info | warn | error
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: Storage{
			DataFile: "contacts_data.json",
		},
		Export: Export{
			CSVFile: "contacts_export.csv",
		},
		Contacts: Contacts{
			DefaultGroup: "Other",
			Groups:       []string{"Friends", "Work", "Family", "Other"},
		},
		Logging: Logging{
			Level: "info",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// It is LoadLayered with one layer: a missing file yields defaults, and
// invalid YAML or unknown fields are an error.
func Load(path string) (*Config, error) {
	return LoadLayered(path)
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.DataFile) == "" {
		return errors.New("config: storage.data_file cannot be empty")
	}
	if strings.TrimSpace(c.Export.CSVFile) == "" {
		return errors.New("config: export.csv_file cannot be empty")
	}
	if strings.TrimSpace(c.Contacts.DefaultGroup) == "" {
		return errors.New("config: contacts.default_group cannot be empty")
	}
	for i, g := range c.Contacts.Groups {
		if strings.TrimSpace(g) == "" {
			return fmt.Errorf("config: contacts.groups[%d] cannot be empty", i)
		}
	}
	if c.Logging.Level != "" {
		if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
			return fmt.Errorf("config: logging.level: %w", err)
		}
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: CONTACTS_DATA_FILE, CONTACTS_EXPORT_FILE,
// CONTACTS_DEFAULT_GROUP, CONTACTS_LOG_FILE, CONTACTS_LOG_LEVEL.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("CONTACTS_DATA_FILE"); v != "" {
		c.Storage.DataFile = v
	}
	if v := os.Getenv("CONTACTS_EXPORT_FILE"); v != "" {
		c.Export.CSVFile = v
	}
	if v := os.Getenv("CONTACTS_DEFAULT_GROUP"); v != "" {
		c.Contacts.DefaultGroup = v
	}
	if v := os.Getenv("CONTACTS_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("CONTACTS_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Storage  *rawStorage  `yaml:"storage"`
	Export   *rawExport   `yaml:"export"`
	Contacts *rawContacts `yaml:"contacts"`
	Logging  *rawLogging  `yaml:"logging"`
}

type rawStorage struct {
	DataFile *string `yaml:"data_file"`
}

type rawExport struct {
	CSVFile *string `yaml:"csv_file"`
}

type rawContacts struct {
	DefaultGroup *string  `yaml:"default_group"`
	Groups       []string `yaml:"groups"`
}

type rawLogging struct {
	File  *string `yaml:"file"`
	Level *string `yaml:"level"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
// A groups list in a layer replaces the list entirely.
func (c *Config) merge(layer *rawConfig) {
	if layer.Storage != nil && layer.Storage.DataFile != nil {
		c.Storage.DataFile = *layer.Storage.DataFile
	}
	if layer.Export != nil && layer.Export.CSVFile != nil {
		c.Export.CSVFile = *layer.Export.CSVFile
	}
	if layer.Contacts != nil {
		if layer.Contacts.DefaultGroup != nil {
			c.Contacts.DefaultGroup = *layer.Contacts.DefaultGroup
		}
		if layer.Contacts.Groups != nil {
			c.Contacts.Groups = append([]string(nil), layer.Contacts.Groups...)
		}
	}
	if layer.Logging != nil {
		if layer.Logging.File != nil {
			c.Logging.File = *layer.Logging.File
		}
		if layer.Logging.Level != nil {
			c.Logging.Level = *layer.Logging.Level
		}
	}
}
