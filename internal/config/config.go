// Package config loads the printd YAML configuration.
//
// The configuration is read once at startup, validated, and passed as an
// immutable value to the engine and its collaborators; nothing reads
// config state after construction.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML can carry values like "2s" or "500ms".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Printer holds the thermal printer connection settings.
type Printer struct {
	// Address is the raw-socket printer endpoint, host:port (port 9100
	// on most network ESC/POS printers).
	Address     string   `yaml:"address"`
	DialTimeout Duration `yaml:"dial_timeout"`
}

// Config is the full printd configuration.
type Config struct {
	RestaurantID string   `yaml:"restaurant_id"`
	Endpoint     string   `yaml:"endpoint"`
	PollInterval Duration `yaml:"poll_interval"`
	FetchTimeout Duration `yaml:"fetch_timeout"`
	Printer      Printer  `yaml:"printer"`
	LedgerPath   string   `yaml:"ledger_path"`
	JournalPath  string   `yaml:"journal_path"`
	AlertSound   string   `yaml:"alert_sound"`
}

// Defaults applied when the corresponding field is absent from the file.
const (
	DefaultPollInterval = 2 * time.Second
	DefaultFetchTimeout = 10 * time.Second
	DefaultDialTimeout  = 5 * time.Second
	DefaultLedgerPath   = "printed_orders.json"
	DefaultJournalPath  = "printd.db"
)

// Load reads, defaults, and validates the configuration at path.
// Unknown keys are rejected so typos fail at startup, not silently.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.PollInterval == 0 {
		c.PollInterval = Duration(DefaultPollInterval)
	}
	if c.FetchTimeout == 0 {
		c.FetchTimeout = Duration(DefaultFetchTimeout)
	}
	if c.Printer.DialTimeout == 0 {
		c.Printer.DialTimeout = Duration(DefaultDialTimeout)
	}
	if c.LedgerPath == "" {
		c.LedgerPath = DefaultLedgerPath
	}
	if c.JournalPath == "" {
		c.JournalPath = DefaultJournalPath
	}
}

// Validate checks the settings that have no sensible default.
func (c Config) Validate() error {
	var problems []string
	if c.RestaurantID == "" {
		problems = append(problems, "restaurant_id is required")
	}
	if c.Endpoint == "" {
		problems = append(problems, "endpoint is required")
	} else if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		problems = append(problems, "endpoint must be an http(s) URL")
	}
	if c.Printer.Address == "" {
		problems = append(problems, "printer.address is required")
	}
	if c.PollInterval.Std() <= 0 {
		problems = append(problems, "poll_interval must be positive")
	}
	if c.FetchTimeout.Std() <= 0 {
		problems = append(problems, "fetch_timeout must be positive")
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
