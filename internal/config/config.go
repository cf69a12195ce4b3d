package config

import (
	"fmt"
	"regexp"
)

type Config struct {
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Paths    []string       `yaml:"paths"`
	All      bool           `yaml:"all"`
	Logging  LoggingConfig  `yaml:"logging"`
	Daemon   DaemonConfig   `yaml:"daemon"`
	DryRun   bool           `yaml:"dryRun"`
}

type SnapshotConfig struct {
	Prefix    string `yaml:"prefix"`    // e.g. "btrfs-auto-snap"
	Label     string `yaml:"label"`     // e.g. "hourly", "daily"
	Keep      int    `yaml:"keep"`      // 0 = keep everything, no pruning
	Writable  bool   `yaml:"writable"`  // snapshots are read-only unless set
	Directory string `yaml:"directory"` // snapshot subdirectory per subvolume
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "error"
	Format string `yaml:"format"` // "json", "text"
}

type DaemonConfig struct {
	Rotations []Rotation `yaml:"rotations"`
}

// Rotation is one scheduled snapshot frequency in daemon mode.
// Each rotation runs the full pipeline with its own label and keep count.
type Rotation struct {
	Label string `yaml:"label"`
	Cron  string `yaml:"cron"`
	Keep  int    `yaml:"keep"`
}

const (
	DefaultPrefix    = "btrfs-auto-snap"
	DefaultDirectory = ".btrfs"
)

// ConfigError marks a configuration problem. Fatal: the pipeline must not
// touch the filesystem with a bad prefix, label or keep count.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// prefix and label end up in filesystem paths and in a derived regexp,
// so the allowed alphabet is kept tight
var namePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

func Default() *Config {
	return &Config{
		Snapshot: SnapshotConfig{
			Prefix:    DefaultPrefix,
			Directory: DefaultDirectory,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}

// Validate checks the snapshot settings shared by one-shot and daemon mode.
func (c *Config) Validate() error {
	if err := validateNames(c.Snapshot.Prefix, c.Snapshot.Label); err != nil {
		return err
	}
	if c.Snapshot.Keep < 0 {
		return &ConfigError{Field: "snapshot.keep", Reason: "must be zero or positive"}
	}
	if c.Snapshot.Directory == "" {
		return &ConfigError{Field: "snapshot.directory", Reason: "must not be empty"}
	}
	for _, r := range c.Daemon.Rotations {
		if err := validateNames(c.Snapshot.Prefix, r.Label); err != nil {
			return err
		}
		if r.Keep < 0 {
			return &ConfigError{Field: "daemon.rotations.keep", Reason: "must be zero or positive"}
		}
	}
	return nil
}

func validateNames(prefix, label string) error {
	if !namePattern.MatchString(prefix) {
		return &ConfigError{Field: "snapshot.prefix", Reason: fmt.Sprintf("%q contains invalid characters", prefix)}
	}
	if !namePattern.MatchString(label) {
		return &ConfigError{Field: "snapshot.label", Reason: fmt.Sprintf("%q contains invalid characters", label)}
	}
	return nil
}

// WithRotation returns a copy of the config with the per-rotation label and
// keep count applied. The receiver is left untouched.
func (c *Config) WithRotation(r Rotation) *Config {
	out := *c
	out.Snapshot.Label = r.Label
	out.Snapshot.Keep = r.Keep
	return &out
}
