package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with label", func(c *Config) { c.Snapshot.Label = "hourly" }, false},
		{"missing label", func(c *Config) {}, true},
		{"negative keep", func(c *Config) { c.Snapshot.Label = "hourly"; c.Snapshot.Keep = -1 }, true},
		{"slash in label", func(c *Config) { c.Snapshot.Label = "hour/ly" }, true},
		{"space in prefix", func(c *Config) { c.Snapshot.Label = "hourly"; c.Snapshot.Prefix = "my snap" }, true},
		{"empty directory", func(c *Config) { c.Snapshot.Label = "hourly"; c.Snapshot.Directory = "" }, true},
		{"bad rotation label", func(c *Config) {
			c.Snapshot.Label = "hourly"
			c.Daemon.Rotations = []Rotation{{Label: "da ily", Cron: "@daily", Keep: 7}}
		}, true},
		{"good rotations", func(c *Config) {
			c.Snapshot.Label = "hourly"
			c.Daemon.Rotations = []Rotation{
				{Label: "hourly", Cron: "0 * * * *", Keep: 24},
				{Label: "daily", Cron: "@daily", Keep: 7},
			}
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				var ce *ConfigError
				assert.ErrorAs(t, err, &ce)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadExpandsEnvVars(t *testing.T) {
	t.Setenv("SNAP_LABEL", "hourly")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
snapshot:
  label: $(SNAP_LABEL)
  keep: 12
paths:
  - /home
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hourly", cfg.Snapshot.Label)
	assert.Equal(t, 12, cfg.Snapshot.Keep)
	assert.Equal(t, []string{"/home"}, cfg.Paths)
	// defaults survive partial files
	assert.Equal(t, DefaultPrefix, cfg.Snapshot.Prefix)
	assert.Equal(t, DefaultDirectory, cfg.Snapshot.Directory)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestWithRotation(t *testing.T) {
	cfg := Default()
	cfg.Snapshot.Label = "hourly"
	cfg.Snapshot.Keep = 24

	derived := cfg.WithRotation(Rotation{Label: "daily", Keep: 7})

	assert.Equal(t, "daily", derived.Snapshot.Label)
	assert.Equal(t, 7, derived.Snapshot.Keep)
	// original untouched
	assert.Equal(t, "hourly", cfg.Snapshot.Label)
	assert.Equal(t, 24, cfg.Snapshot.Keep)
}
