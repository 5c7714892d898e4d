package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom(t *testing.T) {
	t.Run("defaults when no file and no env", func(t *testing.T) {
		t.Setenv("SITEBUILDER_APP_DATA_DIR", "")
		cfg, err := LoadFrom(t.TempDir())
		require.NoError(t, err)

		assert.Equal(t, "sitebuilder", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, filepath.Join(cfg.App.DataDir, "sitebuilder.db"), cfg.Database.Path)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "stderr", cfg.Log.Output)
		assert.Equal(t, 40, cfg.Editor.HistoryLimit)
		assert.Equal(t, 200, cfg.Editor.MaxHistoryNodes)
		assert.Equal(t, "*/30 * * * * *", cfg.Autosave.Schedule)
		assert.Zero(t, cfg.Redis.TTL, "cached zones do not expire by default")
		assert.False(t, cfg.IsProduction())
	})

	t.Run("reads toml file", func(t *testing.T) {
		dir := t.TempDir()
		content := `
[app]
env = "production"
data_dir = "/var/lib/sitebuilder"

[editor]
history_limit = 10
watch_components = true

[autosave]
enabled = true
schedule = "0 * * * * *"
idle_timeout = "15m"
`
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sitebuilder.toml"), []byte(content), 0o644))

		cfg, err := LoadFrom(dir)
		require.NoError(t, err)

		assert.True(t, cfg.IsProduction())
		assert.Equal(t, "/var/lib/sitebuilder/sitebuilder.db", cfg.Database.Path)
		assert.Equal(t, 10, cfg.Editor.HistoryLimit)
		assert.True(t, cfg.Editor.WatchComponents)
		assert.True(t, cfg.Autosave.Enabled)
		assert.Equal(t, 15*time.Minute, cfg.Autosave.IdleTimeout)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sitebuilder.toml"), []byte("[log]\nlevel = \"warn\"\n"), 0o644))
		t.Setenv("SITEBUILDER_LOG_LEVEL", "debug")
		t.Setenv("SITEBUILDER_DATABASE_PATH", "/tmp/x.db")

		cfg, err := LoadFrom(dir)
		require.NoError(t, err)

		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sitebuilder.toml"), []byte("[app\nname="), 0o644))

		_, err := LoadFrom(dir)
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"history limit too small", func(c *Config) { c.Editor.HistoryLimit = 1 }, true},
		{"bad cron spec", func(c *Config) { c.Autosave.Enabled = true; c.Autosave.Schedule = "every minute" }, true},
		{"bad cron ignored when disabled", func(c *Config) { c.Autosave.Schedule = "every minute" }, false},
		{"redis without url", func(c *Config) { c.Redis.Enabled = true }, true},
		{"negative idle timeout", func(c *Config) { c.Autosave.IdleTimeout = -time.Second }, true},
		{"negative redis ttl", func(c *Config) { c.Redis.TTL = -time.Minute }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
