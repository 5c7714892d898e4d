package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Log      LogConfig
	Editor   EditorConfig
	Autosave AutosaveConfig
	Redis    RedisConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name    string
	Env     string
	DataDir string
}

// DatabaseConfig holds the SQLite location. An empty Path resolves to
// <data_dir>/sitebuilder.db.
type DatabaseConfig struct {
	Path string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stderr, stdout, or file path
}

// EditorConfig holds editing session settings
type EditorConfig struct {
	HistoryLimit     int
	ComponentsFile   string // optional YAML file with extra component definitions
	WatchComponents  bool   // reload ComponentsFile on change
	PersistHistory   bool   // store recorded snapshots in the history tree
	MaxHistoryNodes  int    // per page, oldest pruned first
	DeterministicIDs bool   // "<type>-<n>" ids instead of uuids
}

// AutosaveConfig holds the background flush schedule
type AutosaveConfig struct {
	Enabled     bool
	Schedule    string        // cron spec with seconds field
	IdleTimeout time.Duration // close sessions untouched for this long, 0 disables
}

// RedisConfig holds the optional shared zone cache
type RedisConfig struct {
	Enabled bool
	URL     string
	Prefix  string
	TTL     time.Duration // 0 keeps entries until the page closes
}

// Load loads configuration from sitebuilder.toml and environment variables.
// Priority (highest to lowest):
// 1. Environment variables with SITEBUILDER_ prefix (e.g. SITEBUILDER_LOG_LEVEL)
// 2. sitebuilder.toml in the working directory or ~/.config/sitebuilder
// 3. Built-in defaults
func Load() (*Config, error) {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "sitebuilder"))
	}
	return LoadFrom(paths...)
}

// LoadFrom is Load with explicit search paths.
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()

	v.SetConfigName("sitebuilder")
	v.SetConfigType("toml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("SITEBUILDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name:    v.GetString("app.name"),
			Env:     v.GetString("app.env"),
			DataDir: v.GetString("app.data_dir"),
		},
		Database: DatabaseConfig{
			Path: v.GetString("database.path"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Editor: EditorConfig{
			HistoryLimit:     v.GetInt("editor.history_limit"),
			ComponentsFile:   v.GetString("editor.components_file"),
			WatchComponents:  v.GetBool("editor.watch_components"),
			PersistHistory:   v.GetBool("editor.persist_history"),
			MaxHistoryNodes:  v.GetInt("editor.max_history_nodes"),
			DeterministicIDs: v.GetBool("editor.deterministic_ids"),
		},
		Autosave: AutosaveConfig{
			Enabled:     v.GetBool("autosave.enabled"),
			Schedule:    v.GetString("autosave.schedule"),
			IdleTimeout: v.GetDuration("autosave.idle_timeout"),
		},
		Redis: RedisConfig{
			Enabled: v.GetBool("redis.enabled"),
			URL:     v.GetString("redis.url"),
			Prefix:  v.GetString("redis.prefix"),
			TTL:     v.GetDuration("redis.ttl"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "sitebuilder"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.DataDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfg.App.DataDir = filepath.Join(home, ".sitebuilder")
		} else {
			cfg.App.DataDir = ".sitebuilder"
		}
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = filepath.Join(cfg.App.DataDir, "sitebuilder.db")
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stderr"
	}
	if cfg.Editor.HistoryLimit == 0 {
		cfg.Editor.HistoryLimit = 40
	}
	if cfg.Editor.MaxHistoryNodes == 0 {
		cfg.Editor.MaxHistoryNodes = 200
	}
	if cfg.Autosave.Schedule == "" {
		cfg.Autosave.Schedule = "*/30 * * * * *"
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = "sitebuilder:"
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	if c.Editor.HistoryLimit < 2 {
		return fmt.Errorf("editor.history_limit must be at least 2, got %d", c.Editor.HistoryLimit)
	}
	if c.Editor.MaxHistoryNodes < 1 {
		return fmt.Errorf("editor.max_history_nodes must be positive, got %d", c.Editor.MaxHistoryNodes)
	}
	if c.Autosave.Enabled {
		parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(c.Autosave.Schedule); err != nil {
			return fmt.Errorf("autosave.schedule %q: %w", c.Autosave.Schedule, err)
		}
	}
	if c.Autosave.IdleTimeout < 0 {
		return fmt.Errorf("autosave.idle_timeout must not be negative")
	}
	if c.Redis.Enabled && c.Redis.URL == "" {
		return fmt.Errorf("redis.url is required when redis is enabled")
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must not be negative")
	}
	return nil
}

// IsProduction reports whether the app runs in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
