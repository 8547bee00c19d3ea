// Package config loads the ai command line's own settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all application configuration.
type Config struct {
	Program ProgramConfig `toml:"program"`
	Paths   PathsConfig   `toml:"paths"`
	Parse   ParseConfig   `toml:"parse"`
	Logging LoggingConfig `toml:"logging"`
	History HistoryConfig `toml:"history"`
	Metrics MetricsConfig `toml:"metrics"`
}

// ProgramConfig names the program. The name picks the .<name> hive
// directories and the <name>.defaults file.
type ProgramConfig struct {
	Name string `toml:"name"`
}

// PathsConfig overrides the @file search directories. Empty means the
// .<name> directories from the working directory up, then the home hive.
type PathsConfig struct {
	Config []string `toml:"config"`
	Data   []string `toml:"data"`
}

// ParseConfig controls command-line parsing.
type ParseConfig struct {
	MaxIncludeDepth int  `toml:"max_include_depth"`
	NoDefaults      bool `toml:"no_defaults"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level     string `toml:"level"`
	Format    string `toml:"format"` // "", "text" or "json"; "" picks by terminal
	File      string `toml:"file"`
	MaxSizeMB int    `toml:"max_size_mb"`
	MaxFiles  int    `toml:"max_files"`
}

// HistoryConfig controls the invocation journal.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	DB      string `toml:"db"`
	Limit   int    `toml:"limit"`
}

// MetricsConfig controls parse metrics. An empty Textfile disables export.
type MetricsConfig struct {
	Textfile string `toml:"textfile"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() Config {
	homeDir := aiHome()
	return Config{
		Program: ProgramConfig{
			Name: "ai",
		},
		Parse: ParseConfig{
			MaxIncludeDepth: 16,
		},
		Logging: LoggingConfig{
			Level:     "warn",
			MaxSizeMB: 10,
			MaxFiles:  3,
		},
		History: HistoryConfig{
			Enabled: true,
			DB:      filepath.Join(homeDir, "history.db"),
			Limit:   1000,
		},
	}
}

// LoadConfig reads $AI_HOME/config.toml, falling back to defaults.
func LoadConfig() (Config, error) {
	return LoadConfigFrom(Path())
}

// LoadConfigFrom reads path over the defaults. A missing file is not an
// error.
func LoadConfigFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot use.
func (c Config) Validate() error {
	if c.Program.Name == "" || strings.ContainsAny(c.Program.Name, `/\ `) {
		return fmt.Errorf("config: bad program name %q", c.Program.Name)
	}
	if c.Parse.MaxIncludeDepth < 1 {
		return fmt.Errorf("config: max_include_depth must be at least 1, got %d", c.Parse.MaxIncludeDepth)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Logging.Format)
	}
	return nil
}

// SaveConfig writes cfg to $AI_HOME/config.toml.
func SaveConfig(cfg Config) error {
	return SaveConfigTo(Path(), cfg)
}

// SaveConfigTo writes cfg to path, creating its directory.
func SaveConfigTo(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(cfg)
}

// Path is the config file location.
func Path() string {
	return filepath.Join(aiHome(), "config.toml")
}

// aiHome returns the ai settings directory.
func aiHome() string {
	if env := os.Getenv("AI_HOME"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".ai")
}

// Home is exported for use by other packages.
func Home() string {
	return aiHome()
}
