package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Setenv("AI_HOME", "/tmp/ai-home")
	cfg := DefaultConfig()

	if cfg.Program.Name != "ai" {
		t.Errorf("Program.Name = %q, want %q", cfg.Program.Name, "ai")
	}
	if cfg.Parse.MaxIncludeDepth != 16 {
		t.Errorf("Parse.MaxIncludeDepth = %d, want %d", cfg.Parse.MaxIncludeDepth, 16)
	}
	if want := filepath.Join("/tmp/ai-home", "history.db"); cfg.History.DB != want {
		t.Errorf("History.DB = %q, want %q", cfg.History.DB, want)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("AI_HOME", t.TempDir())
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !reflect.DeepEqual(cfg, DefaultConfig()) {
		t.Errorf("LoadConfig() = %+v, want defaults", cfg)
	}
}

func TestLoadConfig_OverridesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("AI_HOME", home)
	content := `
[paths]
config = ["/etc/ai"]

[parse]
no_defaults = true

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(filepath.Join(home, "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !reflect.DeepEqual(cfg.Paths.Config, []string{"/etc/ai"}) {
		t.Errorf("Paths.Config = %v", cfg.Paths.Config)
	}
	if !cfg.Parse.NoDefaults {
		t.Error("Parse.NoDefaults = false, want true")
	}
	if cfg.Parse.MaxIncludeDepth != 16 {
		t.Errorf("Parse.MaxIncludeDepth = %d, want default 16", cfg.Parse.MaxIncludeDepth)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", "[parse\n"},
		{"depth", "[parse]\nmax_include_depth = 0\n"},
		{"level", "[logging]\nlevel = \"loud\"\n"},
		{"format", "[logging]\nformat = \"xml\"\n"},
		{"name", "[program]\nname = \"a b\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadConfigFrom(path); err == nil {
				t.Error("LoadConfigFrom() succeeded")
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	t.Setenv("AI_HOME", filepath.Join(t.TempDir(), "nested"))
	cfg := DefaultConfig()
	cfg.Metrics.Textfile = "/var/lib/node_exporter/ai.prom"
	cfg.Paths.Config = []string{"config"}
	cfg.Paths.Data = []string{"data"}

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}
	got, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if !reflect.DeepEqual(got, cfg) {
		t.Errorf("LoadConfig() = %+v, want %+v", got, cfg)
	}
}
