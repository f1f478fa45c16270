package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"nboe-meetings/internal/scraper"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if cfg.Scraper.Name != "newnj_nbe" {
		t.Errorf("Scraper.Name = %q, want newnj_nbe", cfg.Scraper.Name)
	}
}

func TestLoadConfigYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
scraper:
  virtual_location: echo
storage:
  driver: sqlite
  dsn: "file::memory:"
http:
  total_timeout_ms: 1500
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Scraper.VirtualLocation != "echo" {
		t.Errorf("VirtualLocation = %q, want echo", cfg.Scraper.VirtualLocation)
	}
	if cfg.Scraper.StartURL != Default().Scraper.StartURL {
		t.Errorf("StartURL should keep default, got %q", cfg.Scraper.StartURL)
	}
	if cfg.GetTotalTimeout() != 1500*time.Millisecond {
		t.Errorf("GetTotalTimeout() = %v, want 1.5s", cfg.GetTotalTimeout())
	}
	if cfg.Storage.Driver != "sqlite" {
		t.Errorf("Storage.Driver = %q, want sqlite", cfg.Storage.Driver)
	}
}

func TestLoadConfigEmptyYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "empty.yaml", "")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Storage.Driver != "none" {
		t.Errorf("Storage.Driver = %q, want none", cfg.Storage.Driver)
	}
}

func TestLoadConfigUnknownField(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.yaml", "scraper:\n  nmae: typo\n")

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() expected error for unknown field")
	}
}

func TestLoadConfigTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "config.toml", `
[scraper]
name = "newnj_nbe_test"
city_suffix = ", Newark, New Jersey"

[observability]
log_level = "debug"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Scraper.Name != "newnj_nbe_test" {
		t.Errorf("Scraper.Name = %q", cfg.Scraper.Name)
	}
	if cfg.Scraper.CitySuffix != ", Newark, New Jersey" {
		t.Errorf("CitySuffix = %q", cfg.Scraper.CitySuffix)
	}
	if cfg.Observability.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.Observability.LogLevel)
	}
	if cfg.HTTP.UserAgent == "" {
		t.Error("HTTP.UserAgent should keep default")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadConfig() expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty name", func(c *Config) { c.Scraper.Name = "" }, "scraper.name"},
		{"relative start url", func(c *Config) { c.Scraper.StartURL = "/meetings/" }, "scraper.start_url"},
		{"bad timezone", func(c *Config) { c.Scraper.Timezone = "Mars/Olympus" }, "scraper.timezone"},
		{"bad virtual policy", func(c *Config) { c.Scraper.VirtualLocation = "guess" }, "virtual_location"},
		{"zero timeout", func(c *Config) { c.HTTP.TotalTimeoutMS = 0 }, "total_timeout_ms"},
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }, "storage.driver"},
		{"sqlite without dsn", func(c *Config) { c.Storage.Driver = "sqlite" }, "storage.dsn"},
		{"rod without timeout", func(c *Config) {
			c.Rod.Enabled = true
			c.Rod.PageTimeoutS = 0
		}, "rod.page_timeout_s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestResolveSelectors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "selectors.yaml", `title: "h1.tribe-events-single-event-title"`)
	configPath := filepath.Join(dir, "config.yaml")

	cfg := Default()
	cfg.SelectorsFile = "selectors.yaml"

	selectors, err := cfg.ResolveSelectors(configPath)
	if err != nil {
		t.Fatalf("ResolveSelectors() error: %v", err)
	}
	if selectors.Title != "h1.tribe-events-single-event-title" {
		t.Errorf("Title = %q", selectors.Title)
	}
	if selectors.DateCell != scraper.DefaultSelectors().DateCell {
		t.Errorf("DateCell should fall back to default, got %q", selectors.DateCell)
	}
}

func TestResolveSelectorsDefault(t *testing.T) {
	selectors, err := Default().ResolveSelectors("configs/config.yaml")
	if err != nil {
		t.Fatalf("ResolveSelectors() error: %v", err)
	}
	if *selectors != *scraper.DefaultSelectors() {
		t.Errorf("expected built-in selectors, got %+v", selectors)
	}
}

func TestLoadSelectorsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "selectors.yaml", `listing_rows: "tr:nth-child("`)

	if _, err := LoadSelectors(path); err == nil {
		t.Error("LoadSelectors() expected error for invalid selector")
	}
	if _, err := LoadSelectors(""); err == nil {
		t.Error("LoadSelectors() expected error for empty path")
	}
}

func TestShippedConfigs(t *testing.T) {
	for _, name := range []string{"config.yaml", "config.toml"} {
		path := filepath.Join("..", "..", "configs", name)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig(%s) error: %v", name, err)
		}
		if _, err := cfg.ResolveSelectors(path); err != nil {
			t.Fatalf("ResolveSelectors(%s) error: %v", name, err)
		}
	}
}
