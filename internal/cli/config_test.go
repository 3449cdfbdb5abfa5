package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/re3facet/pkg/integrations/re3data"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigMissingDefault(t *testing.T) {
	cfg, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"), false)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if diff := cmp.Diff(defaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadConfigMissingExplicit(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "absent.toml"), true); err == nil {
		t.Error("expected error for missing explicit config")
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[registry]
timeout = "5s"
concurrency = 4
rate = 2.5

[cache]
backend = "dir"
dir = "/tmp/re3facet"
ttl = "24h"

[pipeline]
counts = true

[server]
addr = ":9090"
`)
	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}

	want := defaultConfig()
	want.Registry.Timeout = 5 * time.Second
	want.Registry.Concurrency = 4
	want.Registry.Rate = 2.5
	want.Cache.Backend = backendDir
	want.Cache.Dir = "/tmp/re3facet"
	want.Cache.TTL = 24 * time.Hour
	want.Pipeline.Counts = true
	want.Server.Addr = ":9090"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if cfg.Registry.BaseURL != re3data.DefaultIndexURL {
		t.Errorf("absent keys should keep defaults, got base_url %q", cfg.Registry.BaseURL)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[cache]\nbackned = \"dir\"\n", "unknown key"},
		{"unknown backend", "[cache]\nbackend = \"memcached\"\n", "unknown cache backend"},
		{"redis without url", "[cache]\nbackend = \"redis\"\n", "redis_url"},
		{"negative rate", "[registry]\nrate = -1.0\n", "rate"},
		{"syntax", "[cache\n", "load config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body), true)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/xdg/config")
	path, err := configPath()
	if err != nil {
		t.Fatalf("configPath() error: %v", err)
	}
	if want := filepath.Join("/xdg/config", "re3facet", "config.toml"); path != want {
		t.Errorf("configPath() = %q, want %q", path, want)
	}
}
