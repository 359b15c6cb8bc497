package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Database.Path != "debts.db" {
		t.Errorf("Database.Path = %q, want %q", cfg.Database.Path, "debts.db")
	}
	if len(cfg.Tenants) != 0 {
		t.Errorf("Tenants should be empty by default, got %d entries", len(cfg.Tenants))
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default %d", cfg.Server.Port, 8080)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
port = 9090

[database]
path = "/var/lib/debts/debts.db"

[tenants.acme]
daily_threshold_hours = 7.5
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Database.Path != "/var/lib/debts/debts.db" {
		t.Errorf("Database.Path = %q, want override", cfg.Database.Path)
	}
	if got := cfg.Tenants["acme"].DailyThresholdHours; got != 7.5 {
		t.Errorf("Tenants[acme].DailyThresholdHours = %v, want 7.5", got)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"port out of range", "[server]\nport = 0\n"},
		{"empty database path", "[database]\npath = \"\"\n"},
		{"threshold out of range", "[tenants.acme]\ndaily_threshold_hours = 25.0\n"},
		{"malformed toml", "[server\nport = 8080\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("Load() should have failed")
			}
		})
	}
}

func TestDailyThresholdHours(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tenants["acme"] = TenantConfig{DailyThresholdHours: 7.5}

	if got := cfg.DailyThresholdHours("acme"); !got.Equal(decimal.NewFromFloat(7.5)) {
		t.Errorf("DailyThresholdHours(acme) = %v, want 7.5", got)
	}
	// Unconfigured tenants fall back to the eight-hour day.
	if got := cfg.DailyThresholdHours("globex"); !got.Equal(decimal.NewFromInt(8)) {
		t.Errorf("DailyThresholdHours(globex) = %v, want 8", got)
	}
}
