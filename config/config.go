/*
config.go - TOML configuration for the debt engine server

PURPOSE:
  Loads server, database, and per-tenant threshold settings from a TOML
  file. Missing file means defaults; a present file overrides field by
  field.

FILE LAYOUT:

  [server]
  port = 8080

  [database]
  path = "debts.db"

  [tenants.acme]
  daily_threshold_hours = 8.0

  [tenants.globex]
  daily_threshold_hours = 7.5

TENANT THRESHOLDS:
  Config implements hourdebt.ThresholdSource. Tenants without an entry
  fall back to the default eight-hour day.

SEE ALSO:
  - hourdebt/excess.go: how the threshold feeds excess computation
  - cmd/server/main.go: where the config is loaded
*/
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"
	"github.com/zaiken/debt-engine/hourdebt"
)

type Config struct {
	Server   ServerConfig            `toml:"server"`
	Database DatabaseConfig          `toml:"database"`
	Tenants  map[string]TenantConfig `toml:"tenants"`
}

type ServerConfig struct {
	Port int `toml:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type TenantConfig struct {
	DailyThresholdHours float64 `toml:"daily_threshold_hours"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Path: "debts.db"},
		Tenants:  map[string]TenantConfig{},
	}
}

// Load reads a TOML config file, layering it over the defaults. A missing
// file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	for tenant, tc := range c.Tenants {
		if tc.DailyThresholdHours <= 0 || tc.DailyThresholdHours > 24 {
			return fmt.Errorf("tenants.%s.daily_threshold_hours %v out of range", tenant, tc.DailyThresholdHours)
		}
	}
	return nil
}

// DailyThresholdHours implements hourdebt.ThresholdSource.
func (c *Config) DailyThresholdHours(tenantID string) decimal.Decimal {
	if tc, ok := c.Tenants[tenantID]; ok {
		return decimal.NewFromFloat(tc.DailyThresholdHours)
	}
	return hourdebt.DefaultDailyThresholdHours
}

var _ hourdebt.ThresholdSource = (*Config)(nil)
