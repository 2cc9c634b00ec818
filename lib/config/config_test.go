// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault_Validates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default() does not validate: %v", err)
	}
}

func TestLoadFile_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
aws:
  region: ap-southeast-2
  key_pair: TradingBotKey_SYD
  tables:
    prices: TradingBot_Prices_v2
host:
  dashboard_port: 8888
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}

	if cfg.AWS.Region != "ap-southeast-2" {
		t.Errorf("region: got %q, want %q", cfg.AWS.Region, "ap-southeast-2")
	}
	if cfg.AWS.Tables.Prices != "TradingBot_Prices_v2" {
		t.Errorf("prices table: got %q, want %q", cfg.AWS.Tables.Prices, "TradingBot_Prices_v2")
	}
	// Untouched fields keep their defaults.
	if cfg.AWS.Tables.Trades != "TradingBot_Trades" {
		t.Errorf("trades table: got %q, want default %q", cfg.AWS.Tables.Trades, "TradingBot_Trades")
	}
	if cfg.AWS.InstanceTag != "TradingBot" {
		t.Errorf("instance tag: got %q, want default %q", cfg.AWS.InstanceTag, "TradingBot")
	}
	if cfg.Host.DashboardPort != 8888 {
		t.Errorf("dashboard port: got %d, want 8888", cfg.Host.DashboardPort)
	}
}

func TestLoadFile_ExpandsHome(t *testing.T) {
	t.Setenv("HOME", "/home/operator")

	path := writeConfig(t, `
paths:
  root: ${HOME}/trading-bot
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Paths.Root != "/home/operator/trading-bot" {
		t.Errorf("root: got %q, want %q", cfg.Paths.Root, "/home/operator/trading-bot")
	}
}

func TestLoadFile_MissingFile(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_RequiresEnvironmentVariable(t *testing.T) {
	t.Setenv("BOTOPS_CONFIG", "")
	if _, err := Load(); err == nil {
		t.Fatal("expected error when BOTOPS_CONFIG is unset")
	}
}

func TestPEMPath(t *testing.T) {
	cfg := Default()
	cfg.Paths.Root = "/work/bot"
	cfg.AWS.KeyPair = "TradingBotKey_AU"

	want := "/work/bot/TradingBotKey_AU.pem"
	if got := cfg.PEMPath(); got != want {
		t.Errorf("PEMPath(): got %q, want %q", got, want)
	}
}

func TestValidate_ReportsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.AWS.Region = ""
	cfg.AWS.Tables.Prices = ""
	cfg.Host.DashboardPort = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"aws.region", "aws.tables.prices", "host.dashboard_port"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("validation error missing %q: %v", want, err)
		}
	}
}

func TestValidate_ExpandedDefaults(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty key pair", func(c *Config) { c.AWS.KeyPair = "" }},
		{"empty host user", func(c *Config) { c.Host.User = "" }},
		{"port out of range", func(c *Config) { c.Host.DashboardPort = 70000 }},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			cfg := Default()
			testCase.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "botops.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}
