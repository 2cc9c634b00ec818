// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"os"

	"github.com/chinthakat/trading-bot-aws/lib/config"
)

// ConfigParams is an embeddable struct that adds the --config flag to a
// command's parameter struct and loads the deployment configuration.
//
// Resolution order: --config wins, then the BOTOPS_CONFIG environment
// variable, then the built-in defaults (which mirror the stock
// deployment). There is no directory walking or config discovery.
type ConfigParams struct {
	ConfigPath string `json:"-" flag:"config" desc:"path to botops config YAML (default: $BOTOPS_CONFIG, then built-in defaults)"`
}

// LoadConfig resolves and validates the configuration.
func (c *ConfigParams) LoadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	switch {
	case c.ConfigPath != "":
		cfg, err = config.LoadFile(c.ConfigPath)
	case os.Getenv("BOTOPS_CONFIG") != "":
		cfg, err = config.Load()
	default:
		cfg = config.Default()
	}
	if err != nil {
		return nil, Validation("loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, Validation("invalid config: %v", err)
	}
	return cfg, nil
}
