// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the botops tooling. One file
// describes the whole deployment: the AWS resources the operator
// commands manage and the on-host layout the bootstrapper writes.
type Config struct {
	// AWS configures the region and the named cloud resources.
	AWS AWSConfig `yaml:"aws"`

	// Paths configures local directory locations.
	Paths PathsConfig `yaml:"paths"`

	// Host configures the layout on the EC2 instance.
	Host HostConfig `yaml:"host"`
}

// AWSConfig names every AWS resource the tooling creates or targets.
// All commands resolve resources through these names; nothing is
// hardcoded at call sites, so a second deployment only needs a second
// config file.
type AWSConfig struct {
	// Region is the AWS region for all API calls.
	Region string `yaml:"region"`

	// InstanceTag is the value of the Name tag used to find and launch
	// the bot instance.
	InstanceTag string `yaml:"instance_tag"`

	// InstanceType is the EC2 instance type launched by provision.
	InstanceType string `yaml:"instance_type"`

	// SecurityGroup is the security group name for the instance.
	SecurityGroup string `yaml:"security_group"`

	// KeyPair is the EC2 key pair name. The private key is stored at
	// Paths.Root/<KeyPair>.pem.
	KeyPair string `yaml:"key_pair"`

	// Tables names the DynamoDB tables.
	Tables TableNames `yaml:"tables"`
}

// TableNames holds the DynamoDB table names for each logical table.
type TableNames struct {
	Trades        string `yaml:"trades"`
	Stats         string `yaml:"stats"`
	Prices        string `yaml:"prices"`
	Signals       string `yaml:"signals"`
	Audit         string `yaml:"audit"`
	TestAudit     string `yaml:"test_audit"`
	Positions     string `yaml:"positions"`
	Orders        string `yaml:"orders"`
	TestPositions string `yaml:"test_positions"`
	TestOrders    string `yaml:"test_orders"`
	TestAccount   string `yaml:"test_account"`
}

// PathsConfig configures local directory locations.
type PathsConfig struct {
	// Root is the project root on the operator's machine: the PEM key,
	// app/ directory, requirements.txt, and .env file live here.
	Root string `yaml:"root"`
}

// HostConfig configures the layout on the EC2 instance.
type HostConfig struct {
	// Workdir is the working directory the bootstrapper creates and
	// the services run from.
	Workdir string `yaml:"workdir"`

	// User is the non-privileged account that owns Workdir and runs
	// the services.
	User string `yaml:"user"`

	// DashboardPort is the port the dashboard service binds.
	DashboardPort int `yaml:"dashboard_port"`
}

// Default returns the configuration matching the stock deployment.
// These defaults are used as a base before loading the config file,
// so a minimal file only needs to override what differs.
func Default() *Config {
	return &Config{
		AWS: AWSConfig{
			Region:        "us-east-1",
			InstanceTag:   "TradingBot",
			InstanceType:  "t3.micro",
			SecurityGroup: "TradingBotSG",
			KeyPair:       "TradingBotKey_AU",
			Tables: TableNames{
				Trades:        "TradingBot_Trades",
				Stats:         "TradingBot_Stats",
				Prices:        "TradingBot_Prices",
				Signals:       "TradingBot_Signals",
				Audit:         "TradingBot_Audit",
				TestAudit:     "TradingBot_Test_Audit",
				Positions:     "TradingBot_Positions",
				Orders:        "TradingBot_Orders",
				TestPositions: "TradingBot_Test_Positions",
				TestOrders:    "TradingBot_Test_Orders",
				TestAccount:   "TradingBot_Test_Account",
			},
		},
		Paths: PathsConfig{
			Root: ".",
		},
		Host: HostConfig{
			Workdir:       "/home/ec2-user/trading-bot",
			User:          "ec2-user",
			DashboardPort: 8501,
		},
	}
}

// Load loads configuration from the file named by the BOTOPS_CONFIG
// environment variable. There are no fallbacks: if BOTOPS_CONFIG is
// not set, this fails.
func Load() (*Config, error) {
	configPath := os.Getenv("BOTOPS_CONFIG")
	if configPath == "" {
		return nil, fmt.Errorf("BOTOPS_CONFIG environment variable not set; " +
			"set it to the path of your botops.yaml config file, or use --config flag")
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path, merging it
// over [Default]. Environment variables do not override config values;
// the only expansion performed is ${HOME} and similar path variables.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

// PEMPath returns the local path of the key pair's private key file.
func (c *Config) PEMPath() string {
	return filepath.Join(c.Paths.Root, c.AWS.KeyPair+".pem")
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.Paths.Root = expandVars(c.Paths.Root, vars)
	c.Host.Workdir = expandVars(c.Host.Workdir, vars)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.AWS.Region == "" {
		errs = append(errs, fmt.Errorf("aws.region is required"))
	}
	if c.AWS.InstanceTag == "" {
		errs = append(errs, fmt.Errorf("aws.instance_tag is required"))
	}
	if c.AWS.InstanceType == "" {
		errs = append(errs, fmt.Errorf("aws.instance_type is required"))
	}
	if c.AWS.SecurityGroup == "" {
		errs = append(errs, fmt.Errorf("aws.security_group is required"))
	}
	if c.AWS.KeyPair == "" {
		errs = append(errs, fmt.Errorf("aws.key_pair is required"))
	}

	for _, table := range []struct {
		field string
		name  string
	}{
		{"aws.tables.trades", c.AWS.Tables.Trades},
		{"aws.tables.stats", c.AWS.Tables.Stats},
		{"aws.tables.prices", c.AWS.Tables.Prices},
		{"aws.tables.signals", c.AWS.Tables.Signals},
	} {
		if table.name == "" {
			errs = append(errs, fmt.Errorf("%s is required", table.field))
		}
	}

	if c.Host.Workdir == "" {
		errs = append(errs, fmt.Errorf("host.workdir is required"))
	}
	if c.Host.User == "" {
		errs = append(errs, fmt.Errorf("host.user is required"))
	}
	if c.Host.DashboardPort <= 0 || c.Host.DashboardPort > 65535 {
		errs = append(errs, fmt.Errorf("host.dashboard_port must be a valid port, got %d", c.Host.DashboardPort))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
