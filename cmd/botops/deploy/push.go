// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package deploy

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/chinthakat/trading-bot-aws/cmd/botops/cli"
	"github.com/chinthakat/trading-bot-aws/lib/config"
	"github.com/chinthakat/trading-bot-aws/lib/hostinit"
	"github.com/chinthakat/trading-bot-aws/lib/remote"
)

// pushParams holds the parameters for the deploy push command.
type pushParams struct {
	cli.ConfigParams
	Bundle bool `json:"-" flag:"bundle" desc:"upload as a single gzipped tar bundle instead of scp -r"`
}

// uploadSet is the file set pushed to the instance, relative to the
// project root. The .env file is appended when present.
var uploadSet = []string{"app", "config.json", "requirements.txt"}

// requiredEnvKeys are warned about when missing from .env. The bot
// runs without them only in paper-trading mode.
var requiredEnvKeys = []string{"BINANCE_API_KEY", "BINANCE_SECRET"}

func pushCommand() *cli.Command {
	var params pushParams

	return &cli.Command{
		Name:    "push",
		Summary: "Upload the bot's code and restart the dashboard",
		Description: `Push the bot's code to the running instance.

Uploads app/, config.json, requirements.txt, and .env (when present)
into the instance's working directory, then installs the Python
dependencies and restarts the dashboard service. The upload is either
a recursive scp of the individual paths (the default) or a single
gzipped tar bundle extracted remotely (--bundle), which is faster on
high-latency links.

The dashboard's systemd unit is normalized before the restart: the
streamlit path is rewritten to the per-user pip install location, and
a historical --server.Headless casing mistake is corrected. Both edits
are no-ops on a unit that is already correct.

The bot process itself is not restarted; run "botops deploy restart"
when the new code should take effect.`,
		Usage: "botops deploy push [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("push", &params)
		},
		Examples: []cli.Example{
			{
				Description: "Push with individual file upload",
				Command:     "botops deploy push",
			},
			{
				Description: "Push as one compressed bundle",
				Command:     "botops deploy push --bundle",
			},
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			cfg, err := params.LoadConfig()
			if err != nil {
				return err
			}
			return runPush(cfg, params.Bundle)
		},
	}
}

func runPush(cfg *config.Config, asBundle bool) error {
	ctx, cancel := context.WithTimeout(context.Background(), deployTimeout)
	defer cancel()

	fmt.Println("--- Starting Deployment ---")

	host, publicIP, err := connectHost(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("Target IP: %s\n", publicIP)

	paths := make([]string, 0, len(uploadSet)+1)
	for _, name := range uploadSet {
		path := filepath.Join(cfg.Paths.Root, name)
		if _, err := os.Stat(path); err != nil {
			return cli.NotFound("upload path %s missing: %v", path, err)
		}
		paths = append(paths, path)
	}
	if envPath, ok := checkEnvFile(cfg.Paths.Root); ok {
		paths = append(paths, envPath)
	}

	fmt.Println("Uploading files...")
	if asBundle {
		err = pushBundle(ctx, host, cfg, paths)
	} else {
		err = host.Upload(ctx, paths, cfg.Host.Workdir+"/")
	}
	if err != nil {
		return cli.Transient("upload failed: %w", err)
	}
	fmt.Println("Upload complete.")

	fmt.Println("Configuring server...")
	unitPath := hostinit.DashboardUnit(cfg.Host.Workdir, cfg.Host.User, cfg.Host.DashboardPort).Path("")
	configure := []string{
		"cd " + cfg.Host.Workdir,
		"pip3 install -r requirements.txt",
		fmt.Sprintf("sudo sed -i 's|/usr/local/bin/streamlit|/home/%s/.local/bin/streamlit|g' %s", cfg.Host.User, unitPath),
		fmt.Sprintf("sudo sed -i 's|--server.Headless|--server.headless|g' %s", unitPath),
		"sudo systemctl daemon-reload",
		"sudo systemctl restart trading-dashboard",
		"sudo systemctl enable trading-dashboard",
	}
	if _, err := host.RunScript(ctx, configure); err != nil {
		return cli.Transient("remote configuration failed: %w", err)
	}
	fmt.Println("Configuration complete.")

	fmt.Println("\nDeployment SUCCESS!")
	fmt.Printf("Dashboard: http://%s:%d\n", publicIP, cfg.Host.DashboardPort)
	fmt.Println("To start the trading bot logic: botops deploy restart")
	return nil
}

// pushBundle writes the upload set into a local tar.gz, uploads the
// single file, and extracts it remotely into the working directory.
func pushBundle(ctx context.Context, host *remote.Host, cfg *config.Config, paths []string) error {
	bundlePath := filepath.Join(os.TempDir(), remote.BundleName())
	bundle, err := os.Create(bundlePath)
	if err != nil {
		return fmt.Errorf("creating bundle: %w", err)
	}
	defer os.Remove(bundlePath)

	relative := make([]string, 0, len(paths))
	for _, path := range paths {
		relative = append(relative, filepath.Base(path))
	}
	if err := remote.WriteBundle(bundle, cfg.Paths.Root, relative); err != nil {
		bundle.Close()
		return fmt.Errorf("writing bundle: %w", err)
	}
	if err := bundle.Close(); err != nil {
		return fmt.Errorf("closing bundle: %w", err)
	}

	if err := host.Upload(ctx, []string{bundlePath}, cfg.Host.Workdir+"/"); err != nil {
		return err
	}
	if _, err := host.Run(ctx, remote.ExtractCommand(cfg.Host.Workdir)); err != nil {
		return fmt.Errorf("extracting bundle: %w", err)
	}
	return nil
}

// checkEnvFile reports whether the project has a .env file and warns
// about missing exchange credentials. A missing or unparseable .env is
// not an error; the bot falls back to paper trading.
func checkEnvFile(root string) (string, bool) {
	envPath := filepath.Join(root, ".env")
	if _, err := os.Stat(envPath); err != nil {
		return "", false
	}

	values, err := godotenv.Read(envPath)
	if err != nil {
		fmt.Printf("Warning: could not parse .env: %v\n", err)
		return envPath, true
	}
	for _, key := range requiredEnvKeys {
		if values[key] == "" {
			fmt.Printf("Warning: .env is missing %s; live trading will be unavailable.\n", key)
		}
	}
	return envPath, true
}
