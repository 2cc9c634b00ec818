// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package hostinit

import (
	"strings"
	"testing"
)

func TestDashboardUnit_BindsConfiguredPort(t *testing.T) {
	unit := DashboardUnit("/home/ec2-user/trading-bot", "ec2-user", 8501)

	if !strings.Contains(unit.ExecStart, "--server.port 8501") {
		t.Errorf("ExecStart missing port binding: %q", unit.ExecStart)
	}
	if !strings.Contains(unit.ExecStart, "--server.address 0.0.0.0") {
		t.Errorf("ExecStart missing public bind address: %q", unit.ExecStart)
	}
	if strings.Contains(unit.ExecStart, "--server.Headless") {
		t.Errorf("ExecStart uses broken flag casing: %q", unit.ExecStart)
	}
}

func TestUnit_RenderSections(t *testing.T) {
	unit := BotUnit("/srv/bot", "operator")
	content := unit.Render()

	for _, want := range []string{
		"[Unit]",
		"[Service]",
		"[Install]",
		"User=operator",
		"WorkingDirectory=/srv/bot",
		"ExecStart=/usr/bin/python3 app/bot.py",
		"Restart=always",
		"WantedBy=multi-user.target",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("rendered unit missing %q:\n%s", want, content)
		}
	}
}

func TestUnit_Path(t *testing.T) {
	unit := BotUnit("/srv/bot", "operator")

	if got, want := unit.Path(""), "/etc/systemd/system/trading-bot.service"; got != want {
		t.Errorf("Path(\"\"): got %q, want %q", got, want)
	}
	if got, want := unit.Path("/tmp/fake"), "/tmp/fake/etc/systemd/system/trading-bot.service"; got != want {
		t.Errorf("Path(root): got %q, want %q", got, want)
	}
}

func TestRenderUserData_MatchesNativeProcedure(t *testing.T) {
	bootstrapper := New(Options{})
	script := bootstrapper.RenderUserData()

	for _, want := range []string{
		"#!/bin/bash",
		"set -e",
		"dnf -y makecache",
		"dnf -y install git python3 python3-pip",
		"sudo -u ec2-user python3 -m pip install --upgrade pip || true",
		"mkdir -p /home/ec2-user/trading-bot",
		"chown ec2-user:ec2-user /home/ec2-user/trading-bot",
		"cat > /etc/systemd/system/trading-dashboard.service <<'EOF'",
		"cat > /etc/systemd/system/trading-bot.service <<'EOF'",
		"systemctl daemon-reload",
	} {
		if !strings.Contains(script, want) {
			t.Errorf("user-data missing %q:\n%s", want, script)
		}
	}

	if strings.Contains(script, "systemctl start") || strings.Contains(script, "systemctl enable") {
		t.Error("user-data must not activate services")
	}

	// The heredoc carries the exact rendered unit content.
	for _, unit := range bootstrapper.Units() {
		if !strings.Contains(script, unit.Render()) {
			t.Errorf("user-data missing rendered content for %s", unit.Name)
		}
	}
}
