// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package hostinit

import (
	"fmt"
	"strings"
)

// UnitDir is the systemd unit directory, relative to the filesystem root.
const UnitDir = "/etc/systemd/system"

// Unit describes a systemd service unit registered by the bootstrap.
// Render produces the full unit file content; the same definition is
// used by both the native bootstrapper and the user-data script.
type Unit struct {
	// Name is the unit file name (e.g., "trading-bot.service").
	Name string

	// Description is the [Unit] section description.
	Description string

	// ExecStart is the full start command line.
	ExecStart string

	// WorkingDirectory is the directory the service runs from.
	WorkingDirectory string

	// User is the account the service runs as.
	User string
}

// Render returns the unit file content. Restart=always is fixed: both
// services are expected to survive crashes once an operator starts
// them. WantedBy=multi-user.target so a later "systemctl enable" works.
func (u Unit) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Unit]\n")
	fmt.Fprintf(&b, "Description=%s\n", u.Description)
	fmt.Fprintf(&b, "After=network.target\n")
	fmt.Fprintf(&b, "\n[Service]\n")
	fmt.Fprintf(&b, "User=%s\n", u.User)
	fmt.Fprintf(&b, "WorkingDirectory=%s\n", u.WorkingDirectory)
	fmt.Fprintf(&b, "ExecStart=%s\n", u.ExecStart)
	fmt.Fprintf(&b, "Restart=always\n")
	fmt.Fprintf(&b, "\n[Install]\n")
	fmt.Fprintf(&b, "WantedBy=multi-user.target\n")
	return b.String()
}

// Path returns the unit file path under the given filesystem root.
func (u Unit) Path(root string) string {
	return root + UnitDir + "/" + u.Name
}

// DashboardUnit returns the dashboard service unit. The ExecStart binds
// the configured port on 0.0.0.0; the deployment docs mandate public
// reachability of this port.
func DashboardUnit(workdir, user string, port int) Unit {
	return Unit{
		Name:        "trading-dashboard.service",
		Description: "Trading Bot Dashboard",
		ExecStart: fmt.Sprintf(
			"/home/%s/.local/bin/streamlit run app/dashboard.py --server.port %d --server.address 0.0.0.0 --server.headless true",
			user, port),
		WorkingDirectory: workdir,
		User:             user,
	}
}

// BotUnit returns the trading bot service unit.
func BotUnit(workdir, user string) Unit {
	return Unit{
		Name:             "trading-bot.service",
		Description:      "Trading Bot",
		ExecStart:        "/usr/bin/python3 app/bot.py",
		WorkingDirectory: workdir,
		User:             user,
	}
}
