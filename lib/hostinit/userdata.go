// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package hostinit

import (
	"fmt"
	"strings"
)

// RenderUserData returns the EC2 user-data shell script equivalent of
// [Bootstrapper.Run]. It is generated from the same [Unit] definitions
// so the script and the native bootstrapper cannot drift.
//
// The script mirrors the procedure exactly: fatal package install,
// best-effort pip upgrade, idempotent directory creation, heredoc unit
// registration, daemon reload, and no service activation.
func (b *Bootstrapper) RenderUserData() string {
	var script strings.Builder

	script.WriteString("#!/bin/bash\n")
	script.WriteString("set -e\n\n")

	script.WriteString("# Base packages. A failure here is fatal to the bootstrap.\n")
	script.WriteString("dnf -y makecache\n")
	fmt.Fprintf(&script, "dnf -y install %s\n\n", strings.Join(BasePackages, " "))

	script.WriteString("# Pip upgrade is best-effort.\n")
	fmt.Fprintf(&script, "%s || true\n\n", strings.Join(b.pipUpgradeCommand(), " "))

	fmt.Fprintf(&script, "mkdir -p %s\n", b.options.Workdir)
	fmt.Fprintf(&script, "chown %s:%s %s\n\n", b.options.User, b.options.User, b.options.Workdir)

	for _, unit := range b.Units() {
		fmt.Fprintf(&script, "cat > %s <<'EOF'\n", unit.Path(""))
		script.WriteString(unit.Render())
		script.WriteString("EOF\n\n")
	}

	script.WriteString("systemctl daemon-reload\n")
	script.WriteString("# Services are registered but deliberately not started:\n")
	script.WriteString("# application code arrives via deploy, which starts them.\n")

	return script.String()
}
