// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package tables

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// auditEntryLimit caps the audit dump at the most recent entries.
const auditEntryLimit = 10

// AuditEntries sorts audit log items newest first and returns the most
// recent ones, with totalFound reporting the pre-cap count.
func AuditEntries(items []map[string]any) (entries []map[string]any, totalFound int) {
	sorted := append([]map[string]any(nil), items...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return numberField(sorted[a], "timestamp") > numberField(sorted[b], "timestamp")
	})
	if len(sorted) > auditEntryLimit {
		return sorted[:auditEntryLimit], len(sorted)
	}
	return sorted, len(sorted)
}

// RenderAudit prints the audit entries, one block per log line with
// the details payload as JSON.
func RenderAudit(w io.Writer, entries []map[string]any, totalFound int) {
	fmt.Fprintf(w, "Found %d logs. Showing top %d:\n", totalFound, len(entries))
	for _, entry := range entries {
		details, err := json.Marshal(entry["details"])
		if err != nil {
			details = []byte(fmt.Sprintf("%v", entry["details"]))
		}
		fmt.Fprintln(w, "---")
		fmt.Fprintf(w, "Time: %v\n", entry["timestamp"])
		fmt.Fprintf(w, "Action: %v\n", entry["action"])
		fmt.Fprintf(w, "Cause: %v\n", entry["cause"])
		fmt.Fprintf(w, "Details: %s\n", details)
	}
}
