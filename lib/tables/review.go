// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package tables

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Signal/order/position matching windows, in milliseconds. Orders are
// placed immediately after a signal; fills can lag a few seconds more.
const (
	orderMatchWindowMS    = 5000
	positionMatchWindowMS = 10000
)

// reviewRowLimit caps the report at the most recent signals.
const reviewRowLimit = 15

// ReviewRow is one line of the price-analysis report.
type ReviewRow struct {
	Timestamp   float64
	Symbol      string
	Action      string
	SignalPrice float64
	LimitPrice  float64
	FillPrice   float64
	DeltaPct    float64
}

// BuildReview matches each signal against the order placed for it (by
// creation time within the order window) and the resulting position
// (by entry time within the position window), and computes the
// fill-versus-signal price delta. Signals are ordered newest first and
// capped at the row limit.
func BuildReview(signals, orders, positions []map[string]any) []ReviewRow {
	sorted := append([]map[string]any(nil), signals...)
	sort.SliceStable(sorted, func(a, b int) bool {
		return numberField(sorted[a], "timestamp") > numberField(sorted[b], "timestamp")
	})
	if len(sorted) > reviewRowLimit {
		sorted = sorted[:reviewRowLimit]
	}

	rows := make([]ReviewRow, 0, len(sorted))
	for _, signal := range sorted {
		row := ReviewRow{
			Timestamp:   numberField(signal, "timestamp"),
			Symbol:      stringField(signal, "symbol"),
			Action:      stringField(signal, "signal"),
			SignalPrice: numberField(signal, "price"),
		}
		if row.Action == "" {
			row.Action = "UNK"
		}

		if order := matchByTime(orders, "created_at", row.Timestamp, orderMatchWindowMS); order != nil {
			row.LimitPrice = numberField(order, "price")
		}
		if position := matchByTime(positions, "entry_time", row.Timestamp, positionMatchWindowMS); position != nil {
			row.FillPrice = numberField(position, "entry_price")
		}

		if row.SignalPrice > 0 && row.FillPrice > 0 {
			row.DeltaPct = (row.FillPrice - row.SignalPrice) / row.SignalPrice * 100
		}
		rows = append(rows, row)
	}
	return rows
}

// RenderReview writes the fixed-width report.
func RenderReview(w io.Writer, rows []ReviewRow, totalSignals int) {
	fmt.Fprintf(w, "--- PRICE ANALYSIS REPORT (%d Signals) ---\n", totalSignals)
	fmt.Fprintf(w, "%-20s | %-8s | %-6s | %-10s | %-10s | %-10s | %-8s\n",
		"TIME", "SYMBOL", "ACTION", "SIGNAL $", "LIMIT $", "FILL $", "DELTA %")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, row := range rows {
		timestamp := time.UnixMilli(int64(row.Timestamp)).Format("15:04:05")
		fmt.Fprintf(w, "%-20s | %-8s | %-6s | %-10.2f | %-10.2f | %-10.2f | %7.4f%%\n",
			timestamp, row.Symbol, row.Action,
			row.SignalPrice, row.LimitPrice, row.FillPrice, row.DeltaPct)
	}
}

func matchByTime(items []map[string]any, field string, timestamp, windowMS float64) map[string]any {
	for _, item := range items {
		delta := numberField(item, field) - timestamp
		if delta < 0 {
			delta = -delta
		}
		if delta < windowMS {
			return item
		}
	}
	return nil
}

func numberField(item map[string]any, name string) float64 {
	switch value := item[name].(type) {
	case string:
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0
		}
		return parsed
	case float64:
		return value
	default:
		return 0
	}
}

func stringField(item map[string]any, name string) string {
	value, _ := item[name].(string)
	return value
}
