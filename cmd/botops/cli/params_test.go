// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlags_BasicTypes(t *testing.T) {
	type params struct {
		Config  string        `flag:"config,c" desc:"config path" default:"botops.yaml"`
		Bundle  bool          `flag:"bundle" desc:"upload as tar bundle"`
		Port    int           `flag:"port" default:"8501"`
		Wait    time.Duration `flag:"wait" default:"5m"`
		Ratio   float64       `flag:"ratio" default:"0.5"`
		Count   int64         `flag:"count" default:"15"`
		Symbols []string      `flag:"symbols" default:"BTCUSDT,ETHUSDT"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}

	if err := flagSet.Parse(nil); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}

	if p.Config != "botops.yaml" {
		t.Errorf("Config default: got %q", p.Config)
	}
	if p.Port != 8501 {
		t.Errorf("Port default: got %d", p.Port)
	}
	if p.Wait != 5*time.Minute {
		t.Errorf("Wait default: got %v", p.Wait)
	}
	if p.Ratio != 0.5 {
		t.Errorf("Ratio default: got %v", p.Ratio)
	}
	if p.Count != 15 {
		t.Errorf("Count default: got %d", p.Count)
	}
	if len(p.Symbols) != 2 || p.Symbols[0] != "BTCUSDT" {
		t.Errorf("Symbols default: got %v", p.Symbols)
	}
}

func TestBindFlags_ParsesValues(t *testing.T) {
	type params struct {
		Config string `flag:"config,c"`
		Bundle bool   `flag:"bundle"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}

	if err := flagSet.Parse([]string{"-c", "other.yaml", "--bundle"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.Config != "other.yaml" {
		t.Errorf("Config: got %q", p.Config)
	}
	if !p.Bundle {
		t.Error("Bundle: got false, want true")
	}
}

func TestBindFlags_SkipsUntaggedFields(t *testing.T) {
	type params struct {
		Tagged   string `flag:"tagged"`
		Untagged string
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}
	if flagSet.Lookup("tagged") == nil {
		t.Error("tagged flag not registered")
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field should not produce a flag")
	}
}

func TestBindFlags_EmbeddedStruct(t *testing.T) {
	type common struct {
		Config string `flag:"config"`
	}
	type params struct {
		common
		Tag string `flag:"tag"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}

	if err := flagSet.Parse([]string{"--config", "x.yaml", "--tag", "TradingBot"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if p.Config != "x.yaml" {
		t.Errorf("embedded Config: got %q", p.Config)
	}
	if p.Tag != "TradingBot" {
		t.Errorf("Tag: got %q", p.Tag)
	}
}

func TestBindFlags_JSONOutputEmbedding(t *testing.T) {
	type params struct {
		JSONOutput
		Tag string `flag:"tag"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags() error: %v", err)
	}

	if err := flagSet.Parse([]string{"--json"}); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if !p.OutputJSON {
		t.Error("OutputJSON: got false, want true")
	}
}

func TestBindFlags_RejectsNonPointer(t *testing.T) {
	type params struct{}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(params{}, flagSet); err == nil {
		t.Error("BindFlags() should reject a non-pointer")
	}
}

func TestBindFlags_RejectsUnsupportedType(t *testing.T) {
	type params struct {
		Bad map[string]string `flag:"bad"`
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err == nil {
		t.Error("BindFlags() should reject an unsupported field type")
	}
}

func TestBindFlags_RejectsBadDefault(t *testing.T) {
	type params struct {
		Port int `flag:"port" default:"not-a-number"`
	}
	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err == nil {
		t.Error("BindFlags() should reject an unparseable default")
	}
}
