// Copyright 2026 The Botops Authors
// SPDX-License-Identifier: Apache-2.0

package remote

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestSSHArgs(t *testing.T) {
	host := NewHost("ec2-user", "203.0.113.10", "/work/TradingBotKey_AU.pem")

	got := host.sshArgs("sudo systemctl daemon-reload")
	want := []string{
		"-i", "/work/TradingBotKey_AU.pem",
		"-o", "StrictHostKeyChecking=no",
		"ec2-user@203.0.113.10",
		"sudo systemctl daemon-reload",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("sshArgs: got %v, want %v", got, want)
	}
}

func TestSCPArgs(t *testing.T) {
	host := NewHost("ec2-user", "203.0.113.10", "/work/key.pem")

	got := host.scpArgs([]string{"app", "config.yaml"}, "/home/ec2-user/trading-bot/")
	want := []string{
		"-i", "/work/key.pem",
		"-o", "StrictHostKeyChecking=no",
		"-r",
		"app", "config.yaml",
		"ec2-user@203.0.113.10:/home/ec2-user/trading-bot/",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("scpArgs: got %v, want %v", got, want)
	}
}

func TestRunScript_JoinsWithAnd(t *testing.T) {
	host := NewHost("ec2-user", "h", "k")
	args := host.sshArgs("cd /x && pip3 install -r requirements.txt")
	if args[len(args)-1] != "cd /x && pip3 install -r requirements.txt" {
		t.Errorf("remote command line: got %q", args[len(args)-1])
	}
}

func TestFixKeyPermissions(t *testing.T) {
	keyPath := filepath.Join(t.TempDir(), "key.pem")
	if err := os.WriteFile(keyPath, []byte("private"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := FixKeyPermissions(keyPath); err != nil {
		t.Fatalf("FixKeyPermissions() error: %v", err)
	}

	info, err := os.Stat(keyPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("key permissions: got %o, want 0600", info.Mode().Perm())
	}
}

func TestFindKey(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "OtherKey.pem"))
	writeFile(t, filepath.Join(root, "TradingBotKey_AU.pem"))

	t.Run("prefers configured name", func(t *testing.T) {
		got, err := FindKey(root, "TradingBotKey_AU.pem")
		if err != nil {
			t.Fatalf("FindKey() error: %v", err)
		}
		if got != filepath.Join(root, "TradingBotKey_AU.pem") {
			t.Errorf("FindKey(): got %q", got)
		}
	})

	t.Run("falls back to any pem", func(t *testing.T) {
		got, err := FindKey(root, "Missing.pem")
		if err != nil {
			t.Fatalf("FindKey() error: %v", err)
		}
		if filepath.Ext(got) != ".pem" {
			t.Errorf("FindKey(): got %q, want a .pem file", got)
		}
	})

	t.Run("errors when no key exists", func(t *testing.T) {
		if _, err := FindKey(t.TempDir(), "Missing.pem"); err == nil {
			t.Error("expected error for keyless directory")
		}
	})
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
}
