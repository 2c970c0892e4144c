package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()

	if cfg.Listen != "127.0.0.1:9321" {
		t.Errorf("Listen = %q, want %q", cfg.Listen, "127.0.0.1:9321")
	}
	if cfg.ReadTimeout != 30 {
		t.Errorf("ReadTimeout = %d, want %d", cfg.ReadTimeout, 30)
	}
	if cfg.WriteTimeout != 60 {
		t.Errorf("WriteTimeout = %d, want %d", cfg.WriteTimeout, 60)
	}
	if cfg.CommandTimeout != 10 {
		t.Errorf("CommandTimeout = %d, want %d", cfg.CommandTimeout, 10)
	}
}

func TestGetStateDir(t *testing.T) {
	origXDG := os.Getenv("XDG_CONFIG_HOME")
	origHome := os.Getenv("HOME")
	defer func() {
		os.Setenv("XDG_CONFIG_HOME", origXDG)
		os.Setenv("HOME", origHome)
	}()

	os.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	os.Setenv("HOME", "/home/testuser")

	stateDir := GetDefaultStateDir()
	if !strings.Contains(stateDir, "wintune") {
		t.Errorf("StateDir should contain 'wintune', got %q", stateDir)
	}
}

func TestServerConfigGetPaths(t *testing.T) {
	cfg := &ServerConfig{
		StateDir: "/tmp/wintune-test",
	}

	if got := cfg.GetHistoryDir(); got != "/tmp/wintune-test/history" {
		t.Errorf("HistoryDir = %q, want %q", got, "/tmp/wintune-test/history")
	}
	if got := cfg.GetSnapshotPath(); got != "/tmp/wintune-test/snapshot.json" {
		t.Errorf("SnapshotPath = %q, want %q", got, "/tmp/wintune-test/snapshot.json")
	}
}

func TestLoadFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "wintune.yaml")
	content := "listen: 0.0.0.0:9999\napi-key: secret\ncommand-timeout: 5\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultServerConfig()
	if err := cfg.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Listen != "0.0.0.0:9999" {
		t.Errorf("Listen = %q, want %q", cfg.Listen, "0.0.0.0:9999")
	}
	if cfg.APIKey != "secret" {
		t.Errorf("APIKey = %q, want %q", cfg.APIKey, "secret")
	}
	if cfg.CommandTimeout != 5 {
		t.Errorf("CommandTimeout = %d, want 5", cfg.CommandTimeout)
	}
	// Untouched fields keep their defaults
	if cfg.ReadTimeout != 30 {
		t.Errorf("ReadTimeout = %d, want 30", cfg.ReadTimeout)
	}
}

func TestLoadFileMissing(t *testing.T) {
	cfg := DefaultServerConfig()
	if err := cfg.LoadFile(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("LoadFile() should fail for a missing file")
	}
}
