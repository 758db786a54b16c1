package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "logsDir: /var/log/agent\nhttpAddr: :9000\nmaxSessions: 50\nmemoryDirs:\n  - memory\n  - journal\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadFile(path)
	if err != nil {
		t.Fatalf("loadFile: %v", err)
	}
	if cfg.LogsDir != "/var/log/agent" {
		t.Errorf("logsDir=%q", cfg.LogsDir)
	}
	if cfg.HTTPAddr != ":9000" {
		t.Errorf("httpAddr=%q", cfg.HTTPAddr)
	}
	if cfg.MaxSessions != 50 {
		t.Errorf("maxSessions=%d", cfg.MaxSessions)
	}
	if len(cfg.MemoryDirs) != 2 || cfg.MemoryDirs[1] != "journal" {
		t.Errorf("memoryDirs=%v", cfg.MemoryDirs)
	}
}

func TestLoadFileMissingIsNotError(t *testing.T) {
	cfg, err := loadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing config file should not error: %v", err)
	}
	if cfg.LogsDir != "" {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logsDir: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := loadFile(path); err == nil {
		t.Error("malformed yaml should surface an error")
	}
}

func TestEnvOverridesConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "logsDir: /from/file\nworkspaceDir: /workspace/file\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("AGENT_LOGS_DIR", "/from/env")
	t.Setenv("AGENT_WORKSPACE", "")

	cfg, err := loadFile(path)
	if err != nil {
		t.Fatalf("loadFile: %v", err)
	}
	applyDefaults(&cfg)

	if cfg.LogsDir != "/from/env" {
		t.Errorf("logsDir=%q, want env value to beat the file", cfg.LogsDir)
	}
	if cfg.WorkspaceDir != "/workspace/file" {
		t.Errorf("workspaceDir=%q, want file value when env is unset", cfg.WorkspaceDir)
	}
}

func TestApplyDefaults(t *testing.T) {
	t.Setenv("AGENT_LOGS_DIR", "")
	t.Setenv("AGENT_WORKSPACE", "")

	var cfg AppConfig
	applyDefaults(&cfg)
	if cfg.MaxSessions != DefaultMaxSessions {
		t.Errorf("maxSessions=%d", cfg.MaxSessions)
	}
	if cfg.MaxCommandFiles != DefaultMaxCommandFiles {
		t.Errorf("maxCommandFiles=%d", cfg.MaxCommandFiles)
	}
	if cfg.MaxCommands != DefaultMaxCommands {
		t.Errorf("maxCommands=%d", cfg.MaxCommands)
	}
	if cfg.HTTPAddr == "" {
		t.Error("httpAddr default missing")
	}

	preset := AppConfig{MaxSessions: 7, HTTPAddr: ":1"}
	applyDefaults(&preset)
	if preset.MaxSessions != 7 || preset.HTTPAddr != ":1" {
		t.Errorf("defaults overwrote explicit values: %+v", preset)
	}
}
