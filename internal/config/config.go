package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults for the view caps. The engine re-reads disk on every request, so
// the caps bound how much of it one request may touch.
const (
	DefaultMaxSessions     = 200
	DefaultMaxCommandFiles = 20
	DefaultMaxCommands     = 200
	DefaultMaxChanges      = 20
)

type AppConfig struct {
	LogsDir      string   `yaml:"logsDir"`
	WorkspaceDir string   `yaml:"workspaceDir"`
	ExportDir    string   `yaml:"exportDir"`
	DBPath       string   `yaml:"dbPath"`
	HTTPAddr     string   `yaml:"httpAddr"`
	MemoryDirs   []string `yaml:"memoryDirs"`

	MaxSessions     int `yaml:"maxSessions"`
	MaxCommandFiles int `yaml:"maxCommandFiles"`
	MaxCommands     int `yaml:"maxCommands"`
	MaxChanges      int `yaml:"maxChanges"`

	Serve bool `yaml:"-"`
}

// Parse builds the runtime config. Precedence: flags, then environment,
// then the optional YAML config file, then defaults.
func Parse() (AppConfig, error) {
	cfg, err := loadFile(defaultConfigPath())
	if err != nil {
		return cfg, err
	}
	applyDefaults(&cfg)

	flag.StringVar(&cfg.LogsDir, "logs-dir", cfg.LogsDir, "directory holding session .jsonl logs")
	flag.StringVar(&cfg.WorkspaceDir, "workspace", cfg.WorkspaceDir, "agent workspace root (memory area)")
	flag.StringVar(&cfg.ExportDir, "export-dir", cfg.ExportDir, "transcript export directory")
	flag.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "path to the search index database")
	flag.StringVar(&cfg.HTTPAddr, "addr", cfg.HTTPAddr, "listen address for -serve")
	flag.BoolVar(&cfg.Serve, "serve", false, "run the HTTP server instead of the TUI")
	flag.IntVar(&cfg.MaxSessions, "max-sessions", cfg.MaxSessions, "cap on sessions per listing")
	flag.IntVar(&cfg.MaxCommandFiles, "max-command-files", cfg.MaxCommandFiles, "cap on files scanned for the command stream")
	flag.IntVar(&cfg.MaxCommands, "max-commands", cfg.MaxCommands, "cap on returned commands")
	flag.Parse()

	if cfg.LogsDir == "" {
		return cfg, fmt.Errorf("logs directory not set (flag -logs-dir, env AGENT_LOGS_DIR, or config file)")
	}
	cfg.LogsDir = filepath.Clean(cfg.LogsDir)
	if cfg.WorkspaceDir != "" {
		cfg.WorkspaceDir = filepath.Clean(cfg.WorkspaceDir)
	}

	if cfg.DBPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.DBPath = filepath.Join(home, ".local", "share", "agentview", "index.sqlite")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return cfg, fmt.Errorf("create db dir: %w", err)
	}
	return cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	// Environment beats the config file; flags beat both in Parse.
	if v := os.Getenv("AGENT_LOGS_DIR"); v != "" {
		cfg.LogsDir = v
	}
	if v := os.Getenv("AGENT_WORKSPACE"); v != "" {
		cfg.WorkspaceDir = v
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = "127.0.0.1:7777"
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.MaxCommandFiles <= 0 {
		cfg.MaxCommandFiles = DefaultMaxCommandFiles
	}
	if cfg.MaxCommands <= 0 {
		cfg.MaxCommands = DefaultMaxCommands
	}
	if cfg.MaxChanges <= 0 {
		cfg.MaxChanges = DefaultMaxChanges
	}
}

func defaultConfigPath() string {
	if explicit := os.Getenv("AGENTVIEW_CONFIG"); explicit != "" {
		return explicit
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "agentview", "config.yaml")
}

func loadFile(path string) (AppConfig, error) {
	var cfg AppConfig
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		// Absent config file is the common case.
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}
