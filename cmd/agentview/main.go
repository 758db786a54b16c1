package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"agentview/internal/config"
	"agentview/internal/export"
	"agentview/internal/logview"
	"agentview/internal/memory"
	"agentview/internal/search"
	"agentview/internal/ui"
	"agentview/internal/web"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "agentview:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Parse()
	if err != nil {
		return err
	}

	idx, err := search.Open(cfg.DBPath)
	if err != nil {
		// The viewer still works without search.
		slog.Warn("search index unavailable", "path", cfg.DBPath, "err", err)
		idx = nil
	}
	if idx != nil {
		defer idx.Close()
	}

	if cfg.Serve {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		if idx != nil {
			files := logview.ListSessionFiles(cfg.LogsDir)
			if err := idx.Rebuild(context.Background(), files); err != nil {
				logger.Warn("index rebuild failed", "err", err)
			}
		}
		mem := memory.NewReader(cfg.WorkspaceDir, cfg.MemoryDirs)
		return web.New(cfg, mem, idx, logger).ListenAndServe()
	}

	model := ui.NewModel(cfg, idx, export.New(cfg.ExportDir))
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return err
}
