package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"geoglobe/internal/config"
	"geoglobe/internal/logger"
	"geoglobe/internal/tui"
)

func main() {
	flags := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	headless := cfg.Export.SVG != ""
	// The TUI owns the terminal, so only headless runs log to stderr.
	log := logger.New(cfg.Logging.Level, logger.DefaultFileConfig(cfg.Logging.LogFile), headless)
	defer func() { _ = log.Sync() }()

	if headless {
		if err := export(cfg, log); err != nil {
			log.Error("export failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	m, err := tui.New(cfg, log)
	if err != nil {
		log.Error("startup failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "geoglobe: %v\n", err)
		os.Exit(1)
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run(); err != nil {
		log.Error("program exited", zap.Error(err))
		fmt.Fprintf(os.Stderr, "geoglobe: %v\n", err)
		os.Exit(1)
	}
}
