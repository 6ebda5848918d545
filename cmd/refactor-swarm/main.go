// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"refactor-swarm/internal/auditor"
	"refactor-swarm/internal/config"
	"refactor-swarm/internal/fileops"
	"refactor-swarm/internal/fixer"
	"refactor-swarm/internal/journal"
	"refactor-swarm/internal/judge"
	"refactor-swarm/internal/llm"
	"refactor-swarm/internal/sandbox"
	"refactor-swarm/internal/swarm"
)

const version = "0.1.0"

func main() {
	targetDir := flag.String("target-dir", "", "directory of Python code/test pairs to repair (required)")
	configPath := flag.String("config", "", "path to YAML config (optional, defaults apply)")
	task := flag.String("task", "", "task description handed to the fixer (optional)")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("refactor-swarm v%s\n", version)
		return
	}
	if *targetDir == "" {
		fmt.Fprintln(os.Stderr, "Error: -target-dir is required")
		flag.Usage()
		os.Exit(2)
	}

	logger := newLogger(*verbose)

	if err := run(*targetDir, *configPath, *task, logger); err != nil {
		logger.Error("batch failed", "error", err)
		os.Exit(1)
	}
}

func run(targetDir, configPath, task string, logger *slog.Logger) error {
	if configPath == "" {
		// Default config lives beside the target directory; Load treats a
		// missing file as all-defaults.
		configPath = filepath.Join(filepath.Dir(filepath.Clean(targetDir)), "refactor-swarm.yaml")
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	root, err := sandbox.New(targetDir)
	if err != nil {
		return fmt.Errorf("failed to open sandbox: %w", err)
	}
	files := fileops.NewManager(root, cfg.Sandbox.BackupDir)

	jn, err := journal.Open(filepath.Join(root.Path(), cfg.Sandbox.Journal))
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	client, err := llm.NewClient(cfg.Generation)
	if err != nil {
		return fmt.Errorf("failed to build generation client: %w", err)
	}

	aud := auditor.New(
		commandFrom(cfg.Analyzer),
		commandFrom(cfg.Tests),
		logger.With("component", "auditor"),
	)
	fix := fixer.New(client, logger.With("component", "fixer"))
	jdg := judge.New(files, aud, logger.With("component", "judge"))

	controller := swarm.NewController(files, aud, fix, jdg, jn, cfg.Loop.MaxIterations, task, logger)
	driver := swarm.NewDriver(files, controller, jn, os.Stdout, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting batch",
		"target_dir", root.Path(),
		"backend", cfg.Generation.Backend,
		"model", cfg.Generation.Model,
		"max_iterations", cfg.Loop.MaxIterations)

	results, err := driver.ProcessDirectory(ctx, ".")
	if err != nil {
		return err
	}

	for _, result := range results {
		if result.Outcome == swarm.OutcomeError {
			logger.Warn("task ended with error", "file", result.File, "error", result.Err)
		}
	}
	return nil
}

func commandFrom(cfg config.CommandConfig) auditor.Command {
	return auditor.Command{
		Name:    cfg.Command,
		Args:    cfg.Args,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
