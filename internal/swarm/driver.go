// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package swarm

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"refactor-swarm/internal/fileops"
	"refactor-swarm/internal/journal"
)

// Driver runs the repair loop over every code/test pair under a directory,
// strictly one task at a time. A failed task never stops the batch.
type Driver struct {
	files      *fileops.Manager
	controller *Controller
	journal    *journal.Journal
	out        io.Writer
	logger     *slog.Logger
}

// NewDriver creates a batch driver writing per-task progress to out.
func NewDriver(files *fileops.Manager, controller *Controller, jn *journal.Journal, out io.Writer, logger *slog.Logger) *Driver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Driver{
		files:      files,
		controller: controller,
		journal:    jn,
		out:        out,
		logger:     logger,
	}
}

// ProcessDirectory discovers every repair candidate under dir and runs one
// task per pair, in deterministic order. The returned results cover every
// candidate, including the failed ones.
func (d *Driver) ProcessDirectory(ctx context.Context, dir string) ([]TaskResult, error) {
	candidates, err := d.files.ListCodeFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to discover repair candidates: %w", err)
	}

	d.appendBatch("batch start", journal.StatusSuccess, fmt.Sprintf("%d candidate files", len(candidates)))

	results := make([]TaskResult, 0, len(candidates))
	fixed := 0
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			d.appendBatch("batch interrupted", journal.StatusFailure, ctx.Err().Error())
			return results, ctx.Err()
		}

		rel := d.displayPath(candidate)
		result := d.controller.Run(ctx, rel)
		results = append(results, result)
		if result.Fixed() {
			fixed++
		}

		line := fmt.Sprintf("%s: %s (iterations: %d)", result.File, result.Outcome, result.Iterations)
		if result.Err != nil {
			line += " - " + result.Err.Error()
		}
		fmt.Fprintln(d.out, line)
	}

	fmt.Fprintf(d.out, "all tasks processed: %d/%d fixed or already passing\n", fixed, len(results))
	d.appendBatch("batch end", journal.StatusSuccess, fmt.Sprintf("%d/%d fixed", fixed, len(results)))
	return results, nil
}

// displayPath shortens a canonical path to root-relative form for reports.
func (d *Driver) displayPath(path string) string {
	rel, err := filepath.Rel(d.files.Root().Path(), path)
	if err != nil {
		return path
	}
	return rel
}

func (d *Driver) appendBatch(action string, status journal.Status, detail string) {
	if err := d.journal.Append(journal.RoleSystem, action, status, detail); err != nil {
		d.logger.Error("failed to append journal record", "action", action, "error", err)
	}
}
