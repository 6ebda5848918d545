// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package judge commits a screened candidate to the working tree and
// verifies it by re-running the paired tests. The commit-then-verify order
// is deliberate: the tests must observe the candidate exactly as it will
// live on disk.
package judge

import (
	"context"
	"fmt"
	"log/slog"

	"refactor-swarm/internal/auditor"
)

// Committer writes file content inside the sandbox. Satisfied by
// fileops.Manager.
type Committer interface {
	Write(path, content string) error
}

// TestRunner re-executes the paired tests. Satisfied by auditor.Auditor.
type TestRunner interface {
	RunTests(ctx context.Context, testPath string) (auditor.TestReport, error)
}

// Verdict is the outcome of one commit-and-verify round.
type Verdict struct {
	Passed bool
	Report auditor.TestReport
}

// Judge verifies candidates against the real test suite.
type Judge struct {
	files  Committer
	runner TestRunner
	logger *slog.Logger
}

// New creates a Judge that commits through files and verifies through runner.
func New(files Committer, runner TestRunner, logger *slog.Logger) *Judge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Judge{files: files, runner: runner, logger: logger}
}

// Verify writes candidate to codePath and re-runs the tests at testPath.
// A failed write or a runner execution failure is an error; failing tests
// are a normal verdict, and the committed candidate stays in place as the
// baseline for the next round.
func (j *Judge) Verify(ctx context.Context, codePath, testPath, candidate string) (Verdict, error) {
	if err := j.files.Write(codePath, candidate); err != nil {
		return Verdict{}, fmt.Errorf("failed to commit candidate: %w", err)
	}

	report, err := j.runner.RunTests(ctx, testPath)
	if err != nil {
		return Verdict{Report: report}, err
	}

	j.logger.Debug("candidate verified",
		"file", codePath,
		"passed", report.Passed,
		"failed_tests", report.FailedTests)
	return Verdict{Passed: report.Passed, Report: report}, nil
}
