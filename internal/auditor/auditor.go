// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package auditor gathers the static-analysis and test signals for a repair
// task by invoking the analyzer and the test runner as subprocesses.
//
// The two sub-runs have different failure semantics: an analyzer that cannot
// execute produces a degraded (empty) report and the task continues, while a
// test runner that cannot execute (as opposed to tests failing) is fatal
// and surfaces as ErrRunner.
package auditor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"time"
)

// ErrRunner reports that the test runner itself failed to execute:
// missing executable, timeout, or an internal/usage error exit.
var ErrRunner = errors.New("test runner execution failed")

// pytest exit codes. 0 and 1 carry a test verdict; everything else means
// the runner did not complete a test run.
const (
	exitTestsPassed = 0
	exitTestsFailed = 1
)

// Command describes one subprocess collaborator invocation. The target file
// path is appended to Args at run time.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration
}

// Report is the static-analysis output. Degraded marks a report produced
// after the analyzer failed to execute; findings-with-nonzero-exit is the
// analyzer's normal mode and is not degraded.
type Report struct {
	Output   string
	Degraded bool
}

// TestReport is the test-execution output with the derived pass signal.
type TestReport struct {
	Output      string
	Passed      bool
	TotalTests  int
	PassedTests int
	FailedTests int
	Summary     string
}

// Auditor runs both collaborators against a code/test pair.
type Auditor struct {
	analyzer Command
	tests    Command
	parser   *reportParser
	logger   *slog.Logger
}

// New creates an Auditor with the given collaborator commands.
func New(analyzer, tests Command, logger *slog.Logger) *Auditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Auditor{
		analyzer: analyzer,
		tests:    tests,
		parser:   newReportParser(),
		logger:   logger,
	}
}

// Audit runs static analysis on codePath and the paired tests on testPath.
// The two sub-runs are independent; only a runner execution failure is
// returned as an error.
func (a *Auditor) Audit(ctx context.Context, codePath, testPath string) (Report, TestReport, error) {
	analysis := a.RunAnalyzer(ctx, codePath)

	tests, err := a.RunTests(ctx, testPath)
	if err != nil {
		return analysis, tests, err
	}
	return analysis, tests, nil
}

// RunAnalyzer invokes the static analyzer on codePath. Never fatal: the
// analyzer's exit status carries findings, not success, and a crash or a
// missing binary yields a degraded empty report.
func (a *Auditor) RunAnalyzer(ctx context.Context, codePath string) Report {
	runCtx, cancel := context.WithTimeout(ctx, a.analyzer.Timeout)
	defer cancel()

	args := append(append([]string{}, a.analyzer.Args...), codePath)
	cmd := exec.CommandContext(runCtx, a.analyzer.Name, args...)
	cmd.Dir = filepath.Dir(codePath)

	output, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && runCtx.Err() == nil {
			// Findings: pylint exits nonzero whenever it reports issues.
			return Report{Output: string(output)}
		}
		a.logger.Warn("analyzer execution failed, continuing with degraded report",
			"analyzer", a.analyzer.Name,
			"file", codePath,
			"error", err)
		return Report{Degraded: true}
	}
	return Report{Output: string(output)}
}

// RunTests invokes the test runner on testPath and derives the pass signal
// from its exit code and output. Exit codes other than pass/fail (pytest
// 2-5: interrupted, internal error, usage error, no tests collected) are
// runner failures, as are spawn errors and timeouts.
func (a *Auditor) RunTests(ctx context.Context, testPath string) (TestReport, error) {
	runCtx, cancel := context.WithTimeout(ctx, a.tests.Timeout)
	defer cancel()

	args := append(append([]string{}, a.tests.Args...), testPath)
	cmd := exec.CommandContext(runCtx, a.tests.Name, args...)
	cmd.Dir = filepath.Dir(testPath)

	output, err := cmd.CombinedOutput()
	report := a.parser.parse(string(output))

	if runCtx.Err() == context.DeadlineExceeded {
		return report, fmt.Errorf("%s timed out after %s: %w", a.tests.Name, a.tests.Timeout, ErrRunner)
	}

	switch code := exitCode(err); {
	case err == nil || code == exitTestsPassed:
		report.Passed = true
		return report, nil
	case code == exitTestsFailed:
		report.Passed = false
		return report, nil
	case code >= 0:
		return report, fmt.Errorf("%s exited with code %d: %w", a.tests.Name, code, ErrRunner)
	default:
		return report, fmt.Errorf("failed to execute %s: %v: %w", a.tests.Name, err, ErrRunner)
	}
}

// exitCode extracts the process exit code, or -1 when the process never ran.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
