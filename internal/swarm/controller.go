// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package swarm orchestrates the audit, fix, and judge roles into the
// bounded repair loop, one task per code/test pair.
package swarm

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"refactor-swarm/internal/auditor"
	"refactor-swarm/internal/fileops"
	"refactor-swarm/internal/fixer"
	"refactor-swarm/internal/journal"
	"refactor-swarm/internal/judge"
)

// AuditorRole gathers both audit signals for a pair.
type AuditorRole interface {
	Audit(ctx context.Context, codePath, testPath string) (auditor.Report, auditor.TestReport, error)
}

// FixerRole proposes a screened candidate for a failing pair.
type FixerRole interface {
	ProposeFix(ctx context.Context, payload fixer.Payload) (fixer.Result, error)
}

// JudgeRole commits a candidate and verifies it.
type JudgeRole interface {
	Verify(ctx context.Context, codePath, testPath, candidate string) (judge.Verdict, error)
}

// DefaultTaskDescription is the fixer context used when the caller supplies
// none.
const DefaultTaskDescription = "Fix the bugs in this file so that its tests pass. Do not modify the tests."

// Controller runs one repair task end to end.
type Controller struct {
	files   *fileops.Manager
	auditor AuditorRole
	fixer   FixerRole
	judge   JudgeRole
	journal *journal.Journal
	ceiling int
	task    string
	logger  *slog.Logger
}

// NewController wires the roles together. ceiling bounds repair rounds per
// task; task is the free-text description handed to the fixer, fixed for
// the whole batch.
func NewController(files *fileops.Manager, a AuditorRole, f FixerRole, j JudgeRole, jn *journal.Journal, ceiling int, task string, logger *slog.Logger) *Controller {
	if task == "" {
		task = DefaultTaskDescription
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		files:   files,
		auditor: a,
		fixer:   f,
		judge:   j,
		journal: jn,
		ceiling: ceiling,
		task:    task,
		logger:  logger,
	}
}

// Run repairs one code file. The path is interpreted relative to the sandbox
// root. Run never panics the batch: every failure comes back classified in
// the TaskResult.
func (c *Controller) Run(ctx context.Context, codePath string) TaskResult {
	result := TaskResult{File: codePath}

	code, test, err := c.files.ResolvePair(codePath)
	if err != nil {
		result.Outcome = OutcomeError
		result.Err = Classify(journal.RoleSystem, codePath, err)
		c.record(journal.RoleSystem, "resolve pair "+codePath, journal.StatusFailure, result.Err.Error())
		return result
	}

	// One backup per task, taken before anything can modify the file.
	backup, err := c.files.Backup(code)
	if err != nil {
		result.Outcome = OutcomeError
		result.Err = Classify(journal.RoleSystem, codePath, err)
		c.record(journal.RoleSystem, "backup "+codePath, journal.StatusFailure, result.Err.Error())
		return result
	}

	testCode, err := c.files.Read(test)
	if err != nil {
		result.Outcome = OutcomeError
		result.Err = Classify(journal.RoleSystem, codePath, err)
		c.record(journal.RoleSystem, "read tests for "+codePath, journal.StatusFailure, result.Err.Error())
		return result
	}

	st := &taskState{
		CodePath:   code,
		TestPath:   test,
		BackupPath: backup,
		TestCode:   testCode,
	}
	c.record(journal.RoleSystem, "task start "+codePath, journal.StatusSuccess, "backup at "+backup)

	m := NewMachine(c.ceiling, c.logger.With("file", codePath))
	committed := false

	for !m.Terminal() {
		switch m.Phase() {
		case PhaseAudit:
			if !c.audit(ctx, m, st, &result) {
				continue
			}
			m.ObserveAudit(st.Tests.Passed)

		case PhaseFix:
			c.fix(ctx, m, st, &result)

		case PhaseJudge:
			if c.verify(ctx, m, st, &result) {
				committed = true
			}
		}
	}

	switch m.Phase() {
	case PhaseSucceeded:
		if committed {
			result.Outcome = OutcomeFixed
		} else {
			result.Outcome = OutcomeAlreadyPassing
		}
	case PhaseLimitReached:
		result.Outcome = OutcomeLimitReached
	case PhaseFailed:
		result.Outcome = OutcomeError
	}
	result.Iterations = m.Iteration()

	c.record(journal.RoleSystem, "task end "+codePath, finalStatus(result.Outcome),
		fmt.Sprintf("outcome=%s iterations=%d", result.Outcome, result.Iterations))
	return result
}

// audit refreshes both signals. Returns false when the task turned fatal.
func (c *Controller) audit(ctx context.Context, m *Machine, st *taskState, result *TaskResult) bool {
	content, err := c.files.Read(st.CodePath)
	if err != nil {
		result.Err = Classify(journal.RoleAuditor, result.File, err)
		c.record(journal.RoleAuditor, "read "+result.File, journal.StatusFailure, result.Err.Error())
		m.Fail()
		return false
	}
	st.Code = content

	analysis, tests, err := c.auditor.Audit(ctx, st.CodePath, st.TestPath)
	if err != nil {
		result.Err = Classify(journal.RoleAuditor, result.File, err)
		c.record(journal.RoleAuditor, "audit "+result.File, journal.StatusFailure, result.Err.Error())
		m.Fail()
		return false
	}
	st.Analysis = analysis
	st.Tests = tests

	status := journal.StatusFailure
	if tests.Passed {
		status = journal.StatusSuccess
	}
	c.record(journal.RoleAuditor, "audit "+result.File, status,
		fmt.Sprintf("%d passed, %d failed", tests.PassedTests, tests.FailedTests))
	return true
}

// fix runs one proposal round. An unavailable backend and a no-change reply
// both consume an iteration; any other failure is fatal.
func (c *Controller) fix(ctx context.Context, m *Machine, st *taskState, result *TaskResult) {
	payload := fixer.Payload{
		TargetFile:      filepath.Base(st.CodePath),
		TaskDescription: c.task,
		Code:            st.Code,
		TestCode:        st.TestCode,
		AnalysisReport:  st.Analysis.Output,
		TestSummary:     st.Tests.Summary,
		TestOutput:      st.Tests.Output,
		Iteration:       m.Iteration(),
	}

	proposal, err := c.fixer.ProposeFix(ctx, payload)
	if err != nil {
		terr := Classify(journal.RoleFixer, result.File, err)
		c.record(journal.RoleFixer, "propose fix for "+result.File, journal.StatusFailure, terr.Error())
		if terr.Kind == KindGenerationUnavailable {
			// Recoverable: the round failed, the loop keeps going.
			m.ObserveFix(true)
			return
		}
		result.Err = terr
		m.Fail()
		return
	}

	if proposal.NoChange {
		c.record(journal.RoleFixer, "propose fix for "+result.File, journal.StatusFailure, proposal.Reason)
		m.ObserveFix(true)
		return
	}

	st.Candidate = proposal.Code
	c.record(journal.RoleFixer, "propose fix for "+result.File, journal.StatusSuccess, "")
	m.ObserveFix(false)
}

// verify commits and re-tests the candidate. Returns true when the commit
// landed on disk, whatever the verdict.
func (c *Controller) verify(ctx context.Context, m *Machine, st *taskState, result *TaskResult) bool {
	verdict, err := c.judge.Verify(ctx, st.CodePath, st.TestPath, st.Candidate)
	if err != nil {
		result.Err = Classify(journal.RoleJudge, result.File, err)
		c.record(journal.RoleJudge, "verify "+result.File, journal.StatusFailure, result.Err.Error())
		m.Fail()
		return false
	}

	status := journal.StatusFailure
	if verdict.Passed {
		status = journal.StatusSuccess
	}
	c.record(journal.RoleJudge, "verify "+result.File, status,
		fmt.Sprintf("%d passed, %d failed", verdict.Report.PassedTests, verdict.Report.FailedTests))
	m.ObserveVerdict(verdict.Passed)
	return true
}

// record appends to the journal. Journal failures are logged and swallowed:
// the audit trail must never sink a task.
func (c *Controller) record(role, action string, status journal.Status, detail string) {
	if err := c.journal.Append(role, action, status, detail); err != nil {
		c.logger.Error("failed to append journal record",
			"role", role,
			"action", action,
			"error", err)
	}
}

func finalStatus(outcome Outcome) journal.Status {
	if outcome == OutcomeFixed || outcome == OutcomeAlreadyPassing {
		return journal.StatusSuccess
	}
	return journal.StatusFailure
}
