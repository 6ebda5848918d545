// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package swarm

import "refactor-swarm/internal/auditor"

// Outcome is the terminal classification of one repair task.
type Outcome string

const (
	// OutcomeAlreadyPassing means the initial audit found nothing to fix.
	OutcomeAlreadyPassing Outcome = "already-passing"
	// OutcomeFixed means a committed candidate made the tests pass.
	OutcomeFixed Outcome = "fixed"
	// OutcomeLimitReached means the iteration ceiling was hit without a fix.
	OutcomeLimitReached Outcome = "limit-reached"
	// OutcomeError means a fatal classified error ended the task early.
	OutcomeError Outcome = "error"
)

// taskState is the mutable per-task working set the controller threads
// through the loop phases. All paths are canonical sandbox paths.
type taskState struct {
	CodePath   string
	TestPath   string
	BackupPath string
	Code       string
	TestCode   string
	Candidate  string
	Analysis   auditor.Report
	Tests      auditor.TestReport
}

// TaskResult is the per-file outcome the driver reports.
type TaskResult struct {
	File       string
	Outcome    Outcome
	Iterations int
	Err        *TaskError
}

// Fixed reports whether the task ended with passing tests.
func (r TaskResult) Fixed() bool {
	return r.Outcome == OutcomeFixed || r.Outcome == OutcomeAlreadyPassing
}
