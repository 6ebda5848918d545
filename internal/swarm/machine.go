// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package swarm

import "log/slog"

// Phase is the position of one repair task in its loop.
type Phase int

const (
	// PhaseAudit gathers fresh analyzer and test signals.
	PhaseAudit Phase = iota
	// PhaseFix asks the generation backend for a candidate.
	PhaseFix
	// PhaseJudge commits the candidate and re-runs the tests.
	PhaseJudge
	// PhaseSucceeded is terminal: the tests pass.
	PhaseSucceeded
	// PhaseLimitReached is terminal: the iteration ceiling was hit.
	PhaseLimitReached
	// PhaseFailed is terminal: a fatal classified error ended the task.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseAudit:
		return "audit"
	case PhaseFix:
		return "fix"
	case PhaseJudge:
		return "judge"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseLimitReached:
		return "limit-reached"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends the task.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseLimitReached || p == PhaseFailed
}

// Machine drives one task through audit, fix, and judge phases under a hard
// iteration ceiling. An iteration is one completed repair round: a no-change
// proposal or a judged candidate, whatever its verdict. The machine can
// never run more than ceiling rounds, whatever the collaborators report.
type Machine struct {
	phase     Phase
	iteration int
	ceiling   int
	logger    *slog.Logger
}

// NewMachine creates a machine in the audit phase.
func NewMachine(ceiling int, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{
		phase:   PhaseAudit,
		ceiling: ceiling,
		logger:  logger,
	}
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Iteration returns the number of completed repair rounds.
func (m *Machine) Iteration() int {
	return m.iteration
}

// Terminal reports whether the task is done.
func (m *Machine) Terminal() bool {
	return m.phase.Terminal()
}

// ObserveAudit records the audit verdict. Passing tests end the task
// immediately, possibly at iteration zero.
func (m *Machine) ObserveAudit(testsPassed bool) {
	if m.phase != PhaseAudit {
		return
	}
	if testsPassed {
		m.transition(PhaseSucceeded, "tests already pass")
		return
	}
	m.transition(PhaseFix, "tests failing")
}

// ObserveFix records the proposal outcome. A no-change round consumes an
// iteration without touching the working tree; a usable candidate moves to
// verification.
func (m *Machine) ObserveFix(noChange bool) {
	if m.phase != PhaseFix {
		return
	}
	if noChange {
		m.failedRound("proposal produced no change")
		return
	}
	m.transition(PhaseJudge, "candidate ready")
}

// ObserveVerdict records the verification outcome. Every judged round
// consumes an iteration; a failing candidate sends the task back to a fresh
// audit unless the ceiling is hit.
func (m *Machine) ObserveVerdict(testsPassed bool) {
	if m.phase != PhaseJudge {
		return
	}
	m.iteration++
	if testsPassed {
		m.transition(PhaseSucceeded, "candidate passes tests")
		return
	}
	if m.iteration >= m.ceiling {
		m.transition(PhaseLimitReached, "iteration ceiling reached")
		return
	}
	m.transition(PhaseAudit, "candidate still fails tests")
}

// Fail forces the machine into the failed terminal phase.
func (m *Machine) Fail() {
	if m.Terminal() {
		return
	}
	m.transition(PhaseFailed, "fatal error")
}

// failedRound counts one iteration against the ceiling and either stops the
// task or sends it back to audit for fresh signals.
func (m *Machine) failedRound(reason string) {
	m.iteration++
	if m.iteration >= m.ceiling {
		m.transition(PhaseLimitReached, "iteration ceiling reached")
		return
	}
	m.transition(PhaseAudit, reason)
}

func (m *Machine) transition(next Phase, reason string) {
	m.logger.Debug("phase transition",
		"from", m.phase.String(),
		"to", next.String(),
		"iteration", m.iteration,
		"reason", reason)
	m.phase = next
}
