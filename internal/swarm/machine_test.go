// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package swarm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMachineAlreadyPassing(t *testing.T) {
	m := NewMachine(5, nil)
	assert.Equal(t, PhaseAudit, m.Phase())

	m.ObserveAudit(true)
	assert.Equal(t, PhaseSucceeded, m.Phase())
	assert.True(t, m.Terminal())
	assert.Equal(t, 0, m.Iteration())
}

func TestMachineFixedAfterFailedRound(t *testing.T) {
	m := NewMachine(5, nil)

	// Round 1: candidate committed but still failing.
	m.ObserveAudit(false)
	assert.Equal(t, PhaseFix, m.Phase())
	m.ObserveFix(false)
	assert.Equal(t, PhaseJudge, m.Phase())
	m.ObserveVerdict(false)

	// Failed round sends the task back to a fresh audit.
	assert.Equal(t, PhaseAudit, m.Phase())
	assert.Equal(t, 1, m.Iteration())

	// Round 2: candidate passes. The successful round still counts.
	m.ObserveAudit(false)
	m.ObserveFix(false)
	m.ObserveVerdict(true)
	assert.Equal(t, PhaseSucceeded, m.Phase())
	assert.Equal(t, 2, m.Iteration())
}

func TestMachineFixedFirstRound(t *testing.T) {
	m := NewMachine(5, nil)

	m.ObserveAudit(false)
	m.ObserveFix(false)
	m.ObserveVerdict(true)

	assert.Equal(t, PhaseSucceeded, m.Phase())
	assert.Equal(t, 1, m.Iteration())
}

func TestMachineNoChangeConsumesIteration(t *testing.T) {
	m := NewMachine(5, nil)

	m.ObserveAudit(false)
	m.ObserveFix(true)

	// No judge phase for a no-change round.
	assert.Equal(t, PhaseAudit, m.Phase())
	assert.Equal(t, 1, m.Iteration())
}

func TestMachineCeiling(t *testing.T) {
	const ceiling = 5
	m := NewMachine(ceiling, nil)

	rounds := 0
	for !m.Terminal() {
		rounds++
		// Guard against a machine that never terminates.
		if rounds > ceiling+1 {
			t.Fatal("machine exceeded the iteration ceiling")
		}
		m.ObserveAudit(false)
		m.ObserveFix(false)
		m.ObserveVerdict(false)
	}

	assert.Equal(t, PhaseLimitReached, m.Phase())
	assert.Equal(t, ceiling, m.Iteration())
	assert.Equal(t, ceiling, rounds)
}

func TestMachineFail(t *testing.T) {
	m := NewMachine(5, nil)
	m.ObserveAudit(false)
	m.Fail()
	assert.Equal(t, PhaseFailed, m.Phase())
	assert.True(t, m.Terminal())

	// Terminal phases are sticky.
	m.ObserveAudit(true)
	m.ObserveFix(false)
	m.ObserveVerdict(true)
	assert.Equal(t, PhaseFailed, m.Phase())
}

func TestMachineIgnoresOutOfPhaseObservations(t *testing.T) {
	m := NewMachine(5, nil)

	// Still auditing; fix and verdict observations must not move it.
	m.ObserveFix(false)
	m.ObserveVerdict(true)
	assert.Equal(t, PhaseAudit, m.Phase())
	assert.Equal(t, 0, m.Iteration())
}
