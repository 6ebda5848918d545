// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package swarm

import (
	"errors"
	"fmt"

	"refactor-swarm/internal/auditor"
	"refactor-swarm/internal/fileops"
	"refactor-swarm/internal/llm"
	"refactor-swarm/internal/sandbox"
)

// ErrorKind classifies a task failure for reporting and for the decision
// whether the batch keeps going.
type ErrorKind string

const (
	KindPairNotFound          ErrorKind = "PairNotFound"
	KindSandboxViolation      ErrorKind = "SandboxViolation"
	KindIOFailure             ErrorKind = "IOFailure"
	KindAuditExecution        ErrorKind = "AuditExecutionError"
	KindGenerationUnavailable ErrorKind = "GenerationUnavailable"
)

// TaskError is a classified task failure: which kind, which role was acting,
// and which file the task was repairing.
type TaskError struct {
	Kind ErrorKind
	Role string
	Path string
	Err  error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("%s [%s] %s: %v", e.Kind, e.Role, e.Path, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}

// Classify wraps err into a TaskError by matching the sentinel errors of the
// packages the loop calls into. Anything unmatched is an I/O failure.
func Classify(role, path string, err error) *TaskError {
	kind := KindIOFailure
	switch {
	case errors.Is(err, fileops.ErrPairNotFound):
		kind = KindPairNotFound
	case errors.Is(err, sandbox.ErrOutsideRoot):
		kind = KindSandboxViolation
	case errors.Is(err, auditor.ErrRunner):
		kind = KindAuditExecution
	case errors.Is(err, llm.ErrUnavailable):
		kind = KindGenerationUnavailable
	}
	return &TaskError{Kind: kind, Role: role, Path: path, Err: err}
}
