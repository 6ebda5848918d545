// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package fixer turns audit signals into a candidate full-file replacement
// via the configured generation backend, then screens the candidate before
// anything touches the working tree.
package fixer

import (
	"context"
	"fmt"
	"log/slog"

	"refactor-swarm/internal/llm"
)

// Result is the screened outcome of one proposal round. NoChange means the
// round produced nothing worth committing; Reason says why.
type Result struct {
	Code     string
	NoChange bool
	Reason   string
}

// Fixer proposes corrected file content for a failing code/test pair.
type Fixer struct {
	client llm.Client
	logger *slog.Logger
}

// New creates a Fixer backed by the given generation client.
func New(client llm.Client, logger *slog.Logger) *Fixer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fixer{client: client, logger: logger}
}

// ProposeFix builds the prompt, queries the backend, and screens the reply.
// A backend failure is returned as an error wrapping llm.ErrUnavailable; a
// usable round that produced nothing new comes back as a NoChange result.
func (f *Fixer) ProposeFix(ctx context.Context, payload Payload) (Result, error) {
	prompt := BuildPrompt(payload)

	reply, err := f.client.Propose(ctx, prompt)
	if err != nil {
		return Result{}, fmt.Errorf("proposal for %s: %w", payload.TargetFile, err)
	}

	candidate := ExtractCode(reply)
	if candidate == "" {
		f.logger.Warn("reply contained no code", "file", payload.TargetFile)
		return Result{NoChange: true, Reason: "reply contained no code"}, nil
	}

	if err := ValidatePython(ctx, candidate); err != nil {
		f.logger.Warn("candidate rejected, not valid Python",
			"file", payload.TargetFile,
			"error", err)
		return Result{NoChange: true, Reason: fmt.Sprintf("candidate is not valid Python: %v", err)}, nil
	}

	if candidate == ensureTrailingNewline(payload.Code) {
		return Result{NoChange: true, Reason: "candidate is identical to current content"}, nil
	}

	return Result{Code: candidate}, nil
}
