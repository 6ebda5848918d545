// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package llm provides the text-generation backends the fixer proposes
// code through. Both backends implement the same Client interface so the
// loop never depends on which service is configured.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"refactor-swarm/internal/config"
)

// ErrUnavailable reports that the generation service could not produce a
// reply: network failure, auth failure, or timeout. The condition is
// recoverable at the loop level.
var ErrUnavailable = errors.New("generation service unavailable")

// Client produces one generated reply for one prompt.
type Client interface {
	Propose(ctx context.Context, prompt string) (string, error)
}

// NewClient builds the configured backend.
func NewClient(cfg config.GenerationConfig) (Client, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	switch cfg.Backend {
	case config.BackendOpenAI:
		key := os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("environment variable %s is not set", cfg.APIKeyEnv)
		}
		return NewOpenAIClient(cfg.BaseURL, key, cfg.Model, timeout), nil
	case config.BackendOpencode:
		return NewOpencodeClient(cfg.BaseURL, cfg.Model, timeout), nil
	default:
		return nil, fmt.Errorf("unknown generation backend %q", cfg.Backend)
	}
}
