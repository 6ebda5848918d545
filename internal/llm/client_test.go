// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refactor-swarm/internal/config"
)

func TestNewClient(t *testing.T) {
	t.Run("openai backend", func(t *testing.T) {
		t.Setenv("TEST_LLM_KEY", "sk-test")
		client, err := NewClient(config.GenerationConfig{
			Backend:        config.BackendOpenAI,
			Model:          "mistral-large-latest",
			BaseURL:        "https://api.mistral.ai/v1",
			APIKeyEnv:      "TEST_LLM_KEY",
			TimeoutSeconds: 120,
		})
		require.NoError(t, err)
		assert.IsType(t, &OpenAIClient{}, client)
	})

	t.Run("openai backend without key", func(t *testing.T) {
		t.Setenv("TEST_LLM_KEY", "")
		_, err := NewClient(config.GenerationConfig{
			Backend:        config.BackendOpenAI,
			APIKeyEnv:      "TEST_LLM_KEY",
			TimeoutSeconds: 120,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "TEST_LLM_KEY")
	})

	t.Run("opencode backend", func(t *testing.T) {
		client, err := NewClient(config.GenerationConfig{
			Backend:        config.BackendOpencode,
			BaseURL:        "http://localhost:4096",
			TimeoutSeconds: 120,
		})
		require.NoError(t, err)
		assert.IsType(t, &OpencodeClient{}, client)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewClient(config.GenerationConfig{Backend: "llama-farm"})
		assert.Error(t, err)
	})
}
