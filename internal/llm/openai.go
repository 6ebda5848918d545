// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// systemPrompt pins the reply format: one full-file replacement, no prose.
const systemPrompt = "You are an expert Python engineer. You will receive a Python " +
	"file, its test file, a static analysis report, and a test failure report. " +
	"Reply with the complete corrected content of the Python file inside a single " +
	"```python code block. Do not abbreviate, do not add commentary."

// OpenAIClient talks to any OpenAI-compatible chat completion endpoint,
// including the Mistral API used by default.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIClient creates a client against baseURL using apiKey.
func NewOpenAIClient(baseURL, apiKey, model string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

// Propose sends the prompt and returns the raw reply text. Any transport,
// auth, or timeout failure wraps ErrUnavailable.
func (c *OpenAIClient) Propose(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0.2,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %v: %w", err, ErrUnavailable)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices: %w", ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}
