// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sst/opencode-sdk-go"
	"github.com/sst/opencode-sdk-go/option"
)

// OpencodeClient talks to a local opencode serve instance. Each proposal
// runs in a fresh session so proposals never share conversational state.
type OpencodeClient struct {
	sdk     *opencode.Client
	model   string
	timeout time.Duration
}

// NewOpencodeClient creates a client for the opencode server at baseURL.
// Local connections need no API key.
func NewOpencodeClient(baseURL, model string, timeout time.Duration) *OpencodeClient {
	return &OpencodeClient{
		sdk:     opencode.NewClient(option.WithBaseURL(baseURL)),
		model:   model,
		timeout: timeout,
	}
}

// Propose creates a session, sends the prompt, and concatenates the text
// parts of the reply. Any SDK failure wraps ErrUnavailable.
func (c *OpencodeClient) Propose(ctx context.Context, prompt string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	session, err := c.sdk.Session.New(reqCtx, opencode.SessionNewParams{
		Title: opencode.F("refactor-swarm fix proposal"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to create session: %v: %w", err, ErrUnavailable)
	}

	parts := []opencode.SessionPromptParamsPartUnion{
		opencode.TextPartInputParam{
			Type: opencode.F(opencode.TextPartInputTypeText),
			Text: opencode.F(systemPrompt + "\n\n" + prompt),
		},
	}
	params := opencode.SessionPromptParams{
		Parts: opencode.F(parts),
	}
	if c.model != "" {
		params.Model = opencode.F(opencode.SessionPromptParamsModel{
			ModelID: opencode.F(c.model),
		})
	}

	message, err := c.sdk.Session.Prompt(reqCtx, session.ID, params)
	if err != nil {
		return "", fmt.Errorf("failed to send prompt: %v: %w", err, ErrUnavailable)
	}

	var reply strings.Builder
	for _, part := range message.Parts {
		if part.Type == opencode.PartTypeText {
			reply.WriteString(part.Text)
		}
	}
	if reply.Len() == 0 {
		return "", fmt.Errorf("reply contained no text parts: %w", ErrUnavailable)
	}
	return reply.String(), nil
}
