// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package fixer

import (
	"fmt"
	"strings"
)

// Payload carries everything the generation backend sees about one repair
// round: the current code, its tests, and both audit signals.
type Payload struct {
	TargetFile      string
	TaskDescription string
	Code            string
	TestCode        string
	AnalysisReport  string
	TestSummary     string
	TestOutput      string
	Iteration       int
}

// BuildPrompt renders the payload into the user prompt. Pure: same payload,
// same prompt.
func BuildPrompt(p Payload) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Fix the Python file %s so its tests pass and the analyzer findings are resolved.\n", p.TargetFile)
	if p.TaskDescription != "" {
		b.WriteString("\n## Task\n")
		b.WriteString(p.TaskDescription)
		b.WriteString("\n")
	}
	if p.Iteration > 0 {
		fmt.Fprintf(&b, "This is repair attempt %d; previous attempts did not make the tests pass.\n", p.Iteration+1)
	}

	b.WriteString("\n## Current file content\n```python\n")
	b.WriteString(p.Code)
	b.WriteString("\n```\n")

	b.WriteString("\n## Test file content\n```python\n")
	b.WriteString(p.TestCode)
	b.WriteString("\n```\n")

	b.WriteString("\n## Static analysis report\n")
	if strings.TrimSpace(p.AnalysisReport) == "" {
		b.WriteString("(no analyzer output available)\n")
	} else {
		b.WriteString(p.AnalysisReport)
		b.WriteString("\n")
	}

	b.WriteString("\n## Test results\n")
	if p.TestSummary != "" {
		b.WriteString("Failing tests:\n")
		b.WriteString(p.TestSummary)
		b.WriteString("\n\n")
	}
	b.WriteString(p.TestOutput)
	b.WriteString("\n")

	b.WriteString("\nReply with the complete corrected content of ")
	b.WriteString(p.TargetFile)
	b.WriteString(" in a single ```python code block.\n")

	return b.String()
}
