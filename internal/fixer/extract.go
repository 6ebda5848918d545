// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package fixer

import (
	"regexp"
	"strings"
)

// fencedBlock matches the first fenced code block in a reply, with or
// without a language tag.
var fencedBlock = regexp.MustCompile("(?s)```(?:python)?[ \t]*\n(.*?)\n?```")

// ExtractCode pulls the candidate file content out of a raw reply. Replies
// normally carry one fenced block; a bare reply with no fence is taken
// verbatim. Pure: no I/O, no state.
func ExtractCode(reply string) string {
	if match := fencedBlock.FindStringSubmatch(reply); match != nil {
		return ensureTrailingNewline(match[1])
	}
	trimmed := strings.TrimSpace(reply)
	if trimmed == "" {
		return ""
	}
	return ensureTrailingNewline(trimmed)
}

func ensureTrailingNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
