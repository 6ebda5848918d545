// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package auditor

import (
	"regexp"
	"strconv"
	"strings"
)

// reportParser extracts pass/fail counts and per-test failure lines from
// pytest terminal output. Patterns are compiled once and reused across the
// batch.
type reportParser struct {
	passed      *regexp.Regexp
	failed      *regexp.Regexp
	errored     *regexp.Regexp
	failureLine *regexp.Regexp
}

func newReportParser() *reportParser {
	return &reportParser{
		passed:      regexp.MustCompile(`(\d+) passed`),
		failed:      regexp.MustCompile(`(\d+) failed`),
		errored:     regexp.MustCompile(`(\d+) error`),
		failureLine: regexp.MustCompile(`(?m)^FAILED\s+(\S+)`),
	}
}

// parse fills a TestReport from raw runner output. The pass verdict is not
// set here; it comes from the runner exit code.
func (p *reportParser) parse(output string) TestReport {
	report := TestReport{Output: output}
	report.PassedTests = p.count(p.passed, output)
	report.FailedTests = p.count(p.failed, output) + p.count(p.errored, output)
	report.TotalTests = report.PassedTests + report.FailedTests
	report.Summary = p.summarize(output)
	return report
}

func (p *reportParser) count(re *regexp.Regexp, output string) int {
	match := re.FindStringSubmatch(output)
	if match == nil {
		return 0
	}
	n, err := strconv.Atoi(match[1])
	if err != nil {
		return 0
	}
	return n
}

// summarize collects the FAILED lines into a compact digest for the journal
// and the fixer prompt.
func (p *reportParser) summarize(output string) string {
	matches := p.failureLine.FindAllStringSubmatch(output, -1)
	if len(matches) == 0 {
		return ""
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return strings.Join(names, "\n")
}
