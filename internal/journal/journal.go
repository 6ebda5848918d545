// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package journal persists an append-only log of per-task collaborator
// calls for post-hoc audit. The log is JSONL: one independent record per
// line, appended after every invocation, never rewritten.
package journal

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Status classifies the outcome of one collaborator call.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// Role names match the agent roles of the loop plus System for batch events.
const (
	RoleSystem  = "System"
	RoleAuditor = "Auditor"
	RoleFixer   = "Fixer"
	RoleJudge   = "Judge"
)

// Record is one journal entry. Records are independent; readers must not
// assume any relationship between consecutive lines.
type Record struct {
	ID     string `json:"id"`
	Time   string `json:"time"`
	Role   string `json:"role"`
	Action string `json:"action"`
	Status Status `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// maxDetailLength bounds the detail field so a full test report or stack
// trace cannot bloat the log.
const maxDetailLength = 2000

// Journal appends records to a JSONL file.
type Journal struct {
	path string
}

// Open prepares a journal at path, creating parent directories as needed.
// The file itself is created lazily on first append.
func Open(path string) (*Journal, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	return &Journal{path: path}, nil
}

// Path returns the journal file location.
func (j *Journal) Path() string {
	return j.path
}

// Append writes one record. Each call opens the file in append mode so the
// record lands as a single atomic write on the local filesystem.
func (j *Journal) Append(role, action string, status Status, detail string) error {
	rec := Record{
		ID:     uuid.NewString(),
		Time:   time.Now().UTC().Format(time.RFC3339Nano),
		Role:   role,
		Action: action,
		Status: status,
		Detail: truncate(detail, maxDetailLength),
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal journal record: %w", err)
	}

	// #nosec G304 - path is fixed at Open time, under the sandbox root
	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append journal record: %w", err)
	}
	return nil
}

// ReadAll streams every record from a journal file. Malformed lines are
// skipped so one bad write cannot hide the rest of the log.
func ReadAll(path string) ([]Record, error) {
	// #nosec G304 - callers pass the path they opened the journal with
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return records, fmt.Errorf("failed to read journal: %w", err)
	}
	return records, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
