// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package fileops implements the file and backup manager for repair tasks:
// pair resolution by naming convention, timestamped backups, and atomic
// reads/commits. Every path is validated against the sandbox root before
// any I/O.
package fileops

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/bitfield/script"
	"github.com/moby/sys/atomicwriter"

	"refactor-swarm/internal/sandbox"
)

// ErrPairNotFound reports a code file with no test_<basename> sibling.
var ErrPairNotFound = errors.New("no paired test file")

// testPrefix is the naming convention linking a code file to its tests.
const testPrefix = "test_"

// backupTimeFormat matches the original snapshot naming.
const backupTimeFormat = "20060102_150405"

// Manager performs sandboxed file operations for one batch run.
type Manager struct {
	root      *sandbox.Root
	backupDir string
}

// NewManager creates a Manager whose backups land in backupDir, interpreted
// relative to the sandbox root.
func NewManager(root *sandbox.Root, backupDir string) *Manager {
	return &Manager{
		root:      root,
		backupDir: backupDir,
	}
}

// Root returns the sandbox root this manager operates in.
func (m *Manager) Root() *sandbox.Root {
	return m.root
}

// ResolvePair validates codePath and locates its paired test file,
// test_<basename> in the same directory. Returns the canonical paths of
// both files, or ErrPairNotFound when the test sibling is absent.
func (m *Manager) ResolvePair(codePath string) (string, string, error) {
	code, err := m.root.Resolve(codePath)
	if err != nil {
		return "", "", err
	}
	if _, err := os.Stat(code); err != nil {
		return "", "", fmt.Errorf("code file %s: %w", code, err)
	}

	test := filepath.Join(filepath.Dir(code), testPrefix+filepath.Base(code))
	if _, err := os.Stat(test); err != nil {
		if os.IsNotExist(err) {
			return "", "", fmt.Errorf("%s: %w", code, ErrPairNotFound)
		}
		return "", "", fmt.Errorf("test file %s: %w", test, err)
	}

	return code, test, nil
}

// Backup copies the current content of codePath into the backup directory
// under a timestamped name. Each call produces a uniquely named backup;
// an existing backup is never overwritten. Returns the backup path.
func (m *Manager) Backup(codePath string) (string, error) {
	code, err := m.root.Resolve(codePath)
	if err != nil {
		return "", err
	}

	content, err := os.ReadFile(code)
	if err != nil {
		return "", fmt.Errorf("failed to read %s for backup: %w", code, err)
	}

	dir, err := m.root.Resolve(m.backupDir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	stamp := time.Now().Format(backupTimeFormat)
	base := fmt.Sprintf("%s.bak.%s", filepath.Base(code), stamp)
	target := filepath.Join(dir, base)
	for n := 1; ; n++ {
		if _, err := os.Stat(target); os.IsNotExist(err) {
			break
		}
		target = filepath.Join(dir, fmt.Sprintf("%s.%d", base, n))
	}

	// O_EXCL so a concurrent run can never clobber a snapshot.
	file, err := os.OpenFile(target, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create backup %s: %w", target, err)
	}
	defer file.Close()

	if _, err := file.Write(content); err != nil {
		return "", fmt.Errorf("failed to write backup %s: %w", target, err)
	}
	return target, nil
}

// Read returns the full content of a file inside the sandbox.
func (m *Manager) Read(path string) (string, error) {
	resolved, err := m.root.Resolve(path)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", resolved, err)
	}
	return string(data), nil
}

// Write atomically replaces the content of a file inside the sandbox. The
// content is staged in a temporary file in the same directory and renamed
// over the target, so a concurrent reader never observes a partial write.
func (m *Manager) Write(path, content string) error {
	resolved, err := m.root.Resolve(path)
	if err != nil {
		return err
	}
	if err := atomicwriter.WriteFile(resolved, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", resolved, err)
	}
	return nil
}

var pythonFile = regexp.MustCompile(`\.py$`)

// ListCodeFiles finds repair candidates under dir: every .py file that is
// not itself a test file, in deterministic order.
func (m *Manager) ListCodeFiles(dir string) ([]string, error) {
	resolved, err := m.root.Resolve(dir)
	if err != nil {
		return nil, err
	}

	files, err := script.FindFiles(resolved).MatchRegexp(pythonFile).Slice()
	if err != nil {
		return nil, fmt.Errorf("failed to list code files in %s: %w", resolved, err)
	}

	var candidates []string
	for _, f := range files {
		base := filepath.Base(f)
		if strings.HasPrefix(base, testPrefix) {
			continue
		}
		// Skip anything this tool itself maintains under the root.
		if strings.Contains(f, string(filepath.Separator)+m.backupDir+string(filepath.Separator)) {
			continue
		}
		candidates = append(candidates, f)
	}
	sort.Strings(candidates)
	return candidates, nil
}
