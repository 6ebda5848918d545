// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

// Package sandbox confines all task file operations to a single root
// directory. Every path handed to a file operation goes through Root.Resolve
// before any I/O happens; paths that normalize or symlink-resolve outside the
// root are rejected with ErrOutsideRoot.
package sandbox

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrOutsideRoot reports a path that escapes the sandbox root.
var ErrOutsideRoot = errors.New("path escapes sandbox root")

// Root is the directory boundary for one batch run.
type Root struct {
	path string
}

// New creates a Root for an existing directory. The directory itself is
// canonicalized (absolute, symlinks resolved) so that containment checks
// compare like with like.
func New(dir string) (*Root, error) {
	if dir == "" {
		return nil, fmt.Errorf("sandbox root cannot be empty")
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sandbox root %q: %w", dir, err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve sandbox root %q: %w", dir, err)
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, fmt.Errorf("sandbox root %q: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sandbox root %q is not a directory", dir)
	}

	return &Root{path: resolved}, nil
}

// Path returns the canonical sandbox root directory.
func (r *Root) Path() string {
	return r.path
}

// Resolve validates that a path stays inside the sandbox and returns its
// canonical form. Relative paths are interpreted relative to the root.
//
// The path itself may not exist yet (backup targets, temp files), so symlink
// resolution is applied to the deepest existing ancestor and the remaining
// segments are re-joined afterwards. A `..` that climbs out of the root and a
// symlink that points outside both fail the same containment check.
func (r *Root) Resolve(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.path, abs)
	}
	abs = filepath.Clean(abs)

	resolved, err := resolveExisting(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}

	rel, err := filepath.Rel(r.path, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%q resolves to %q outside %q: %w", path, resolved, r.path, ErrOutsideRoot)
	}

	return resolved, nil
}

// Contains reports whether a path is inside the sandbox without returning
// the resolved form. Useful for conditional checks.
func (r *Root) Contains(path string) bool {
	_, err := r.Resolve(path)
	return err == nil
}

// resolveExisting evaluates symlinks on the longest existing prefix of path
// and re-appends the non-existent remainder unchanged.
func resolveExisting(path string) (string, error) {
	suffix := ""
	current := path
	for {
		resolved, err := filepath.EvalSymlinks(current)
		if err == nil {
			return filepath.Join(resolved, suffix), nil
		}
		if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(current)
		if parent == current {
			// Walked all the way up without finding an existing ancestor.
			return filepath.Join(current, suffix), nil
		}
		suffix = filepath.Join(filepath.Base(current), suffix)
		current = parent
	}
}
