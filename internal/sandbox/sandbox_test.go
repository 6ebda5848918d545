// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package sandbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		root, err := New(dir)
		require.NoError(t, err)
		assert.DirExists(t, root.Path())
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := New("")
		assert.Error(t, err)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := New(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("regular file", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "file.py")
		require.NoError(t, os.WriteFile(file, []byte("x = 1\n"), 0o644))
		_, err := New(file)
		assert.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "code.py"), []byte("x = 1\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0o755))

	root, err := New(dir)
	require.NoError(t, err)

	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "relative inside", path: "code.py"},
		{name: "nested inside", path: "sub/code.py"},
		{name: "nonexistent inside", path: "sub/new.py"},
		{name: "absolute inside", path: filepath.Join(root.Path(), "code.py")},
		{name: "dot segments staying inside", path: "sub/../code.py"},
		{name: "parent traversal", path: "../outside.py", wantErr: true},
		{name: "deep traversal", path: "../../etc/passwd", wantErr: true},
		{name: "absolute outside", path: "/etc/passwd", wantErr: true},
		{name: "empty path", path: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolved, err := root.Resolve(tt.path)
			if tt.wantErr {
				require.Error(t, err)
				if tt.path != "" {
					assert.ErrorIs(t, err, ErrOutsideRoot)
				}
				return
			}
			require.NoError(t, err)
			assert.True(t, filepath.IsAbs(resolved))
		})
	}
}

func TestResolveSymlinkEscape(t *testing.T) {
	outside := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.py"), []byte("x = 1\n"), 0o644))

	dir := t.TempDir()
	link := filepath.Join(dir, "escape")
	require.NoError(t, os.Symlink(outside, link))

	root, err := New(dir)
	require.NoError(t, err)

	// A symlinked directory pointing outside the root must be rejected even
	// though the lexical path stays under it.
	_, err = root.Resolve("escape/secret.py")
	assert.ErrorIs(t, err, ErrOutsideRoot)

	// Same for a direct file symlink.
	fileLink := filepath.Join(dir, "alias.py")
	require.NoError(t, os.Symlink(filepath.Join(outside, "secret.py"), fileLink))
	_, err = root.Resolve("alias.py")
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestContains(t *testing.T) {
	dir := t.TempDir()
	root, err := New(dir)
	require.NoError(t, err)

	assert.True(t, root.Contains("anything.py"))
	assert.False(t, root.Contains("../anything.py"))
}
