// Copyright (c) 2025 Refactor Swarm Contributors
//
// This software is released under the MIT License.
// See LICENSE file in the repository for details.

package fileops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refactor-swarm/internal/sandbox"
)

func newManager(t *testing.T) (*Manager, string) {
	t.Helper()
	dir := t.TempDir()
	root, err := sandbox.New(dir)
	require.NoError(t, err)
	return NewManager(root, ".backups"), root.Path()
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolvePair(t *testing.T) {
	tests := []struct {
		name      string
		setupFunc func(t *testing.T, dir string) string // Returns code path to resolve
		wantErr   error
	}{
		{
			name: "pair exists",
			setupFunc: func(t *testing.T, dir string) string {
				writeFile(t, filepath.Join(dir, "calc.py"), "x = 1\n")
				writeFile(t, filepath.Join(dir, "test_calc.py"), "def test_x(): pass\n")
				return "calc.py"
			},
		},
		{
			name: "pair exists in subdirectory",
			setupFunc: func(t *testing.T, dir string) string {
				writeFile(t, filepath.Join(dir, "sub", "calc.py"), "x = 1\n")
				writeFile(t, filepath.Join(dir, "sub", "test_calc.py"), "def test_x(): pass\n")
				return "sub/calc.py"
			},
		},
		{
			name: "test file missing",
			setupFunc: func(t *testing.T, dir string) string {
				writeFile(t, filepath.Join(dir, "orphan.py"), "x = 1\n")
				return "orphan.py"
			},
			wantErr: ErrPairNotFound,
		},
		{
			name: "path outside sandbox",
			setupFunc: func(t *testing.T, dir string) string {
				return "../elsewhere.py"
			},
			wantErr: sandbox.ErrOutsideRoot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, dir := newManager(t)
			codePath := tt.setupFunc(t, dir)

			code, test, err := m.ResolvePair(codePath)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.FileExists(t, code)
			assert.FileExists(t, test)
			assert.Equal(t, "test_"+filepath.Base(code), filepath.Base(test))
			assert.Equal(t, filepath.Dir(code), filepath.Dir(test))
		})
	}
}

func TestBackup(t *testing.T) {
	m, dir := newManager(t)
	original := "def add(a, b):\n    return a - b\n"
	writeFile(t, filepath.Join(dir, "calc.py"), original)

	first, err := m.Backup("calc.py")
	require.NoError(t, err)

	// Byte-identical to the pre-task content.
	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
	assert.Contains(t, filepath.Base(first), "calc.py.bak.")

	// A second call in the same second must still produce a distinct file.
	second, err := m.Backup("calc.py")
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	// Both snapshots live under the backup dir inside the root.
	rel, err := filepath.Rel(dir, first)
	require.NoError(t, err)
	assert.Equal(t, ".backups", filepath.Dir(rel))
}

func TestBackupMissingFile(t *testing.T) {
	m, _ := newManager(t)
	_, err := m.Backup("ghost.py")
	assert.Error(t, err)
}

func TestReadWrite(t *testing.T) {
	m, dir := newManager(t)
	writeFile(t, filepath.Join(dir, "calc.py"), "x = 1\n")

	content, err := m.Read("calc.py")
	require.NoError(t, err)
	assert.Equal(t, "x = 1\n", content)

	require.NoError(t, m.Write("calc.py", "x = 2\n"))
	content, err = m.Read("calc.py")
	require.NoError(t, err)
	assert.Equal(t, "x = 2\n", content)

	// No temp file debris left beside the target after the rename.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "calc.py", entries[0].Name())
}

func TestWriteRejectsEscape(t *testing.T) {
	m, _ := newManager(t)
	err := m.Write("../../etc/evil.py", "x = 1\n")
	assert.ErrorIs(t, err, sandbox.ErrOutsideRoot)
}

func TestListCodeFiles(t *testing.T) {
	m, dir := newManager(t)
	writeFile(t, filepath.Join(dir, "calc.py"), "x = 1\n")
	writeFile(t, filepath.Join(dir, "test_calc.py"), "def test_x(): pass\n")
	writeFile(t, filepath.Join(dir, "pricing.py"), "y = 2\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "not python\n")
	writeFile(t, filepath.Join(dir, ".backups", "calc.py.bak.20260101_000000"), "old\n")

	files, err := m.ListCodeFiles(".")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "calc.py", filepath.Base(files[0]))
	assert.Equal(t, "pricing.py", filepath.Base(files[1]))
}
