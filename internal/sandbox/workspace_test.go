package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLineEndings(t *testing.T) {
	assert.Equal(t, "a\nb\nc", normalizeLineEndings("a\r\nb\r\nc"))
	assert.Equal(t, "already lf\n", normalizeLineEndings("already lf\n"))
}

func TestClearUnprotected(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "script.py"), []byte("print(1)"), 0o777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "output.txt"), []byte("stale"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "leftover_dir"), 0o777))

	require.NoError(t, ClearUnprotected(dir, map[string]bool{"script.py": true}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "script.py", entries[0].Name())
}

func TestRunnerAllocateWorkspaceAndRelease(t *testing.T) {
	r := &Runner{config: testConfig(t)}

	ws, err := r.AllocateWorkspace(context.Background())
	require.NoError(t, err)

	info, err := os.Stat(ws)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	require.NoError(t, r.Release(ws))
	_, err = os.Stat(ws)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteScript(t *testing.T) {
	r := &Runner{config: testConfig(t)}
	dir := t.TempDir()

	name, err := r.WriteScript(dir, "print(1)\r\nprint(2)\r\n", "py")
	require.NoError(t, err)
	assert.Equal(t, "script.py", name)

	content, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Equal(t, "print(1)\nprint(2)\n", string(content))
}
