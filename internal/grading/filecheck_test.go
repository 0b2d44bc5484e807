package grading

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckOutputFiles(t *testing.T) {
	dir := t.TempDir()
	content := []byte("result data")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "out.txt"), content, 0o644))

	sum := sha256.Sum256(content)
	expectedHash := hex.EncodeToString(sum[:])

	checks := checkOutputFiles(dir, map[string]string{
		"out.txt":     expectedHash,
		"missing.txt": "deadbeef",
	})

	require.Len(t, checks, 2)

	assert.Equal(t, "missing.txt", checks[0].Filename)
	assert.False(t, checks[0].Exists)

	assert.Equal(t, "out.txt", checks[1].Filename)
	assert.True(t, checks[1].Exists)
	assert.Equal(t, expectedHash, checks[1].ActualHash)
	assert.Equal(t, int64(len(content)), checks[1].Size)
}

func TestCheckOutputFilesEmpty(t *testing.T) {
	assert.Nil(t, checkOutputFiles(t.TempDir(), nil))
}
