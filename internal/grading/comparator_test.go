package grading

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/sandbox"
)

func intPtr(v int) *int { return &v }

func TestCompare(t *testing.T) {
	tc := model.TestCase{
		ExpectedStdout:   "hello\n",
		ExpectedStderr:   "",
		ExpectedExitCode: 0,
	}

	t.Run("passes on exact match modulo trailing whitespace", func(t *testing.T) {
		result := &sandbox.RunResult{Stdout: "hello\r\n\n", Stderr: "", ExitCode: intPtr(0)}
		assert.True(t, compare(result, tc, nil))
	})

	t.Run("fails on timeout regardless of output", func(t *testing.T) {
		result := &sandbox.RunResult{Stdout: "hello", ExitCode: intPtr(0), TimedOut: true}
		assert.False(t, compare(result, tc, nil))
	})

	t.Run("fails on exit code mismatch", func(t *testing.T) {
		result := &sandbox.RunResult{Stdout: "hello", ExitCode: intPtr(1)}
		assert.False(t, compare(result, tc, nil))
	})

	t.Run("fails when exit code missing", func(t *testing.T) {
		result := &sandbox.RunResult{Stdout: "hello", Error: "spawn failed"}
		assert.False(t, compare(result, tc, nil))
	})

	t.Run("fails on stdout mismatch", func(t *testing.T) {
		result := &sandbox.RunResult{Stdout: "goodbye", ExitCode: intPtr(0)}
		assert.False(t, compare(result, tc, nil))
	})

	t.Run("fails when an expected output file is missing", func(t *testing.T) {
		result := &sandbox.RunResult{Stdout: "hello", ExitCode: intPtr(0)}
		checks := []FileCheck{{Filename: "out.txt", ExpectedHash: "abc", Exists: false}}
		assert.False(t, compare(result, tc, checks))
	})

	t.Run("fails when an expected output file hash differs", func(t *testing.T) {
		result := &sandbox.RunResult{Stdout: "hello", ExitCode: intPtr(0)}
		checks := []FileCheck{{Filename: "out.txt", ExpectedHash: "abc", ActualHash: "def", Exists: true}}
		assert.False(t, compare(result, tc, checks))
	})

	t.Run("passes when every output file hash matches", func(t *testing.T) {
		result := &sandbox.RunResult{Stdout: "hello", ExitCode: intPtr(0)}
		checks := []FileCheck{{Filename: "out.txt", ExpectedHash: "abc", ActualHash: "abc", Exists: true}}
		assert.True(t, compare(result, tc, checks))
	})
}

func TestTrimNormalize(t *testing.T) {
	assert.Equal(t, "a\nb", trimNormalize("  a\r\nb  \r\n"))
}
