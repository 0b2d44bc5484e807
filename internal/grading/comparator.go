package grading

import (
	"strings"

	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/sandbox"
)

// normalize collapses CRLF to LF without trimming; trimNormalize does both,
// matching the Comparator's stdout/stderr rule.
func normalize(s string) string {
	return strings.ReplaceAll(s, "\r\n", "\n")
}

func trimNormalize(s string) string {
	return strings.TrimSpace(normalize(s))
}

// compare renders a pass/fail verdict for one RunResult against a
// TestCase's expectations. Every rule must hold for a pass.
func compare(result *sandbox.RunResult, tc model.TestCase, fileChecks []FileCheck) bool {
	if result.TimedOut {
		return false
	}
	if result.ExitCode == nil || *result.ExitCode != tc.ExpectedExitCode {
		return false
	}
	if trimNormalize(result.Stdout) != trimNormalize(tc.ExpectedStdout) {
		return false
	}
	if trimNormalize(result.Stderr) != trimNormalize(tc.ExpectedStderr) {
		return false
	}

	for _, fc := range fileChecks {
		if !fc.Exists || fc.ActualHash != fc.ExpectedHash {
			return false
		}
	}

	return true
}
