package grading

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sort"
)

// checkOutputFiles hashes every file an Exercise's TestCase expects to find
// in the workspace after a run, in deterministic filename order.
func checkOutputFiles(workspacePath string, expected map[string]string) []FileCheck {
	if len(expected) == 0 {
		return nil
	}

	filenames := make([]string, 0, len(expected))
	for name := range expected {
		filenames = append(filenames, name)
	}
	sort.Strings(filenames)

	checks := make([]FileCheck, 0, len(filenames))
	for _, name := range filenames {
		check := FileCheck{Filename: name, ExpectedHash: expected[name]}

		content, err := os.ReadFile(filepath.Join(workspacePath, name))
		if err != nil {
			if os.IsNotExist(err) {
				check.Exists = false
			} else {
				check.Error = err.Error()
			}
			checks = append(checks, check)
			continue
		}

		sum := sha256.Sum256(content)
		check.Exists = true
		check.Size = int64(len(content))
		check.ActualHash = hex.EncodeToString(sum[:])
		checks = append(checks, check)
	}

	return checks
}
