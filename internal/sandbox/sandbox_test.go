package sandbox

import (
	"testing"

	"github.com/gradeflow/judge-engine/internal/cfg"
)

func testConfig(t *testing.T) cfg.Config {
	t.Helper()

	return cfg.Config{
		TempRootDir:           t.TempDir(),
		PerTestTimeoutMS:      cfg.DefaultPerTestTimeoutMS,
		MaxParallelExecutions: cfg.DefaultMaxParallelExecutions,
		ContainerMemoryCapMiB: cfg.DefaultContainerMemoryCapMiB,
		ContainerPidsCap:      cfg.DefaultContainerPidsCap,
		ContainerRuntimePrimary:   cfg.DefaultContainerRuntimePrimary,
		ContainerRuntimeAlternate: cfg.DefaultContainerRuntimeAlternate,
	}
}
