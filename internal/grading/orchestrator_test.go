package grading

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeflow/judge-engine/internal/cfg"
	"github.com/gradeflow/judge-engine/internal/logger"
	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/sandbox"
)

// newTestOrchestrator builds an Orchestrator whose Sandbox Runner has no
// reachable container runtime in this environment. Every Execute call
// therefore resolves through the "container runtime unreachable" path and
// returns a RunResult carrying a non-empty Error with a nil ExitCode rather
// than a Go error (only an already-cancelled context makes Execute return a
// Go error, from the semaphore acquire). gradeOne records either as a failed
// test case and Grade keeps going.
func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()

	config := cfg.Config{
		TempRootDir:               t.TempDir(),
		PerTestTimeoutMS:          cfg.DefaultPerTestTimeoutMS,
		MaxParallelExecutions:     cfg.DefaultMaxParallelExecutions,
		ContainerMemoryCapMiB:     cfg.DefaultContainerMemoryCapMiB,
		ContainerPidsCap:          cfg.DefaultContainerPidsCap,
		ContainerRuntimePrimary:   cfg.DefaultContainerRuntimePrimary,
		ContainerRuntimeAlternate: cfg.DefaultContainerRuntimeAlternate,
	}

	languages := map[string]model.Language{
		"python": {ID: "python", Extension: "py", Interpreter: "python3", ExecImage: "python:3.12-slim"},
	}

	log, err := logger.New(logger.Config{ServiceName: "grading-test"})
	require.NoError(t, err)

	runner := sandbox.NewRunner(config, nil, languages, log)
	return NewOrchestrator(runner, log)
}

func exerciseWithCases(cases ...model.TestCase) model.Exercise {
	return model.Exercise{ID: "ex-1", Solution: "print('hi')", TestCases: cases}
}

func TestGradeRunsTestCasesInOrderIndexOrder(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	exercise := exerciseWithCases(
		model.TestCase{OrderIndex: 2, Arguments: []string{"third"}},
		model.TestCase{OrderIndex: 0, Arguments: []string{"first"}},
		model.TestCase{OrderIndex: 1, Arguments: []string{"second"}},
	)

	results, err := o.Grade(context.Background(), exercise, "print(1)", "python")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, []string{"first"}, results[0].Arguments)
	assert.Equal(t, []string{"second"}, results[1].Arguments)
	assert.Equal(t, []string{"third"}, results[2].Arguments)
	assert.Equal(t, 0, results[0].Index)
	assert.Equal(t, 1, results[1].Index)
	assert.Equal(t, 2, results[2].Index)
}

func TestGradeContinuesAfterAPerCaseInfraFailure(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	exercise := exerciseWithCases(
		model.TestCase{OrderIndex: 0, Arguments: []string{"a"}},
		model.TestCase{OrderIndex: 1, Arguments: []string{"b"}},
		model.TestCase{OrderIndex: 2, Arguments: []string{"c"}},
	)

	results, err := o.Grade(context.Background(), exercise, "print(1)", "python")
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i, r := range results {
		assert.NotEmptyf(t, r.Error, "case %d should report the infra failure", i)
		assert.Nil(t, r.ActualExitCode)
		assert.False(t, r.Passed)
	}
}

func TestGradeReleasesItsWorkspace(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	exercise := exerciseWithCases(model.TestCase{OrderIndex: 0})

	_, err := o.Grade(context.Background(), exercise, "print(1)", "python")
	require.NoError(t, err)

	leftover, err := o.runner.AllocateWorkspace(context.Background())
	require.NoError(t, err)

	// Grade's own workspace must be gone: only the one just allocated
	// remains under the temp root.
	entries, err := os.ReadDir(filepath.Dir(leftover))
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	require.NoError(t, o.runner.Release(leftover))
}

func TestGradePropagatesContextCancellation(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	exercise := exerciseWithCases(model.TestCase{OrderIndex: 0})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	results, err := o.Grade(ctx, exercise, "print(1)", "python")
	elapsed := time.Since(start)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].Error)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestGradeRejectsUnknownLanguage(t *testing.T) {
	t.Parallel()

	o := newTestOrchestrator(t)
	exercise := exerciseWithCases(model.TestCase{OrderIndex: 0})

	results, err := o.Grade(context.Background(), exercise, "print(1)", "not-a-real-language")
	require.Error(t, err)
	assert.Nil(t, results)

	var unknown *ErrUnknownLanguage
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "not-a-real-language", unknown.LanguageID)
}
