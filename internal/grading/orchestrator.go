package grading

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"github.com/gradeflow/judge-engine/internal/logger"
	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/sandbox"
	"github.com/gradeflow/judge-engine/internal/telemetry"
)

// ErrUnknownLanguage mirrors sandbox.ErrUnknownLanguage for callers that
// only import this package.
type ErrUnknownLanguage struct {
	LanguageID string
}

func (e *ErrUnknownLanguage) Error() string {
	return fmt.Sprintf("unknown language %q", e.LanguageID)
}

// Orchestrator grades one submission against one Exercise's ordered
// TestCases, reusing a single workspace across all of them.
type Orchestrator struct {
	runner *sandbox.Runner
	logger logger.Logger
}

// NewOrchestrator builds an Orchestrator bound to a Sandbox Runner.
func NewOrchestrator(runner *sandbox.Runner, log logger.Logger) *Orchestrator {
	return &Orchestrator{runner: runner, logger: log}
}

// Grade runs script against every TestCase in exercise, in ascending order
// index, and returns their verdicts. Test cases after a Runner failure
// still run; only that one case is marked failed.
func (o *Orchestrator) Grade(ctx context.Context, exercise model.Exercise, script, languageID string) ([]TestResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "grading.Grade")
	defer span.End()

	lang, ok := o.runner.Language(languageID)
	if !ok {
		return nil, &ErrUnknownLanguage{LanguageID: languageID}
	}

	testCases := append([]model.TestCase(nil), exercise.TestCases...)
	sort.Slice(testCases, func(i, j int) bool { return testCases[i].OrderIndex < testCases[j].OrderIndex })

	workspacePath, err := o.runner.AllocateWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := o.runner.Release(workspacePath); releaseErr != nil {
			o.logger.Warn(ctx, "failed to release workspace", logger.WithExerciseID(exercise.ID))
		}
	}()

	scriptFile, err := o.runner.WriteScript(workspacePath, script, lang.Extension)
	if err != nil {
		return nil, err
	}

	protected := map[string]bool{scriptFile: true}
	results := make([]TestResult, 0, len(testCases))

	for i, tc := range testCases {
		if i > 0 {
			if err := sandbox.ClearUnprotected(workspacePath, protected); err != nil {
				return results, err
			}
		}

		for _, ref := range tc.Fixtures {
			name, err := o.runner.StageFixture(ctx, workspacePath, ref)
			if err != nil {
				o.logger.Warn(ctx, "skipping missing fixture", logger.WithExerciseID(exercise.ID))
				continue
			}
			protected[name] = true
		}

		results = append(results, o.gradeOne(ctx, workspacePath, lang, scriptFile, tc, i))
	}

	telemetry.ReportEvent(ctx, "grading.graded",
		attribute.String("exercise_id", exercise.ID),
		attribute.Int("test_case_count", len(results)),
	)

	return results, nil
}

// SolutionResult is the outcome of running a script once with no
// expectations to compare against, used by the admin diagnostic
// "test a candidate solution" operation.
type SolutionResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode *int   `json:"exitCode"`
	TimedOut bool   `json:"timedOut"`
	Error    string `json:"error,omitempty"`
}

// RunSolution executes script once, with no arguments, stdin or fixtures,
// and returns its combined output without touching progress or
// achievements. Used by POST /admin/test-solution.
func (o *Orchestrator) RunSolution(ctx context.Context, script, languageID string) (SolutionResult, error) {
	if _, ok := o.runner.Language(languageID); !ok {
		return SolutionResult{}, &ErrUnknownLanguage{LanguageID: languageID}
	}

	result, err := o.runner.Run(ctx, sandbox.RunRequest{Script: script, LanguageID: languageID})
	if err != nil {
		return SolutionResult{}, err
	}

	return SolutionResult{
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		ExitCode: result.ExitCode,
		TimedOut: result.TimedOut,
		Error:    result.Error,
	}, nil
}

// AdHocRequest describes one ad-hoc test-case invocation against a
// candidate solution, used by POST /admin/run-test-case.
type AdHocRequest struct {
	Solution     string
	LanguageID   string
	Arguments    []string
	StdinLines   []string
	Fixtures     []model.FixtureRef
	OutputFiles  map[string]string
}

// RunTestCase executes one ad-hoc (solution, arguments, stdin, fixtures)
// tuple and augments the result with per-file hashes the same way a graded
// test case would, but without any expected values to compare against.
func (o *Orchestrator) RunTestCase(ctx context.Context, req AdHocRequest) (TestResult, error) {
	lang, ok := o.runner.Language(req.LanguageID)
	if !ok {
		return TestResult{}, &ErrUnknownLanguage{LanguageID: req.LanguageID}
	}

	workspacePath, err := o.runner.AllocateWorkspace(ctx)
	if err != nil {
		return TestResult{}, err
	}
	defer func() {
		if releaseErr := o.runner.Release(workspacePath); releaseErr != nil {
			o.logger.Warn(ctx, "failed to release ad-hoc workspace")
		}
	}()

	scriptFile, err := o.runner.WriteScript(workspacePath, req.Solution, lang.Extension)
	if err != nil {
		return TestResult{}, err
	}

	for _, ref := range req.Fixtures {
		if _, err := o.runner.StageFixture(ctx, workspacePath, ref); err != nil {
			o.logger.Warn(ctx, "skipping missing fixture for ad-hoc run")
		}
	}

	runResult, err := o.runner.Execute(ctx, workspacePath, lang, scriptFile, req.Arguments, req.StdinLines, 0)
	if err != nil {
		return TestResult{Arguments: req.Arguments, Error: err.Error()}, nil
	}

	return TestResult{
		Arguments:      req.Arguments,
		ActualStdout:   runResult.Stdout,
		ActualStderr:   runResult.Stderr,
		ActualExitCode: runResult.ExitCode,
		TimedOut:       runResult.TimedOut,
		Error:          runResult.Error,
		FileChecks:     checkOutputFiles(workspacePath, req.OutputFiles),
	}, nil
}

func (o *Orchestrator) gradeOne(ctx context.Context, workspacePath string, lang model.Language, scriptFile string, tc model.TestCase, index int) TestResult {
	result := TestResult{
		Index:            index,
		Arguments:        tc.Arguments,
		ExpectedStdout:   tc.ExpectedStdout,
		ExpectedStderr:   tc.ExpectedStderr,
		ExpectedExitCode: tc.ExpectedExitCode,
	}

	runResult, err := o.runner.Execute(ctx, workspacePath, lang, scriptFile, tc.Arguments, tc.StdinLines, 0)
	if err != nil {
		result.Error = err.Error()
		telemetry.ReportError(ctx, "test case execution failed", err, attribute.Int("test_case_index", index))
		return result
	}

	result.ActualStdout = runResult.Stdout
	result.ActualStderr = runResult.Stderr
	result.ActualExitCode = runResult.ExitCode
	result.TimedOut = runResult.TimedOut
	result.Error = runResult.Error

	result.FileChecks = checkOutputFiles(workspacePath, tc.ExpectedOutputHash)
	result.Passed = compare(runResult, tc, result.FileChecks)

	return result
}
