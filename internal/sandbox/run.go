// Package sandbox executes one (script, args, stdin, fixture set) tuple in
// an isolated, disposable workspace and returns a structured result. It
// has no notion of test cases or verdicts; that belongs to the grading
// package, which drives this one test case at a time over a shared
// workspace.
package sandbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gradeflow/judge-engine/internal/model"
)

// RunRequest describes one execution against a fresh or already-staged
// workspace.
type RunRequest struct {
	Script     string
	LanguageID string
	Args       []string
	StdinLines []string
	Fixtures   []model.FixtureRef
	Timeout    time.Duration
}

// RunResult is what came out of one execution.
type RunResult struct {
	Stdout        string
	Stderr        string
	ExitCode      *int
	TimedOut      bool
	Error         string
	WorkspacePath string
}

// Run composes AllocateWorkspace, WriteScript, StageFixture, Execute and
// Release into the single-shot flow used by the diagnostic
// test-solution operation. The grading package calls the steps directly
// so it can reuse one workspace across many test cases.
func (r *Runner) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	lang, ok := r.languages[req.LanguageID]
	if !ok {
		return nil, &ErrUnknownLanguage{LanguageID: req.LanguageID}
	}

	workspacePath, err := r.AllocateWorkspace(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Release(workspacePath)

	scriptFile, err := r.WriteScript(workspacePath, req.Script, lang.Extension)
	if err != nil {
		return nil, err
	}

	for _, ref := range req.Fixtures {
		if _, err := r.StageFixture(ctx, workspacePath, ref); err != nil {
			r.logger.Warn(ctx, "skipping missing fixture", zap.String("path", ref.Path), zap.Error(err))
		}
	}

	result, err := r.Execute(ctx, workspacePath, lang, scriptFile, req.Args, req.StdinLines, req.Timeout)
	if err != nil {
		return nil, err
	}
	result.WorkspacePath = workspacePath

	return result, nil
}
