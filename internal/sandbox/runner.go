package sandbox

import (
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/gradeflow/judge-engine/internal/cfg"
	"github.com/gradeflow/judge-engine/internal/fixtures"
	"github.com/gradeflow/judge-engine/internal/logger"
	"github.com/gradeflow/judge-engine/internal/model"
)

// Runner executes submissions inside disposable, unprivileged containers.
// It is safe for concurrent use; a global weighted semaphore bounds how
// many containers run at once regardless of how many goroutines call in.
type Runner struct {
	config    cfg.Config
	fixtures  *fixtures.Store
	languages map[string]model.Language
	runtime   *dockerClientResolver
	sem       *semaphore.Weighted
	logger    logger.Logger
}

// NewRunner builds a Runner. languages is a snapshot of the catalog's
// enabled languages, keyed by id; callers replace it with SetLanguages.
func NewRunner(config cfg.Config, fixtureStore *fixtures.Store, languages map[string]model.Language, log logger.Logger) *Runner {
	maxParallel := config.MaxParallelExecutions
	if maxParallel <= 0 {
		maxParallel = cfg.DefaultMaxParallelExecutions
	}

	return &Runner{
		config:    config,
		fixtures:  fixtureStore,
		languages: languages,
		runtime:   newDockerClientResolver(config.ContainerRuntimePrimary, config.ContainerRuntimeAlternate),
		sem:       semaphore.NewWeighted(int64(maxParallel)),
		logger:    log,
	}
}

// SetLanguages refreshes the Runner's language snapshot; called after the
// language table is re-read from the catalog.
func (r *Runner) SetLanguages(languages map[string]model.Language) {
	r.languages = languages
}

// Language resolves a language id against the Runner's current snapshot.
func (r *Runner) Language(id string) (model.Language, bool) {
	lang, ok := r.languages[id]
	return lang, ok
}

// DefaultTimeout is the per-execution timeout Execute falls back to when
// callers don't need a test-case-specific override.
func (r *Runner) DefaultTimeout() time.Duration {
	return time.Duration(r.config.PerTestTimeoutMS) * time.Millisecond
}

// Close releases the Runner's resolved Docker client, if one was ever
// obtained.
func (r *Runner) Close() error {
	return r.runtime.close()
}
