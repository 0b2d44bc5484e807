// Package handlers is the HTTP façade: gin handler functions bound to an
// APIStore that wires together the Catalog Store, Fixture Store, Sandbox
// Runner, Test Orchestrator and Progress Engine.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/gradeflow/judge-engine/internal/auth"
	catalogcache "github.com/gradeflow/judge-engine/internal/cache/catalog"
	"github.com/gradeflow/judge-engine/internal/catalog"
	"github.com/gradeflow/judge-engine/internal/cfg"
	"github.com/gradeflow/judge-engine/internal/fixtures"
	"github.com/gradeflow/judge-engine/internal/grading"
	"github.com/gradeflow/judge-engine/internal/logger"
	"github.com/gradeflow/judge-engine/internal/model"
	"github.com/gradeflow/judge-engine/internal/progress"
	"github.com/gradeflow/judge-engine/internal/ratelimit"
	"github.com/gradeflow/judge-engine/internal/sandbox"
)

// APIStore is the dependency bag every handler closes over. It owns no
// business logic of its own; it just hands requests to the right layer.
type APIStore struct {
	Tracer trace.Tracer

	config cfg.Config
	log    logger.Logger

	catalog     *catalog.Store
	fixtures    *fixtures.Store
	runner      *sandbox.Runner
	orchestrator *grading.Orchestrator
	progress    *progress.Engine
	tokens      *auth.TokenIssuer
	runLimiter  *ratelimit.Limiter

	exerciseCache  *catalogcache.ExerciseCache
	languageCache  *catalogcache.LanguageCache
	cacheRedis     *redis.Client

	healthy atomic.Bool
}

// newRedisClient connects to redisURL, the same idiom ratelimit.New uses.
// An empty redisURL returns (nil, nil); callers must handle a nil client
// by falling back to single-process behavior.
func newRedisClient(redisURL string) (*redis.Client, error) {
	if redisURL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	return redis.NewClient(opts), nil
}

// NewAPIStore wires every layer from config, in the Fixture Store -> Sandbox
// Runner -> Test Orchestrator -> Progress Engine -> Authorization dependency
// order, and marks the store healthy.
func NewAPIStore(ctx context.Context, config cfg.Config, log logger.Logger, catalogStore *catalog.Store, fixtureStore *fixtures.Store) (*APIStore, error) {
	languages, err := catalogStore.ListLanguages(ctx)
	if err != nil {
		return nil, err
	}

	languageByID := make(map[string]model.Language, len(languages))
	for _, l := range languages {
		languageByID[l.ID] = l
	}

	runner := sandbox.NewRunner(config, fixtureStore, languageByID, log)
	orchestrator := grading.NewOrchestrator(runner, log)
	progressEngine := progress.NewEngine(catalogStore, log)
	tokens := auth.NewTokenIssuer(config.JWTSigningSecret, 0)

	runLimiter, err := ratelimit.New(config.RedisURL, config.RunsPerMinute)
	if err != nil {
		return nil, err
	}

	cacheRedis, err := newRedisClient(config.RedisURL)
	if err != nil {
		return nil, err
	}

	a := &APIStore{
		Tracer:       otel.Tracer("github.com/gradeflow/judge-engine/internal/handlers"),
		config:       config,
		log:          log,
		catalog:      catalogStore,
		fixtures:     fixtureStore,
		runner:       runner,
		orchestrator: orchestrator,
		progress:     progressEngine,
		tokens:       tokens,
		runLimiter:   runLimiter,
		cacheRedis:   cacheRedis,
	}

	a.exerciseCache = catalogcache.NewExerciseCache(a.loadExerciseWithTests, cacheRedis, log)
	a.languageCache = catalogcache.NewLanguageCache(catalogStore.ListLanguages, cacheRedis, log)
	a.healthy.Store(true)

	return a, nil
}

// RefreshLanguages re-reads the language table into the Sandbox Runner and
// invalidates the language cache. Admin language writes call this.
func (a *APIStore) RefreshLanguages(ctx context.Context) error {
	languages, err := a.catalog.ListLanguages(ctx)
	if err != nil {
		return err
	}

	byID := make(map[string]model.Language, len(languages))
	for _, l := range languages {
		byID[l.ID] = l
	}

	a.runner.SetLanguages(byID)
	a.languageCache.Invalidate()

	return nil
}

// AdminTokenLookup adapts auth.AdminTokenLookup's raw-token contract to the
// Catalog Store's hashed-token lookup.
func (a *APIStore) AdminTokenLookup(ctx context.Context, rawToken string) (bool, error) {
	hashed, err := auth.HashToken(auth.AdminTokenPrefix, rawToken)
	if err != nil {
		return false, nil
	}

	return a.catalog.CheckAdminToken(ctx, hashed)
}

// TokenIssuer exposes the access-token signer for login flows mounted
// outside this package (e.g. an OIDC/OAuth callback).
func (a *APIStore) TokenIssuer() *auth.TokenIssuer {
	return a.tokens
}

func (a *APIStore) loadExerciseWithTests(ctx context.Context, exerciseID string) (*model.Exercise, error) {
	exercise, err := a.catalog.GetExerciseWithTests(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return nil, catalogcache.ErrExerciseNotFound
		}
		return nil, err
	}

	return &exercise, nil
}

// Healthy reports whether the store is ready to serve traffic.
func (a *APIStore) Healthy() bool {
	return a.healthy.Load()
}

// SetHealthy flips readiness, e.g. to false during graceful shutdown.
func (a *APIStore) SetHealthy(v bool) {
	a.healthy.Store(v)
}

// Close releases every owned resource.
func (a *APIStore) Close(_ context.Context) error {
	a.catalog.Close()

	if err := a.runner.Close(); err != nil {
		a.log.Warn(context.Background(), "closing docker client", zap.Error(err))
	}

	if a.cacheRedis != nil {
		if err := a.cacheRedis.Close(); err != nil {
			a.log.Warn(context.Background(), "closing cache redis client", zap.Error(err))
		}
	}

	return a.runLimiter.Close()
}
