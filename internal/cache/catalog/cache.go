// Package catalogcache provides a read-through, TTL-bounded cache in front
// of the Catalog Store so that listing languages and resolving an exercise
// for grading doesn't round-trip Postgres on every request. A Redis tier
// sits behind the in-process ttlcache so a cold replica (post-deploy, or
// one that just evicted an entry) still avoids Postgres as long as any
// replica in the fleet populated the shared entry recently.
package catalogcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/gradeflow/judge-engine/internal/api"
	"github.com/gradeflow/judge-engine/internal/logger"
	"github.com/gradeflow/judge-engine/internal/model"
)

const (
	exerciseExpiration = 5 * time.Minute
	languageExpiration = 10 * time.Minute
	refreshInterval    = 1 * time.Minute

	exerciseRedisKeyPrefix = "judge:cache:exercise:"
	languagesRedisKey      = "judge:cache:languages"
)

var ErrExerciseNotFound = errors.New("exercise not found")

// ExerciseLoader fetches a fully-populated Exercise (with its TestCases) by
// ID, returning ErrExerciseNotFound when it doesn't exist.
type ExerciseLoader func(ctx context.Context, exerciseID string) (*model.Exercise, error)

// ExerciseCache fronts ExerciseLoader with a ttlcache, refreshing hot
// entries in the background once they're older than refreshInterval so a
// grading request is never blocked on a refresh it didn't need to start.
// redis, when non-nil, is consulted between the ttlcache miss and the
// loader call, and written through on every load/refresh.
type ExerciseCache struct {
	cache *ttlcache.Cache[string, *exerciseEntry]
	load  ExerciseLoader
	group singleflight.Group
	redis *redis.Client
	log   logger.Logger
}

type exerciseEntry struct {
	exercise    *model.Exercise
	lastRefresh time.Time
	mu          sync.Mutex
}

func NewExerciseCache(load ExerciseLoader, redisClient *redis.Client, log logger.Logger) *ExerciseCache {
	cache := ttlcache.New(ttlcache.WithTTL[string, *exerciseEntry](exerciseExpiration))
	go cache.Start()

	return &ExerciseCache{cache: cache, load: load, redis: redisClient, log: log}
}

// Get returns the exercise for exerciseID, loading and caching it on a miss.
func (c *ExerciseCache) Get(ctx context.Context, exerciseID string) (*model.Exercise, *api.APIError) {
	item := c.cache.Get(exerciseID)
	if item == nil {
		if exercise, ok := c.getFromRedis(ctx, exerciseID); ok {
			c.cache.Set(exerciseID, &exerciseEntry{exercise: exercise, lastRefresh: time.Now()}, exerciseExpiration)
			return exercise, nil
		}

		exercise, err := c.fetch(ctx, exerciseID)
		if err != nil {
			return nil, err
		}

		c.cache.Set(exerciseID, &exerciseEntry{exercise: exercise, lastRefresh: time.Now()}, exerciseExpiration)
		c.putToRedis(ctx, exerciseID, exercise)
		return exercise, nil
	}

	entry := item.Value()
	if time.Since(entry.lastRefresh) > refreshInterval {
		go c.refresh(exerciseID)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.exercise, nil
}

func (c *ExerciseCache) fetch(ctx context.Context, exerciseID string) (*model.Exercise, *api.APIError) {
	v, err, _ := c.group.Do(exerciseID, func() (interface{}, error) {
		return c.load(ctx, exerciseID)
	})
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			return nil, &api.APIError{Code: http.StatusNotFound, Err: err, ClientMsg: fmt.Sprintf("exercise '%s' not found", exerciseID)}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Err: err, ClientMsg: "failed to load exercise"}
	}

	return v.(*model.Exercise), nil
}

func (c *ExerciseCache) refresh(exerciseID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exercise, err := c.load(ctx, exerciseID)
	if err != nil {
		if errors.Is(err, ErrExerciseNotFound) {
			c.cache.Delete(exerciseID)
			c.deleteFromRedis(ctx, exerciseID)
		}
		return
	}

	c.putToRedis(ctx, exerciseID, exercise)

	item := c.cache.Get(exerciseID)
	if item == nil {
		c.cache.Set(exerciseID, &exerciseEntry{exercise: exercise, lastRefresh: time.Now()}, exerciseExpiration)
		return
	}

	entry := item.Value()
	entry.mu.Lock()
	entry.exercise = exercise
	entry.lastRefresh = time.Now()
	entry.mu.Unlock()
}

// Invalidate drops a cached exercise, forcing the next Get to hit the store.
// Admin writes to an exercise or its test cases must call this.
func (c *ExerciseCache) Invalidate(exerciseID string) {
	c.cache.Delete(exerciseID)
	c.deleteFromRedis(context.Background(), exerciseID)
}

func (c *ExerciseCache) getFromRedis(ctx context.Context, exerciseID string) (*model.Exercise, bool) {
	if c.redis == nil {
		return nil, false
	}

	raw, err := c.redis.Get(ctx, exerciseRedisKeyPrefix+exerciseID).Bytes()
	if err != nil {
		return nil, false
	}

	var exercise model.Exercise
	if err := json.Unmarshal(raw, &exercise); err != nil {
		c.log.Warn(ctx, "discarding corrupt exercise cache entry", logger.WithExerciseID(exerciseID))
		return nil, false
	}

	return &exercise, true
}

func (c *ExerciseCache) putToRedis(ctx context.Context, exerciseID string, exercise *model.Exercise) {
	if c.redis == nil {
		return
	}

	raw, err := json.Marshal(exercise)
	if err != nil {
		return
	}

	if err := c.redis.Set(ctx, exerciseRedisKeyPrefix+exerciseID, raw, exerciseExpiration).Err(); err != nil {
		c.log.Warn(ctx, "failed writing exercise through to redis cache", logger.WithExerciseID(exerciseID))
	}
}

func (c *ExerciseCache) deleteFromRedis(ctx context.Context, exerciseID string) {
	if c.redis == nil {
		return
	}
	c.redis.Del(ctx, exerciseRedisKeyPrefix+exerciseID)
}

// LanguageLoader lists all enabled languages from the catalog.
type LanguageLoader func(ctx context.Context) ([]model.Language, error)

// LanguageCache caches the (small, slow-changing) language list as a single
// entry, since listing is always "all of them".
type LanguageCache struct {
	cache *ttlcache.Cache[string, []model.Language]
	load  LanguageLoader
	redis *redis.Client
	log   logger.Logger
}

const languagesCacheKey = "languages"

func NewLanguageCache(load LanguageLoader, redisClient *redis.Client, log logger.Logger) *LanguageCache {
	cache := ttlcache.New(ttlcache.WithTTL[string, []model.Language](languageExpiration))
	go cache.Start()

	return &LanguageCache{cache: cache, load: load, redis: redisClient, log: log}
}

func (c *LanguageCache) Get(ctx context.Context) ([]model.Language, error) {
	item := c.cache.Get(languagesCacheKey)
	if item != nil {
		return item.Value(), nil
	}

	if languages, ok := c.getFromRedis(ctx); ok {
		c.cache.Set(languagesCacheKey, languages, languageExpiration)
		return languages, nil
	}

	languages, err := c.load(ctx)
	if err != nil {
		return nil, err
	}

	c.cache.Set(languagesCacheKey, languages, languageExpiration)
	c.putToRedis(ctx, languages)
	return languages, nil
}

func (c *LanguageCache) Invalidate() {
	c.cache.Delete(languagesCacheKey)
	if c.redis != nil {
		c.redis.Del(context.Background(), languagesRedisKey)
	}
}

func (c *LanguageCache) getFromRedis(ctx context.Context) ([]model.Language, bool) {
	if c.redis == nil {
		return nil, false
	}

	raw, err := c.redis.Get(ctx, languagesRedisKey).Bytes()
	if err != nil {
		return nil, false
	}

	var languages []model.Language
	if err := json.Unmarshal(raw, &languages); err != nil {
		c.log.Warn(ctx, "discarding corrupt language cache entry")
		return nil, false
	}

	return languages, true
}

func (c *LanguageCache) putToRedis(ctx context.Context, languages []model.Language) {
	if c.redis == nil {
		return
	}

	raw, err := json.Marshal(languages)
	if err != nil {
		return
	}

	if err := c.redis.Set(ctx, languagesRedisKey, raw, languageExpiration).Err(); err != nil {
		c.log.Warn(ctx, "failed writing language list through to redis cache")
	}
}
