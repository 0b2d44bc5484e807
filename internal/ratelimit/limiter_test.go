package ratelimit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutRedisURLDisablesLimiting(t *testing.T) {
	t.Parallel()

	limiter, err := New("", 20)
	require.NoError(t, err)
	assert.Nil(t, limiter)
}

func TestNewRejectsInvalidURL(t *testing.T) {
	t.Parallel()

	_, err := New("not a redis url", 20)
	assert.Error(t, err)
}

func TestNilLimiterAlwaysAllows(t *testing.T) {
	t.Parallel()

	var limiter *Limiter

	allowed, retryAfter, err := limiter.Allow(context.Background(), "user-1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Zero(t, retryAfter)
}

func TestNilLimiterCloseIsNoOp(t *testing.T) {
	t.Parallel()

	var limiter *Limiter
	assert.NoError(t, limiter.Close())
}
