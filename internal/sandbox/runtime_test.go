package sandbox

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDockerClientResolverRejectsUnknownRuntimeNames(t *testing.T) {
	t.Parallel()

	r := newDockerClientResolver("not-a-real-runtime", "also-not-real")

	_, err := r.resolve(context.Background())
	require.Error(t, err)

	var unavailable *ErrRuntimeUnavailable
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, "not-a-real-runtime", unavailable.Primary)
	assert.Equal(t, "also-not-real", unavailable.Alternate)
}

func TestDockerClientResolverCachesFailure(t *testing.T) {
	t.Parallel()

	r := newDockerClientResolver("not-a-real-runtime", "also-not-real")

	_, err1 := r.resolve(context.Background())
	_, err2 := r.resolve(context.Background())
	require.Error(t, err1)
	assert.Same(t, err1, err2)
}

func TestDockerClientResolverTryHostRejectsUnknownName(t *testing.T) {
	t.Parallel()

	r := newDockerClientResolver("docker", "podman")

	_, ok := r.tryHost(context.Background(), "not-in-the-table")
	assert.False(t, ok)
}

func TestDockerClientResolverCloseIsNoOpBeforeResolve(t *testing.T) {
	t.Parallel()

	r := newDockerClientResolver("docker", "podman")
	assert.NoError(t, r.close())
}
