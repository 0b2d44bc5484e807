package cfg

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Setenv("POSTGRES_CONNECTION_STRING", "postgres://localhost/judge")
	t.Setenv("JWT_SIGNING_SECRET", "test-secret")

	t.Run("postgres connection string is required", func(t *testing.T) {
		removeEnv(t, "POSTGRES_CONNECTION_STRING")

		_, err := Parse()
		assert.ErrorContains(t, err, `required environment variable "POSTGRES_CONNECTION_STRING" is not set`)
	})

	t.Run("admin email list is comma separated", func(t *testing.T) {
		t.Setenv("ADMIN_EMAIL_LIST", "a@example.com,b@example.com")
		result, err := Parse()
		require.NoError(t, err)
		assert.Equal(t, []string{"a@example.com", "b@example.com"}, result.AdminEmailList)
	})

	t.Run("defaults are applied", func(t *testing.T) {
		removeEnv(t, "MAX_PARALLEL_EXECUTIONS")
		result, err := Parse()
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxParallelExecutions, result.MaxParallelExecutions)
		assert.Equal(t, DefaultContainerRuntimePrimary, result.ContainerRuntimePrimary)
		assert.Equal(t, DefaultContainerRuntimeAlternate, result.ContainerRuntimeAlternate)
	})
}

func removeEnv(t *testing.T, key string) {
	t.Helper()

	prevValue, ok := os.LookupEnv(key)
	require.NoError(t, os.Unsetenv(key))

	if ok {
		t.Cleanup(func() {
			os.Setenv(key, prevValue)
		})
	} else {
		t.Cleanup(func() {
			os.Unsetenv(key)
		})
	}
}
