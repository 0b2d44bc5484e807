package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradeflow/judge-engine/internal/model"
)

func TestParseLimit(t *testing.T) {
	t.Parallel()

	t.Run("valid integer", func(t *testing.T) {
		t.Parallel()
		limit, err := parseLimit("25")
		require.NoError(t, err)
		assert.Equal(t, int32(25), limit)
	})

	t.Run("non-numeric errors", func(t *testing.T) {
		t.Parallel()
		_, err := parseLimit("not-a-number")
		assert.Error(t, err)
	})
}

func newestFirstUsers(t *testing.T) []model.User {
	t.Helper()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	users := make([]model.User, 5)
	for i := range users {
		users[i] = model.User{
			ID:        uuid.MustParse("00000000-0000-0000-0000-00000000000" + string(rune('5'-i))),
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		}
	}
	return users
}

func TestSeekToCursor(t *testing.T) {
	t.Parallel()

	users := newestFirstUsers(t)

	t.Run("cursor defaulting to now returns the entire first page", func(t *testing.T) {
		t.Parallel()
		window := seekToCursor(users, time.Now(), "")
		assert.Equal(t, users, window)
	})

	t.Run("cursor at the third row's timestamp returns strictly older rows", func(t *testing.T) {
		t.Parallel()
		window := seekToCursor(users, users[2].CreatedAt, users[2].ID.String())
		assert.Equal(t, users[3:], window)
	})

	t.Run("cursor older than every row returns nothing", func(t *testing.T) {
		t.Parallel()
		window := seekToCursor(users, users[len(users)-1].CreatedAt.Add(-time.Hour), "")
		assert.Empty(t, window)
	})
}
