package handlers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeWindowIncludes(t *testing.T) {
	t.Parallel()

	day := func(offset int) time.Time {
		return time.Date(2026, 1, 10+offset, 0, 0, 0, 0, time.UTC)
	}

	t.Run("zero value includes everything", func(t *testing.T) {
		t.Parallel()
		var w timeWindow
		assert.True(t, w.includes(day(-100)))
		assert.True(t, w.includes(day(100)))
	})

	t.Run("excludes before start", func(t *testing.T) {
		t.Parallel()
		w := timeWindow{start: day(0)}
		assert.False(t, w.includes(day(-1)))
		assert.True(t, w.includes(day(0)))
		assert.True(t, w.includes(day(1)))
	})

	t.Run("excludes after end", func(t *testing.T) {
		t.Parallel()
		w := timeWindow{end: day(0)}
		assert.True(t, w.includes(day(-1)))
		assert.True(t, w.includes(day(0)))
		assert.False(t, w.includes(day(1)))
	})

	t.Run("both bounds set", func(t *testing.T) {
		t.Parallel()
		w := timeWindow{start: day(0), end: day(2)}
		assert.False(t, w.includes(day(-1)))
		assert.True(t, w.includes(day(1)))
		assert.False(t, w.includes(day(3)))
	})
}

func TestQueryUnixSeconds(t *testing.T) {
	t.Parallel()

	newCtx := func(query string) *gin.Context {
		req := httptest.NewRequest("GET", "/statistics?"+query, nil)
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = req
		return c
	}

	t.Run("absent param returns nil", func(t *testing.T) {
		t.Parallel()
		v, err := queryUnixSeconds(newCtx(""), "start")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("valid param parses", func(t *testing.T) {
		t.Parallel()
		v, err := queryUnixSeconds(newCtx("start=1700000000"), "start")
		require.NoError(t, err)
		require.NotNil(t, v)
		assert.Equal(t, int64(1700000000), *v)
	})

	t.Run("non-numeric param errors", func(t *testing.T) {
		t.Parallel()
		_, err := queryUnixSeconds(newCtx("start=not-a-number"), "start")
		assert.Error(t, err)
	})
}

func TestParseTimeWindow(t *testing.T) {
	t.Parallel()

	newCtx := func(query string) *gin.Context {
		req := httptest.NewRequest("GET", "/statistics?"+query, nil)
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = req
		return c
	}

	t.Run("no params gives zero-value window", func(t *testing.T) {
		t.Parallel()
		w, err := parseTimeWindow(newCtx(""))
		require.NoError(t, err)
		assert.Equal(t, timeWindow{}, w)
	})

	t.Run("start and end populate the window", func(t *testing.T) {
		t.Parallel()
		w, err := parseTimeWindow(newCtx("start=1700000000&end=1700003600"))
		require.NoError(t, err)
		assert.Equal(t, int64(1700000000), w.start.Unix())
		assert.Equal(t, int64(1700003600), w.end.Unix())
	})

	t.Run("invalid start errors", func(t *testing.T) {
		t.Parallel()
		_, err := parseTimeWindow(newCtx("start=nope"))
		assert.Error(t, err)
	})
}
