package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(offset int) time.Time {
	base := time.Date(2026, 7, 31, 12, 0, 0, 0, time.UTC)
	return base.AddDate(0, 0, offset)
}

func TestLongestTrailingStreak(t *testing.T) {
	now := day(0)

	t.Run("no completions", func(t *testing.T) {
		assert.Equal(t, 0, longestTrailingStreak(nil, now))
	})

	t.Run("streak ending today", func(t *testing.T) {
		dates := []time.Time{day(0), day(-1), day(-2)}
		assert.Equal(t, 3, longestTrailingStreak(dates, now))
	})

	t.Run("streak ending yesterday still counts", func(t *testing.T) {
		dates := []time.Time{day(-1), day(-2), day(-3)}
		assert.Equal(t, 3, longestTrailingStreak(dates, now))
	})

	t.Run("gap breaks the streak", func(t *testing.T) {
		dates := []time.Time{day(0), day(-1), day(-3)}
		assert.Equal(t, 2, longestTrailingStreak(dates, now))
	})

	t.Run("no completion today or yesterday resets to zero", func(t *testing.T) {
		dates := []time.Time{day(-5), day(-6)}
		assert.Equal(t, 0, longestTrailingStreak(dates, now))
	})

	t.Run("duplicate timestamps on the same day count once", func(t *testing.T) {
		dates := []time.Time{day(0), day(0).Add(2 * time.Hour), day(-1)}
		assert.Equal(t, 2, longestTrailingStreak(dates, now))
	})
}
