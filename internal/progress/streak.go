package progress

import "time"

// longestTrailingStreak computes the longest run of consecutive local
// calendar dates, among dates, that ends on today or yesterday (so a
// streak broken only by "haven't completed anything yet today" still
// counts). dates need not be sorted or deduplicated.
func longestTrailingStreak(dates []time.Time, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}

	days := map[time.Time]bool{}
	for _, d := range dates {
		days[truncateToDay(d)] = true
	}

	today := truncateToDay(now)
	yesterday := today.AddDate(0, 0, -1)

	var anchor time.Time
	switch {
	case days[today]:
		anchor = today
	case days[yesterday]:
		anchor = yesterday
	default:
		return 0
	}

	streak := 0
	cursor := anchor
	for days[cursor] {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}

	return streak
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
