package utils

import (
	"fmt"
	"time"
)

// maxQueryableDate bounds any date-range query; Postgres' own timestamptz
// range is wider, but nothing in the catalog predates this engine's epoch.
var maxQueryableDate = time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)

// ValidateDates resolves optional unix-second start/end query parameters
// against defaults and rejects out-of-range or inverted windows, used by
// the statistics endpoints' optional time-window filters.
func ValidateDates(paramStart *int64, paramEnd *int64, defaultStart time.Time, defaultEnd time.Time) (start time.Time, end time.Time, err error) {
	start = defaultStart
	end = defaultEnd

	if paramStart != nil {
		start = time.Unix(*paramStart, 0)
	}

	if start.After(maxQueryableDate) {
		return start, end, fmt.Errorf("start time cannot be after %s", maxQueryableDate)
	}

	if paramEnd != nil {
		end = time.Unix(*paramEnd, 0)
	}

	if end.After(maxQueryableDate) {
		return start, end, fmt.Errorf("end time cannot be after %s", maxQueryableDate)
	}

	if start.After(end) {
		return start, end, fmt.Errorf("start time cannot be after end time")
	}

	return start, end, nil
}
