package surface

import "time"

const day = 24 * time.Hour

// Day truncates t to midnight UTC. All table indexing is day-granular; times
// inside a day are irrelevant.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dayIndex maps a date onto its row: whole days since first. Both arguments
// must already be midnight UTC.
func dayIndex(first, d time.Time) int {
	return int(d.Sub(first) / day)
}

// daysInclusive counts the rows for a [first, last] range, both ends included.
func daysInclusive(first, last time.Time) int {
	return dayIndex(first, last) + 1
}
