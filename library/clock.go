package library

import "time"

// Day is a day-number: whole days elapsed since the Unix epoch.
type Day int64

const secondsPerDay = 60 * 60 * 24

// Today converts a wall-clock instant to its day-number.
func Today(now time.Time) Day {
	return Day(now.Unix() / secondsPerDay)
}
