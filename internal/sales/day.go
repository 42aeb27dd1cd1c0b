package sales

import "time"

// LocalDayRange returns [midnight, next midnight) in now's location. Limits
// follow the café's wall clock, not UTC. The upper bound is the next calendar
// midnight, not from+24h, so DST days (23 or 25 hours) stay exact.
func LocalDayRange(now time.Time) (time.Time, time.Time) {
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
	return from, to
}
