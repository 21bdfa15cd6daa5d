package api

import "time"

// EditWindowAllows reports whether a completion edit for the given track day
// is permitted when "now" is the current time. Edits are accepted for today
// and the immediately preceding day only; anything older is rejected.
// Both boundaries are inclusive: yesterday at its start-of-day still passes.
func EditWindowAllows(trackDay string, now time.Time) bool {
	day, err := ParseDay(trackDay)
	if err != nil {
		return false
	}
	yesterday, _ := ParseDay(DayString(now.In(refLoc).AddDate(0, 0, -1)))
	return !day.Before(yesterday)
}
