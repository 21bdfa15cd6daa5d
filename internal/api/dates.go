package api

import (
	"log"
	"os"
	"time"
)

const dayLayout = "2006-01-02"

// refLoc is the reference timezone: every "today", day boundary and
// date-string grouping is computed in it.
var refLoc = loadReferenceLocation()

func loadReferenceLocation() *time.Location {
	name := os.Getenv("REFERENCE_TZ")
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Invalid REFERENCE_TZ %q, falling back to UTC: %v", name, err)
		return time.UTC
	}
	return loc
}

// DayString truncates a point in time to its calendar day in the reference
// timezone.
func DayString(t time.Time) string {
	return t.In(refLoc).Format(dayLayout)
}

// ParseDay validates a YYYY-MM-DD string and returns its start-of-day in the
// reference timezone.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, refLoc)
}
