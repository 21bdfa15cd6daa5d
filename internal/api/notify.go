package api

import (
	"database/sql"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

var (
	lastFiredKey   string
	lastFiredMutex sync.Mutex
)

// reminderTimes returns the daily firing times as HH:MM strings in the
// reference timezone. Overridable via REMINDER_TIMES (comma-separated).
func reminderTimes() []string {
	raw := strings.TrimSpace(os.Getenv("REMINDER_TIMES"))
	if raw == "" {
		return []string{"08:00", "20:00"}
	}
	parts := strings.Split(raw, ",")
	times := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			times = append(times, t)
		}
	}
	return times
}

// RunReminderTrigger fires the reminder fan-out when "now" falls on one of
// the configured daily firing minutes. It holds no state beyond a refire
// guard, so a ticker faster than one minute won't double-send. The reminder
// content is fixed: no personalization against the user's pending goals.
func RunReminderTrigger(db *sql.DB, now time.Time) error {
	local := now.In(refLoc)
	minute := local.Format("15:04")

	fire := false
	for _, t := range reminderTimes() {
		if t == minute {
			fire = true
			break
		}
	}
	if !fire {
		return nil
	}

	key := local.Format("2006-01-02 15:04")
	lastFiredMutex.Lock()
	if lastFiredKey == key {
		lastFiredMutex.Unlock()
		return nil
	}
	lastFiredKey = key
	lastFiredMutex.Unlock()

	log.Printf("Reminder trigger firing at %s", key)
	return FanOutReminders(db, PushPayload{
		Title: "ZenTrack",
		Body:  "Don't forget to check in on your goals today!",
		Icon:  "/icon.png",
		Tag:   "zentrack-reminder",
	})
}
