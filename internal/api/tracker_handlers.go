package api

import (
	"database/sql"
	"time"

	"zentrack/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetTrackerHandler builds the dashboard: it first lazily initializes
// today's track rows, then returns the goals, today's rows and the monthly
// overview.
func GetTrackerHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		now := time.Now()
		today := DayString(now)

		if err := InitDailyTracks(db, userID, today); err != nil {
			return err
		}

		goals, err := ListGoals(db, userID)
		if err != nil {
			return err
		}
		tracks, err := ListTracks(db, userID)
		if err != nil {
			return err
		}

		todayTracks := []models.DailyTrack{}
		for _, t := range tracks {
			if t.Date == today {
				todayTracks = append(todayTracks, t)
			}
		}

		return c.JSON(fiber.Map{
			"date":    today,
			"goals":   goals,
			"tracks":  todayTracks,
			"monthly": BuildMonthlyOverview(goals, tracks, now),
		})
	}
}

// PostTrackHandler records a checkbox submission. Edits outside the
// today/yesterday window are silently ignored rather than erroring, echoing
// the redirect-and-forget behavior of the web form.
func PostTrackHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var req models.TrackRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}
		if req.GoalID <= 0 {
			return fiber.NewError(fiber.StatusBadRequest, "Goal ID is required")
		}

		now := time.Now()
		day := req.Date
		if day == "" {
			day = DayString(now)
		}
		if _, err := ParseDay(day); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid date, expected YYYY-MM-DD")
		}

		if !EditWindowAllows(day, now) {
			return c.JSON(fiber.Map{"saved": false})
		}

		// Only the owner's goals are trackable
		var ownerID int
		err := db.QueryRow("SELECT user_id FROM goals WHERE id = ?", req.GoalID).Scan(&ownerID)
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Goal not found")
		}
		if err != nil {
			return err
		}
		if ownerID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Not authorized")
		}

		if err := UpsertTrack(db, userID, req.GoalID, day, req.Completed); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"saved": true})
	}
}

func GetAnalyticsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		goals, err := ListGoals(db, userID)
		if err != nil {
			return err
		}
		tracks, err := ListTracks(db, userID)
		if err != nil {
			return err
		}

		return c.JSON(BuildAnalytics(goals, tracks))
	}
}
