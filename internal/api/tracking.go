package api

import (
	"database/sql"

	"zentrack/internal/models"
)

// InitDailyTracks guarantees that every goal owned by the user has exactly
// one track row for the given day, creating missing rows with
// completed=false. Each per-goal insert is an ON CONFLICT DO NOTHING, so the
// call is idempotent and duplicate-proof even under concurrent invocations
// for the same user and day.
func InitDailyTracks(db *sql.DB, userID int, day string) error {
	rows, err := db.Query("SELECT id FROM goals WHERE user_id = ?", userID)
	if err != nil {
		return err
	}
	defer rows.Close()

	goalIDs := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return err
		}
		goalIDs = append(goalIDs, id)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if len(goalIDs) == 0 {
		return nil
	}

	stmt, err := db.Prepare(
		`INSERT INTO daily_tracks (user_id, goal_id, date, completed)
		VALUES (?, ?, ?, 0)
		ON CONFLICT(user_id, goal_id, date) DO NOTHING`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, goalID := range goalIDs {
		if _, err := stmt.Exec(userID, goalID, day); err != nil {
			return err
		}
	}
	return nil
}

// UpsertTrack atomically creates or overwrites the completion value for the
// (user, goal, day) triple. Last writer wins.
func UpsertTrack(db *sql.DB, userID, goalID int, day string, completed bool) error {
	_, err := db.Exec(
		`INSERT INTO daily_tracks (user_id, goal_id, date, completed)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, goal_id, date) DO UPDATE SET
		completed = excluded.completed`,
		userID, goalID, day, completed,
	)
	return err
}

// ListGoals returns all goals owned by the user.
func ListGoals(db *sql.DB, userID int) ([]models.Goal, error) {
	rows, err := db.Query(
		"SELECT id, user_id, name, COALESCE(time, ''), created_at FROM goals WHERE user_id = ? ORDER BY created_at ASC, id ASC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	goals := []models.Goal{}
	for rows.Next() {
		var g models.Goal
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &g.Time, &g.CreatedAt); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

// ListTracks returns all track rows owned by the user across all dates.
func ListTracks(db *sql.DB, userID int) ([]models.DailyTrack, error) {
	rows, err := db.Query(
		"SELECT id, user_id, goal_id, date, completed FROM daily_tracks WHERE user_id = ? ORDER BY date ASC, goal_id ASC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tracks := []models.DailyTrack{}
	for rows.Next() {
		var t models.DailyTrack
		if err := rows.Scan(&t.ID, &t.UserID, &t.GoalID, &t.Date, &t.Completed); err != nil {
			return nil, err
		}
		tracks = append(tracks, t)
	}
	return tracks, rows.Err()
}
