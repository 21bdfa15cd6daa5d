package api

import (
	"database/sql"
	"strconv"

	"zentrack/internal/models"

	"github.com/gofiber/fiber/v2"
)

func CreateGoalHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var req models.CreateGoalRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Goal name is required")
		}

		result, err := db.Exec(
			"INSERT INTO goals (user_id, name, time) VALUES (?, ?, ?)",
			userID, req.Name, req.Time,
		)
		if err != nil {
			return err
		}

		goalID, _ := result.LastInsertId()

		var goal models.Goal
		err = db.QueryRow(
			"SELECT id, user_id, name, COALESCE(time, ''), created_at FROM goals WHERE id = ?",
			goalID,
		).Scan(&goal.ID, &goal.UserID, &goal.Name, &goal.Time, &goal.CreatedAt)
		if err != nil {
			return err
		}

		return c.Status(fiber.StatusCreated).JSON(goal)
	}
}

func ListGoalsHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		goals, err := ListGoals(db, userID)
		if err != nil {
			return err
		}

		return c.JSON(goals)
	}
}

func UpdateGoalHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		goalID, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid goal ID")
		}

		var req models.UpdateGoalRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
		}

		if req.Name == "" {
			return fiber.NewError(fiber.StatusBadRequest, "Goal name is required")
		}

		// Check ownership
		var ownerID int
		err = db.QueryRow("SELECT user_id FROM goals WHERE id = ?", goalID).Scan(&ownerID)
		if err == sql.ErrNoRows {
			return fiber.NewError(fiber.StatusNotFound, "Goal not found")
		}
		if err != nil {
			return err
		}
		if ownerID != userID {
			return fiber.NewError(fiber.StatusForbidden, "Not authorized")
		}

		_, err = db.Exec(
			"UPDATE goals SET name = ?, time = ? WHERE id = ?",
			req.Name, req.Time, goalID,
		)
		if err != nil {
			return err
		}

		var goal models.Goal
		err = db.QueryRow(
			"SELECT id, user_id, name, COALESCE(time, ''), created_at FROM goals WHERE id = ?",
			goalID,
		).Scan(&goal.ID, &goal.UserID, &goal.Name, &goal.Time, &goal.CreatedAt)
		if err != nil {
			return err
		}

		return c.JSON(goal)
	}
}

// DeleteGoalHandler removes a goal. Its track rows are kept on purpose:
// history records stay even after the goal they reference is gone.
func DeleteGoalHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)
		goalID, err := strconv.Atoi(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid goal ID")
		}

		result, err := db.Exec("DELETE FROM goals WHERE id = ? AND user_id = ?", goalID, userID)
		if err != nil {
			return err
		}

		rows, _ := result.RowsAffected()
		if rows == 0 {
			return fiber.NewError(fiber.StatusNotFound, "Goal not found")
		}

		return c.JSON(fiber.Map{"success": true})
	}
}
