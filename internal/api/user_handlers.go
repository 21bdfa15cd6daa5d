package api

import (
	"database/sql"

	"zentrack/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetUserProfileHandler returns the current user's profile, including the
// theme preference and the first-login flag that drives the one-time guide.
func GetUserProfileHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		var user models.User
		var mobile, picture, providerID sql.NullString
		err := db.QueryRow(
			`SELECT id, email, username, mobile, picture, provider_id, theme, first_login, created_at
			FROM users WHERE id = ?`,
			userID,
		).Scan(&user.ID, &user.Email, &user.Username, &mobile, &picture, &providerID,
			&user.Theme, &user.FirstLogin, &user.CreatedAt)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to get user profile")
		}

		if mobile.Valid {
			user.Mobile = &mobile.String
		}
		if picture.Valid {
			user.Picture = &picture.String
		}
		if providerID.Valid {
			user.ProviderID = &providerID.String
		}

		return c.JSON(user)
	}
}

// ToggleThemeHandler flips the stored theme between light and dark.
func ToggleThemeHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		_, err := db.Exec(
			"UPDATE users SET theme = CASE theme WHEN 'light' THEN 'dark' ELSE 'light' END WHERE id = ?",
			userID,
		)
		if err != nil {
			return err
		}

		var theme string
		if err := db.QueryRow("SELECT theme FROM users WHERE id = ?", userID).Scan(&theme); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"theme": theme})
	}
}

// GuideSeenHandler clears the first-login flag once the intro guide has been
// shown.
func GuideSeenHandler(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(int)

		if _, err := db.Exec("UPDATE users SET first_login = 0 WHERE id = ?", userID); err != nil {
			return err
		}

		return c.JSON(fiber.Map{"success": true})
	}
}
