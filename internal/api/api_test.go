package api_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"zentrack/internal/api"
	"zentrack/internal/database"
	"zentrack/internal/models"

	"github.com/gofiber/fiber/v2"
)

func setupTestDB(t *testing.T) *sql.DB {
	db, err := database.Initialize(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	// A pooled second connection would see a different in-memory database
	db.SetMaxOpenConns(1)
	return db
}

func setupTestApp(db *sql.DB) *fiber.App {
	app := fiber.New()
	api.SetupRoutes(app, db)
	return app
}

func registerTestUser(t *testing.T, app *fiber.App, email string) string {
	t.Helper()
	registerReq := models.RegisterRequest{
		Email:    email,
		Username: email + "-name",
		Password: "password123",
	}
	body, _ := json.Marshal(registerReq)
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201 registering, got %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var authResp models.AuthResponse
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &authResp)
	if authResp.Token == "" {
		t.Fatal("Expected token in register response")
	}
	return authResp.Token
}

func createTestGoal(t *testing.T, app *fiber.App, token, name string) models.Goal {
	t.Helper()
	body, _ := json.Marshal(models.CreateGoalRequest{Name: name, Time: "06:00"})
	req := httptest.NewRequest("POST", "/api/goals/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 201 creating goal, got %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var goal models.Goal
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &goal)
	return goal
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)

	registerTestUser(t, app, "test@example.com")

	// Login with the registered email
	loginReq := models.LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	}
	body, _ := json.Marshal(loginReq)
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var loginResp models.AuthResponse
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &loginResp)

	if loginResp.Token == "" {
		t.Fatal("Expected token in response")
	}
	if !loginResp.User.FirstLogin {
		t.Fatal("Expected first_login to be true for a fresh user")
	}
}

func TestRegisterRejectsBadMobile(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)

	registerReq := models.RegisterRequest{
		Email:    "mobile@example.com",
		Username: "mobileuser",
		Password: "password123",
		Mobile:   "not-a-phone!",
	}
	body, _ := json.Marshal(registerReq)
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("Expected status 400, got %d", resp.StatusCode)
	}

	// No user row should have been written
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 users after rejected signup, got %d", count)
	}
}

func TestGoalCRUD(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerTestUser(t, app, "goals@example.com")

	// Empty name is rejected before any write
	body, _ := json.Marshal(models.CreateGoalRequest{Name: ""})
	req := httptest.NewRequest("POST", "/api/goals/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 400 {
		t.Fatalf("Expected status 400 for empty goal name, got %d", resp.StatusCode)
	}

	goal := createTestGoal(t, app, token, "Meditate")
	if goal.Name != "Meditate" || goal.Time != "06:00" {
		t.Fatalf("Unexpected goal %+v", goal)
	}

	// Update name and time
	body, _ = json.Marshal(models.UpdateGoalRequest{Name: "Meditate longer", Time: "07:30"})
	req = httptest.NewRequest("PUT", fmt.Sprintf("/api/goals/%d", goal.ID), bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 updating goal, got %d", resp.StatusCode)
	}
	var updated models.Goal
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &updated)
	if updated.Name != "Meditate longer" || updated.Time != "07:30" {
		t.Fatalf("Unexpected updated goal %+v", updated)
	}

	// List
	req = httptest.NewRequest("GET", "/api/goals/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	var goals []models.Goal
	bodyBytes, _ = io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &goals)
	if len(goals) != 1 {
		t.Fatalf("Expected 1 goal, got %d", len(goals))
	}

	// Delete
	req = httptest.NewRequest("DELETE", fmt.Sprintf("/api/goals/%d", goal.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("Expected status 200 deleting goal, got %d", resp.StatusCode)
	}

	// Deleting again is a distinct not-found, not a server error
	req = httptest.NewRequest("DELETE", fmt.Sprintf("/api/goals/%d", goal.ID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestUpdateMissingGoalIsNotFound(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerTestUser(t, app, "missing@example.com")

	body, _ := json.Marshal(models.UpdateGoalRequest{Name: "Ghost"})
	req := httptest.NewRequest("PUT", "/api/goals/9999", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Fatalf("Expected status 404, got %d", resp.StatusCode)
	}
}

func TestUserProfileAndTheme(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerTestUser(t, app, "profile@example.com")

	req := httptest.NewRequest("GET", "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	var user models.User
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &user)
	if user.Theme != "light" || !user.FirstLogin {
		t.Fatalf("Unexpected fresh profile %+v", user)
	}

	// Toggle the theme
	req = httptest.NewRequest("PUT", "/api/user/theme", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	var themeResp struct {
		Theme string `json:"theme"`
	}
	bodyBytes, _ = io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &themeResp)
	if themeResp.Theme != "dark" {
		t.Fatalf("Expected theme dark after toggle, got %q", themeResp.Theme)
	}

	// Dismiss the guide
	req = httptest.NewRequest("POST", "/api/user/guide-seen", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, err := app.Test(req); err != nil {
		t.Fatal(err)
	}

	req = httptest.NewRequest("GET", "/api/user/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	bodyBytes, _ = io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &user)
	if user.FirstLogin {
		t.Fatal("Expected first_login to be cleared after guide-seen")
	}
	if user.Theme != "dark" {
		t.Fatalf("Expected theme dark to persist, got %q", user.Theme)
	}
}

func TestRefreshTokenRotation(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	registerTestUser(t, app, "refresh@example.com")

	loginReq := models.LoginRequest{Email: "refresh@example.com", Password: "password123"}
	body, _ := json.Marshal(loginReq)
	req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}

	var refreshCookie string
	for _, c := range resp.Cookies() {
		if c.Name == "refresh_token" {
			refreshCookie = c.Value
		}
	}
	if refreshCookie == "" {
		t.Fatal("Expected refresh_token cookie on login")
	}

	req = httptest.NewRequest("POST", "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refreshCookie})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200 refreshing, got %d: %s", resp.StatusCode, string(bodyBytes))
	}

	var refreshResp struct {
		Token string `json:"token"`
	}
	bodyBytes, _ := io.ReadAll(resp.Body)
	json.Unmarshal(bodyBytes, &refreshResp)
	if refreshResp.Token == "" {
		t.Fatal("Expected a fresh access token")
	}

	// The old token was rotated away and no longer refreshes
	req = httptest.NewRequest("POST", "/api/auth/refresh", nil)
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: refreshCookie})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 401 {
		t.Fatalf("Expected status 401 reusing a rotated token, got %d", resp.StatusCode)
	}
}

func TestPushSubscribeEndpoint(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()
	app := setupTestApp(db)
	token := registerTestUser(t, app, "push@example.com")

	subscribe := func(endpoint string) {
		t.Helper()
		body, _ := json.Marshal(models.PushSubscription{
			Endpoint: endpoint,
			P256dh:   "key",
			Auth:     "auth",
		})
		req := httptest.NewRequest("POST", "/api/push/subscribe", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("Expected status 200 subscribing, got %d", resp.StatusCode)
		}
	}

	subscribe("https://push.example.com/old")
	subscribe("https://push.example.com/new")

	// Last write replaces: a user holds at most one subscription
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM push_subscriptions").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("Expected 1 subscription, got %d", count)
	}
	var endpoint string
	if err := db.QueryRow("SELECT endpoint FROM push_subscriptions").Scan(&endpoint); err != nil {
		t.Fatal(err)
	}
	if endpoint != "https://push.example.com/new" {
		t.Fatalf("Expected the new endpoint to win, got %s", endpoint)
	}

	// Unsubscribe clears it
	req := httptest.NewRequest("DELETE", "/api/push/unsubscribe", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	if _, err := app.Test(req); err != nil {
		t.Fatal(err)
	}
	if err := db.QueryRow("SELECT COUNT(*) FROM push_subscriptions").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Fatalf("Expected 0 subscriptions after unsubscribe, got %d", count)
	}
}
