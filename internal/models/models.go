package models

import "time"

type User struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Mobile       *string   `json:"mobile,omitempty"`
	Picture      *string   `json:"picture,omitempty"`
	ProviderID   *string   `json:"provider_id,omitempty"`
	Theme        string    `json:"theme"`
	FirstLogin   bool      `json:"first_login"`
	CreatedAt    time.Time `json:"created_at"`
}

type Goal struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	Time      string    `json:"time,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// DailyTrack is the per-day, per-goal completion record. Date is a calendar
// day formatted YYYY-MM-DD in the reference timezone; at most one row exists
// per (user, goal, date).
type DailyTrack struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	GoalID    int    `json:"goal_id"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type PushSubscription struct {
	ID       int    `json:"id"`
	UserID   int    `json:"user_id"`
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

// MonthlyOverview is the dashboard view model for the month containing
// "today": one entry per calendar day plus a single progress percentage.
type MonthlyOverview struct {
	Month           string   `json:"month"`
	Days            []string `json:"days"`
	CompletedPerDay []int    `json:"completed_per_day"`
	Progress        float64  `json:"progress"`
}

// AnalyticsReport covers all of a user's track rows: distinct dates in
// ascending order with per-date completion percentages, plus overall counts.
type AnalyticsReport struct {
	Dates             []string  `json:"dates"`
	Percentages       []float64 `json:"percentages"`
	CompletedCount    int       `json:"completed_count"`
	NotCompletedCount int       `json:"not_completed_count"`
}

type CreateGoalRequest struct {
	Name string `json:"name"`
	Time string `json:"time,omitempty"`
}

type UpdateGoalRequest struct {
	Name string `json:"name"`
	Time string `json:"time,omitempty"`
}

// TrackRequest is a checkbox submission. Date is optional YYYY-MM-DD and
// defaults to today.
type TrackRequest struct {
	GoalID    int    `json:"goal_id"`
	Date      string `json:"date,omitempty"`
	Completed bool   `json:"completed"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
	Mobile   string `json:"mobile,omitempty"`
	Remember bool   `json:"remember,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember,omitempty"`
}

type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
