package api

import (
	"math"
	"sort"
	"time"

	"zentrack/internal/models"
)

// round2 rounds a percentage to two decimals for display.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildMonthlyOverview computes the dashboard view for the calendar month
// containing "now". For each day of the month it counts the user's completed
// track rows on that day. The overall progress percentage divides the total
// number of completed rows by goalCount × daysInMonth; days before a goal
// existed count as missed, matching the product's accepted behavior.
func BuildMonthlyOverview(goals []models.Goal, tracks []models.DailyTrack, now time.Time) models.MonthlyOverview {
	local := now.In(refLoc)
	monthStart := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, refLoc)
	nextMonth := monthStart.AddDate(0, 1, 0)

	days := []string{}
	for d := monthStart; d.Before(nextMonth); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(dayLayout))
	}

	completedByDay := map[string]int{}
	totalCompleted := 0
	for _, t := range tracks {
		if t.Completed {
			completedByDay[t.Date]++
			totalCompleted++
		}
	}

	perDay := make([]int, len(days))
	for i, day := range days {
		perDay[i] = completedByDay[day]
	}

	progress := 0.0
	if possible := len(goals) * len(days); possible > 0 {
		progress = round2(float64(totalCompleted) / float64(possible) * 100)
	}

	return models.MonthlyOverview{
		Month:           local.Format("January 2006"),
		Days:            days,
		CompletedPerDay: perDay,
		Progress:        progress,
	}
}

// BuildAnalytics groups all of a user's track rows by calendar date. Each
// distinct date gets a completion percentage against the user's current goal
// count (not the goal count at that historical date — accepted
// approximation), and the overall completed/not-completed totals cover every
// row. With no goals the percentages are zero; with no tracks everything is
// empty.
func BuildAnalytics(goals []models.Goal, tracks []models.DailyTrack) models.AnalyticsReport {
	completedByDate := map[string]int{}
	completedCount := 0
	for _, t := range tracks {
		if _, ok := completedByDate[t.Date]; !ok {
			completedByDate[t.Date] = 0
		}
		if t.Completed {
			completedByDate[t.Date]++
			completedCount++
		}
	}

	dates := make([]string, 0, len(completedByDate))
	for date := range completedByDate {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	percentages := make([]float64, len(dates))
	for i, date := range dates {
		if len(goals) > 0 {
			percentages[i] = round2(float64(completedByDate[date]) / float64(len(goals)) * 100)
		}
	}

	return models.AnalyticsReport{
		Dates:             dates,
		Percentages:       percentages,
		CompletedCount:    completedCount,
		NotCompletedCount: len(tracks) - completedCount,
	}
}
