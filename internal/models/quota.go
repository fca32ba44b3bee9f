package models

import "time"

// DefaultWeeklyLimit is the number of submissions accepted per Monday-start week.
const DefaultWeeklyLimit = 10

// QuotaStats summarises the submission log for the current week.
type QuotaStats struct {
	Total       int       `json:"total"`
	ThisWeek    int       `json:"this_week"`
	Remaining   int       `json:"remaining"`
	WeeklyLimit int       `json:"weekly_limit"`
	WeekStart   time.Time `json:"week_start"`
	NextReset   time.Time `json:"next_reset"`
}

// WeekStart returns the most recent Monday 00:00 at or before now, in now's location.
func WeekStart(now time.Time) time.Time {
	daysSinceMonday := (int(now.Weekday()) + 6) % 7
	y, m, d := now.Date()
	return time.Date(y, m, d-daysSinceMonday, 0, 0, 0, 0, now.Location())
}

// NextWeekStart returns the Monday 00:00 following now.
func NextWeekStart(now time.Time) time.Time {
	start := WeekStart(now)
	y, m, d := start.Date()
	return time.Date(y, m, d+7, 0, 0, 0, 0, start.Location())
}
