package order

import (
	"time"

	"cafeteria/internal/models"
)

// NormalizeToMonday rolls t back to the Monday of its week at midnight.
// Sunday belongs to the week that started six days earlier.
func NormalizeToMonday(t time.Time) time.Time {
	offset := 1 - int(t.Weekday())
	if t.Weekday() == time.Sunday {
		offset = -6
	}
	return time.Date(t.Year(), t.Month(), t.Day()+offset, 0, 0, 0, 0, t.Location())
}

// WeekStart returns the Monday of t's week as a calendar date
func WeekStart(t time.Time) models.Date {
	return models.NewDate(NormalizeToMonday(t))
}
