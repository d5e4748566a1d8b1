package models

import (
	"fmt"
	"sort"
)

const DaysInWeek = 7

var dayNames = [DaysInWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// DayName returns the English name of a Monday-first day index
func DayName(day int) string {
	if day < 0 || day >= DaysInWeek {
		return fmt.Sprintf("Day %d", day)
	}
	return dayNames[day]
}

// ValidDay reports whether day is in 0..6
func ValidDay(day int) bool {
	return day >= 0 && day < DaysInWeek
}

// ScheduleEntry lists the dishes offered on one day of the week
type ScheduleEntry struct {
	DayOfWeek int   `json:"day_of_week"`
	DishIDs   []int `json:"dish_ids"`
}

// WeekSchedule holds at most one entry per day, sorted by day
type WeekSchedule struct {
	entries []ScheduleEntry
}

// NewWeekSchedule merges entries that share a day and drops duplicate dish ids.
// Dish ids keep their first-seen order.
func NewWeekSchedule(entries []ScheduleEntry) WeekSchedule {
	byDay := make(map[int]*ScheduleEntry)
	seen := make(map[int]map[int]bool)

	for _, e := range entries {
		entry, ok := byDay[e.DayOfWeek]
		if !ok {
			entry = &ScheduleEntry{DayOfWeek: e.DayOfWeek}
			byDay[e.DayOfWeek] = entry
			seen[e.DayOfWeek] = make(map[int]bool)
		}
		for _, id := range e.DishIDs {
			if seen[e.DayOfWeek][id] {
				continue
			}
			seen[e.DayOfWeek][id] = true
			entry.DishIDs = append(entry.DishIDs, id)
		}
	}

	ws := WeekSchedule{entries: make([]ScheduleEntry, 0, len(byDay))}
	for _, e := range byDay {
		ws.entries = append(ws.entries, *e)
	}
	sort.Slice(ws.entries, func(i, j int) bool {
		return ws.entries[i].DayOfWeek < ws.entries[j].DayOfWeek
	})
	return ws
}

// Entries returns a copy of the entries in day order
func (s WeekSchedule) Entries() []ScheduleEntry {
	out := make([]ScheduleEntry, len(s.entries))
	for i, e := range s.entries {
		out[i] = ScheduleEntry{DayOfWeek: e.DayOfWeek, DishIDs: append([]int(nil), e.DishIDs...)}
	}
	return out
}

// Empty reports whether no menu is configured
func (s WeekSchedule) Empty() bool {
	return len(s.entries) == 0
}

// DishIDs returns the dishes offered on day, or nil
func (s WeekSchedule) DishIDs(day int) []int {
	for _, e := range s.entries {
		if e.DayOfWeek == day {
			return append([]int(nil), e.DishIDs...)
		}
	}
	return nil
}

// Offers reports whether dishID is scheduled on day
func (s WeekSchedule) Offers(day, dishID int) bool {
	for _, e := range s.entries {
		if e.DayOfWeek != day {
			continue
		}
		for _, id := range e.DishIDs {
			if id == dishID {
				return true
			}
		}
		return false
	}
	return false
}
