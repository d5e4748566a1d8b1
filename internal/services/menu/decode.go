package menu

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"cafeteria/internal/models"
)

// DecodeCatalog accepts the dish list either as a bare array or wrapped in
// {"items": [...]}. null and empty input give an empty catalog.
func DecodeCatalog(raw []byte) (models.Catalog, error) {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return models.Catalog{}, nil
	}

	var dishes []models.Dish
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &dishes); err != nil {
			return nil, fmt.Errorf("failed to decode dish list: %w", err)
		}
	case '{':
		var wrapped struct {
			Items []models.Dish `json:"items"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to decode dish list: %w", err)
		}
		dishes = wrapped.Items
	default:
		return nil, fmt.Errorf("unexpected dish list shape starting with %q", trimmed[0])
	}

	for _, d := range dishes {
		if d.PriceRub.IsNegative() {
			return nil, fmt.Errorf("dish %d has a negative price", d.ID)
		}
		if d.QuantityGrams < 0 {
			return nil, fmt.Errorf("dish %d has a negative weight", d.ID)
		}
	}
	return models.NewCatalog(dishes), nil
}

// scheduleRow covers both row shapes the backend has produced:
// {"day_of_week": 0, "dish_id": 1} and {"day_of_week": 0, "dish_ids": [1, 2]}
type scheduleRow struct {
	DayOfWeek *int  `json:"day_of_week"`
	DishID    *int  `json:"dish_id"`
	DishIDs   []int `json:"dish_ids"`
}

// DecodeSchedule normalizes every observed module-menu shape into a
// WeekSchedule:
//
//	[{"day_of_week":0,"dish_id":1}, ...]
//	[{"day_of_week":0,"dish_ids":[1,2]}, ...]
//	{"schedule": <either array above>}
//	{"0": [1, 2], "3": [4]}
//
// null, empty input and an empty list are a valid "no menu configured" state.
func DecodeSchedule(raw []byte) (models.WeekSchedule, error) {
	trimmed := bytes.TrimSpace(raw)
	if isNull(trimmed) {
		return models.NewWeekSchedule(nil), nil
	}

	var entries []models.ScheduleEntry
	var err error
	switch trimmed[0] {
	case '[':
		entries, err = decodeScheduleRows(trimmed)
	case '{':
		entries, err = decodeScheduleObject(trimmed)
	default:
		err = fmt.Errorf("unexpected schedule shape starting with %q", trimmed[0])
	}
	if err != nil {
		return models.WeekSchedule{}, err
	}
	return models.NewWeekSchedule(entries), nil
}

func decodeScheduleRows(raw []byte) ([]models.ScheduleEntry, error) {
	var rows []scheduleRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode schedule rows: %w", err)
	}

	entries := make([]models.ScheduleEntry, 0, len(rows))
	for i, row := range rows {
		if row.DayOfWeek == nil {
			return nil, fmt.Errorf("schedule row %d has no day_of_week", i)
		}
		if !models.ValidDay(*row.DayOfWeek) {
			return nil, fmt.Errorf("schedule row %d: day_of_week %d out of range", i, *row.DayOfWeek)
		}

		entry := models.ScheduleEntry{DayOfWeek: *row.DayOfWeek}
		switch {
		case row.DishIDs != nil:
			entry.DishIDs = row.DishIDs
		case row.DishID != nil:
			entry.DishIDs = []int{*row.DishID}
		default:
			return nil, fmt.Errorf("schedule row %d has neither dish_id nor dish_ids", i)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func decodeScheduleObject(raw []byte) ([]models.ScheduleEntry, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("failed to decode schedule object: %w", err)
	}

	if inner, ok := fields["schedule"]; ok {
		inner = bytes.TrimSpace(inner)
		if isNull(inner) {
			return nil, nil
		}
		if inner[0] != '[' {
			return nil, fmt.Errorf("schedule field must be a list")
		}
		return decodeScheduleRows(inner)
	}

	days := make([]int, 0, len(fields))
	byDay := make(map[int][]int, len(fields))
	for key, value := range fields {
		day, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("schedule key %q is not a day index", key)
		}
		if !models.ValidDay(day) {
			return nil, fmt.Errorf("schedule day %d out of range", day)
		}
		var ids []int
		if err := json.Unmarshal(value, &ids); err != nil {
			return nil, fmt.Errorf("schedule day %d: %w", day, err)
		}
		days = append(days, day)
		byDay[day] = ids
	}
	sort.Ints(days)

	entries := make([]models.ScheduleEntry, 0, len(days))
	for _, day := range days {
		entries = append(entries, models.ScheduleEntry{DayOfWeek: day, DishIDs: byDay[day]})
	}
	return entries, nil
}

func isNull(b []byte) bool {
	return len(b) == 0 || bytes.Equal(b, []byte("null"))
}
