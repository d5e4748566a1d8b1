package menu

import "cafeteria/internal/models"

// DishGroup is one category block within a day
type DishGroup struct {
	Type   models.DishType
	Title  string
	Dishes []models.Dish
}

// DayMenu is a renderable day: its dishes grouped by category
type DayMenu struct {
	Day    int
	Name   string
	Groups []DishGroup
}

// Dishes flattens the groups in display order
func (d DayMenu) Dishes() []models.Dish {
	var out []models.Dish
	for _, g := range d.Groups {
		out = append(out, g.Dishes...)
	}
	return out
}

// BuildView merges the schedule with the catalog. Scheduled ids missing from
// the catalog are skipped, days left without dishes are omitted, and groups
// follow models.TypeOrder with any other category after them.
func BuildView(catalog models.Catalog, schedule models.WeekSchedule) []DayMenu {
	var view []DayMenu
	for _, entry := range schedule.Entries() {
		groups := make(map[models.DishType][]models.Dish)
		var extra []models.DishType
		count := 0

		for _, id := range entry.DishIDs {
			dish, ok := catalog.Lookup(id)
			if !ok {
				continue
			}
			t := dish.Type
			if t == "" {
				t = models.TypeOther
			}
			if _, seen := groups[t]; !seen && !known(t) {
				extra = append(extra, t)
			}
			groups[t] = append(groups[t], dish)
			count++
		}
		if count == 0 {
			continue
		}

		day := DayMenu{Day: entry.DayOfWeek, Name: models.DayName(entry.DayOfWeek)}
		for _, t := range append(append([]models.DishType{}, models.TypeOrder...), extra...) {
			if dishes, ok := groups[t]; ok {
				day.Groups = append(day.Groups, DishGroup{Type: t, Title: t.Title(), Dishes: dishes})
			}
		}
		view = append(view, day)
	}
	return view
}

func known(t models.DishType) bool {
	for _, k := range models.TypeOrder {
		if k == t {
			return true
		}
	}
	return false
}
