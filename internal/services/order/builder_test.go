package order

import (
	"encoding/json"
	"errors"
	"math/rand"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"cafeteria/internal/models"
)

func testMenu() (models.Catalog, models.WeekSchedule) {
	catalog := models.NewCatalog([]models.Dish{
		{ID: 1, Name: "Soup", Type: models.TypeSoup, PriceRub: decimal.NewFromInt(80)},
		{ID: 2, Name: "Tea", Type: models.TypeDrink, PriceRub: decimal.NewFromInt(20)},
		{ID: 3, Name: "Cutlet", Type: models.TypeMain, PriceRub: decimal.RequireFromString("115.50")},
	})
	schedule := models.NewWeekSchedule([]models.ScheduleEntry{
		{DayOfWeek: 0, DishIDs: []int{1, 2}},
		{DayOfWeek: 2, DishIDs: []int{2, 3}},
	})
	return catalog, schedule
}

func newBoundBuilder() *Builder {
	b := NewBuilder()
	b.Bind(testMenu())
	return b
}

func june(day int) time.Time {
	return time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC)
}

func TestBuilder_EndToEndScenario(t *testing.T) {
	catalog := models.NewCatalog([]models.Dish{
		{ID: 1, Name: "Soup", PriceRub: decimal.NewFromInt(80)},
		{ID: 2, Name: "Tea", PriceRub: decimal.NewFromInt(20)},
	})
	schedule := models.NewWeekSchedule([]models.ScheduleEntry{{DayOfWeek: 0, DishIDs: []int{1, 2}}})

	b := NewBuilder()
	b.Bind(catalog, schedule)
	b.Adjust(0, 1, +1)
	b.Adjust(0, 2, +1)

	totals := b.ComputeTotal()
	if totals.Count != 2 || !totals.Price.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("ComputeTotal = (%d, %s), want (2, 100)", totals.Count, totals.Price)
	}

	req, err := b.ToOrderRequest(june(3))
	if err != nil {
		t.Fatalf("ToOrderRequest: %v", err)
	}
	got, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"week_start_date":"2024-06-03","days":[{"day_of_week":0,"items":[{"dish_id":1,"quantity":1},{"dish_id":2,"quantity":1}]}]}`
	if string(got) != want {
		t.Fatalf("payload = %s\nwant      %s", got, want)
	}
}

func TestBuilder_AdjustPrunesZero(t *testing.T) {
	b := newBoundBuilder()

	if q := b.Adjust(2, 3, 2); q != 2 {
		t.Fatalf("quantity = %d, want 2", q)
	}
	if q := b.Adjust(2, 3, -5); q != 0 {
		t.Fatalf("quantity = %d, want clamp to 0", q)
	}
	if !b.Empty() {
		t.Fatalf("selection = %v, want empty", b.Selection())
	}
	if _, ok := b.Selection()[2]; ok {
		t.Fatalf("empty day key retained")
	}
}

func TestBuilder_AdjustOnMissingEntryIsNoop(t *testing.T) {
	b := newBoundBuilder()
	if q := b.Adjust(4, 9, -1); q != 0 {
		t.Fatalf("quantity = %d", q)
	}
	if !b.Empty() {
		t.Fatalf("negative adjust created an entry")
	}
}

func TestBuilder_ToggleRestoresTotals(t *testing.T) {
	b := newBoundBuilder()
	b.Toggle(2, 2)
	before := b.ComputeTotal()

	if !b.Toggle(0, 1) {
		t.Fatalf("first toggle must select")
	}
	after := b.ComputeTotal()
	if after.Count != before.Count+1 || !after.Price.Equal(before.Price.Add(decimal.NewFromInt(80))) {
		t.Fatalf("after add = %+v, before = %+v", after, before)
	}

	if b.Toggle(0, 1) {
		t.Fatalf("second toggle must deselect")
	}
	restored := b.ComputeTotal()
	if restored.Count != before.Count || !restored.Price.Equal(before.Price) {
		t.Fatalf("restored = %+v, want %+v", restored, before)
	}
}

func TestBuilder_CountIsDistinctDishes(t *testing.T) {
	b := newBoundBuilder()
	b.Adjust(0, 1, 3)

	totals := b.ComputeTotal()
	if totals.Count != 1 {
		t.Errorf("count = %d, want 1", totals.Count)
	}
	if !totals.Price.Equal(decimal.NewFromInt(240)) {
		t.Errorf("price = %s, want 240", totals.Price)
	}
}

func TestBuilder_UnresolvableDishContributesNothing(t *testing.T) {
	b := NewBuilder()
	b.Adjust(0, 1, 1)
	b.Adjust(0, 42, 1)

	if totals := b.ComputeTotal(); totals.Count != 0 || !totals.Price.IsZero() {
		t.Fatalf("unbound totals = %+v, want zero", totals)
	}

	catalog, _ := testMenu()
	b.catalog = catalog
	totals := b.ComputeTotal()
	if totals.Count != 1 || !totals.Price.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("totals = %+v, want (1, 80)", totals)
	}
}

func TestBuilder_BindDropsStaleSelections(t *testing.T) {
	b := newBoundBuilder()
	b.Toggle(0, 1)
	b.Toggle(0, 2)
	b.Toggle(2, 3)

	catalog := models.NewCatalog([]models.Dish{
		{ID: 1, PriceRub: decimal.NewFromInt(80)},
		{ID: 2, PriceRub: decimal.NewFromInt(20)},
	})
	schedule := models.NewWeekSchedule([]models.ScheduleEntry{
		{DayOfWeek: 0, DishIDs: []int{1}},
		{DayOfWeek: 2, DishIDs: []int{3}},
	})

	if dropped := b.Bind(catalog, schedule); dropped != 2 {
		t.Fatalf("dropped = %d, want 2", dropped)
	}
	want := map[int]map[int]int{0: {1: 1}}
	if got := b.Selection(); !reflect.DeepEqual(got, want) {
		t.Fatalf("selection = %v, want %v", got, want)
	}
}

func TestBuilder_ToOrderRequestErrors(t *testing.T) {
	b := newBoundBuilder()

	_, err := b.ToOrderRequest(june(3))
	if !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("empty selection error = %v", err)
	}
	for _, week := range []time.Time{{}, june(5)} {
		if _, err := b.ToOrderRequest(week); !errors.Is(err, ErrEmptySelection) {
			t.Fatalf("empty selection with week %v: error = %v", week, err)
		}
	}

	b.Toggle(0, 1)
	if _, err := b.ToOrderRequest(time.Time{}); !IsValidation(err) {
		t.Fatalf("zero week start error = %v", err)
	}
	if _, err := b.ToOrderRequest(june(5)); !IsValidation(err) {
		t.Fatalf("wednesday week start error = %v", err)
	}
}

func TestBuilder_ToOrderRequestOrdering(t *testing.T) {
	b := newBoundBuilder()
	b.Toggle(2, 3)
	b.Toggle(2, 2)
	b.Adjust(0, 2, 2)

	req, err := b.ToOrderRequest(june(3))
	if err != nil {
		t.Fatal(err)
	}
	want := []models.DayOrder{
		{DayOfWeek: 0, Items: []models.OrderItemRequest{{DishID: 2, Quantity: 2}}},
		{DayOfWeek: 2, Items: []models.OrderItemRequest{{DishID: 2, Quantity: 1}, {DishID: 3, Quantity: 1}}},
	}
	if !reflect.DeepEqual(req.Days, want) {
		t.Fatalf("days = %+v, want %+v", req.Days, want)
	}
}

func TestBuilder_Reset(t *testing.T) {
	b := newBoundBuilder()
	b.Toggle(0, 1)
	b.Reset()

	if !b.Empty() || b.ComputeTotal().Count != 0 {
		t.Fatalf("Reset left %v", b.Selection())
	}
	if _, err := b.ToOrderRequest(june(3)); !errors.Is(err, ErrEmptySelection) {
		t.Fatalf("error after reset = %v", err)
	}
}

func TestBuilder_RandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	catalog, _ := testMenu()

	for run := 0; run < 50; run++ {
		b := newBoundBuilder()
		for step := 0; step < 200; step++ {
			day := rng.Intn(7)
			dish := 1 + rng.Intn(3)
			if rng.Intn(3) == 0 {
				b.Toggle(day, dish)
			} else {
				b.Adjust(day, dish, rng.Intn(5)-2)
			}

			for d, dishes := range b.selection {
				if len(dishes) == 0 {
					t.Fatalf("run %d step %d: day %d kept with no dishes", run, step, d)
				}
				for id, q := range dishes {
					if q <= 0 {
						t.Fatalf("run %d step %d: (%d,%d) stored with quantity %d", run, step, d, id, q)
					}
				}
			}
		}

		req, err := b.ToOrderRequest(june(3))
		if b.Empty() {
			if !errors.Is(err, ErrEmptySelection) {
				t.Fatalf("run %d: empty selection error = %v", run, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("run %d: ToOrderRequest: %v", run, err)
		}

		sum := decimal.Zero
		for _, day := range req.Days {
			if len(day.Items) == 0 {
				t.Fatalf("run %d: day %d serialized without items", run, day.DayOfWeek)
			}
			for _, item := range day.Items {
				dish, ok := catalog.Lookup(item.DishID)
				if !ok {
					continue
				}
				sum = sum.Add(dish.PriceRub.Mul(decimal.NewFromInt(int64(item.Quantity))))
			}
		}
		if total := b.ComputeTotal().Price; !sum.Equal(total) {
			t.Fatalf("run %d: request sum %s != ComputeTotal %s", run, sum, total)
		}
	}
}
