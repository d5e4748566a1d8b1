package order

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"cafeteria/internal/models"
	"cafeteria/internal/services/order/internal/validation"
)

type ValidationError = validation.ValidationError

// ErrEmptySelection is returned by ToOrderRequest when nothing is selected
var ErrEmptySelection = validation.ErrEmptySelection

// IsValidation reports whether err should be shown to the user as a form error
func IsValidation(err error) bool {
	return validation.IsValidation(err)
}

// Validate checks an order request before it is sent
func Validate(req *models.OrderRequest) error {
	return validation.ValidateOrderRequest(req)
}

// Totals is the advisory summary shown under the menu. The server total on
// the created order is the authoritative charge.
type Totals struct {
	// Count is the number of distinct (day, dish) pairs, not the sum of quantities
	Count int
	Price decimal.Decimal
}

// Builder holds the in-progress weekly selection: day -> dish id -> quantity.
// Quantities are always positive and days are never empty.
// A Builder is not safe for concurrent use.
type Builder struct {
	selection map[int]map[int]int
	catalog   models.Catalog
	schedule  models.WeekSchedule
}

func NewBuilder() *Builder {
	return &Builder{selection: make(map[int]map[int]int)}
}

// Bind attaches the latest menu snapshot and drops selected dishes that are
// no longer scheduled on their day or no longer in the catalog. It returns the
// number of dropped entries.
func (b *Builder) Bind(catalog models.Catalog, schedule models.WeekSchedule) int {
	b.catalog = catalog
	b.schedule = schedule

	dropped := 0
	for day, dishes := range b.selection {
		for id := range dishes {
			_, inCatalog := catalog.Lookup(id)
			if !inCatalog || !schedule.Offers(day, id) {
				delete(dishes, id)
				dropped++
			}
		}
		if len(dishes) == 0 {
			delete(b.selection, day)
		}
	}
	return dropped
}

// Adjust adds delta to the quantity of (day, dishID), clamped at zero, and
// returns the new quantity. A zero quantity removes the entry.
func (b *Builder) Adjust(day, dishID, delta int) int {
	next := b.Quantity(day, dishID) + delta
	if next < 0 {
		next = 0
	}
	b.set(day, dishID, next)
	return next
}

// Toggle flips (day, dishID) between not selected and quantity 1 and reports
// whether it is selected afterwards
func (b *Builder) Toggle(day, dishID int) bool {
	if b.Quantity(day, dishID) > 0 {
		b.set(day, dishID, 0)
		return false
	}
	b.set(day, dishID, 1)
	return true
}

func (b *Builder) set(day, dishID, quantity int) {
	if quantity <= 0 {
		dishes, ok := b.selection[day]
		if !ok {
			return
		}
		delete(dishes, dishID)
		if len(dishes) == 0 {
			delete(b.selection, day)
		}
		return
	}

	dishes, ok := b.selection[day]
	if !ok {
		dishes = make(map[int]int)
		b.selection[day] = dishes
	}
	dishes[dishID] = quantity
}

// Quantity returns the selected quantity, zero when not selected
func (b *Builder) Quantity(day, dishID int) int {
	return b.selection[day][dishID]
}

// Empty reports whether nothing is selected
func (b *Builder) Empty() bool {
	return len(b.selection) == 0
}

// Selection returns a copy of the current selection
func (b *Builder) Selection() map[int]map[int]int {
	out := make(map[int]map[int]int, len(b.selection))
	for day, dishes := range b.selection {
		cp := make(map[int]int, len(dishes))
		for id, q := range dishes {
			cp[id] = q
		}
		out[day] = cp
	}
	return out
}

// ComputeTotal counts distinct selected dishes and sums price times quantity.
// Dishes missing from the bound catalog contribute nothing.
func (b *Builder) ComputeTotal() Totals {
	totals := Totals{Price: decimal.Zero}
	for _, dishes := range b.selection {
		for id, q := range dishes {
			dish, ok := b.catalog.Lookup(id)
			if !ok {
				continue
			}
			totals.Count++
			totals.Price = totals.Price.Add(dish.PriceRub.Mul(decimal.NewFromInt(int64(q))))
		}
	}
	return totals
}

// ToOrderRequest serializes the selection for POST /orders. weekStart must
// already be normalized to a Monday. Days and items are emitted in ascending
// order.
func (b *Builder) ToOrderRequest(weekStart time.Time) (models.OrderRequest, error) {
	days := make([]int, 0, len(b.selection))
	for day := range b.selection {
		days = append(days, day)
	}
	sort.Ints(days)

	req := models.OrderRequest{
		WeekStartDate: models.NewDate(weekStart),
		Days:          make([]models.DayOrder, 0, len(days)),
	}
	for _, day := range days {
		ids := make([]int, 0, len(b.selection[day]))
		for id, q := range b.selection[day] {
			if q > 0 {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			continue
		}
		sort.Ints(ids)

		dayOrder := models.DayOrder{DayOfWeek: day, Items: make([]models.OrderItemRequest, 0, len(ids))}
		for _, id := range ids {
			dayOrder.Items = append(dayOrder.Items, models.OrderItemRequest{DishID: id, Quantity: b.selection[day][id]})
		}
		req.Days = append(req.Days, dayOrder)
	}

	if err := validation.ValidateOrderRequest(&req); err != nil {
		return models.OrderRequest{}, err
	}
	return req, nil
}

// Reset clears the selection; the bound menu snapshot is kept
func (b *Builder) Reset() {
	b.selection = make(map[int]map[int]int)
}
