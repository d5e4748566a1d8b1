package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DishType is the menu category a dish is grouped under
type DishType string

const (
	TypeSoup    DishType = "SOUP"
	TypeMain    DishType = "MAIN"
	TypeGarnish DishType = "GARNISH"
	TypeSalad   DishType = "SALAD"
	TypeDrink   DishType = "DRINK"
	TypeBread   DishType = "BREAD"
	TypeDessert DishType = "DESSERT"
	TypeOther   DishType = "OTHER"
)

// TypeOrder is the order categories are shown in within a day
var TypeOrder = []DishType{TypeSoup, TypeMain, TypeGarnish, TypeSalad, TypeDrink, TypeBread, TypeDessert}

var typeTitles = map[DishType]string{
	TypeSoup:    "Soups",
	TypeMain:    "Main courses",
	TypeGarnish: "Side dishes",
	TypeSalad:   "Salads",
	TypeDrink:   "Drinks",
	TypeBread:   "Bread",
	TypeDessert: "Desserts",
	TypeOther:   "Other",
}

// ParseDishType maps a backend value onto a known category, case-insensitively.
// Unknown or empty values become TypeOther.
func ParseDishType(s string) DishType {
	t := DishType(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := typeTitles[t]; ok {
		return t
	}
	return TypeOther
}

// Title returns the heading shown above the category
func (t DishType) Title() string {
	if title, ok := typeTitles[t]; ok {
		return title
	}
	return string(t)
}

// UnmarshalText normalizes the category while decoding
func (t *DishType) UnmarshalText(b []byte) error {
	*t = ParseDishType(string(b))
	return nil
}

// Dish is an immutable catalog record owned by the backend
type Dish struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	ShortName     string          `json:"short_name,omitempty"`
	Composition   string          `json:"composition"`
	Type          DishType        `json:"type"`
	PriceRub      decimal.Decimal `json:"price_rub"`
	QuantityGrams int             `json:"quantity_grams"`
	IsProvider    bool            `json:"is_provider"`
}

// Catalog is a read-only snapshot of the dish list indexed by id
type Catalog map[int]Dish

// NewCatalog indexes dishes by id; a later duplicate id replaces an earlier one
func NewCatalog(dishes []Dish) Catalog {
	c := make(Catalog, len(dishes))
	for _, d := range dishes {
		c[d.ID] = d
	}
	return c
}

// Lookup returns the dish with the given id
func (c Catalog) Lookup(id int) (Dish, bool) {
	d, ok := c[id]
	return d, ok
}
