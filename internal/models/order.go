package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

const DateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD
type Date struct {
	time.Time
}

// NewDate keeps only the calendar fields of t
func NewDate(t time.Time) Date {
	return Date{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Date{t}, nil
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format(DateLayout))
}

func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*d = Date{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	if len(s) > len(DateLayout) {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", s, err)
		}
		*d = NewDate(t)
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// OrderStatus is the backend's payment/fulfilment state of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusOnReview  OrderStatus = "on_review"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
	StatusCompleted OrderStatus = "completed"
)

// ParseOrderStatus validates a status given on the command line
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch st := OrderStatus(s); st {
	case StatusPending, StatusOnReview, StatusPaid, StatusCancelled, StatusCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("order status must be one of: pending, on_review, paid, cancelled, completed")
	}
}

// OrderItemRequest is one dish of a day in an order request
type OrderItemRequest struct {
	DishID   int `json:"dish_id"`
	Quantity int `json:"quantity"`
}

// DayOrder groups the items ordered for one day
type DayOrder struct {
	DayOfWeek int                `json:"day_of_week"`
	Items     []OrderItemRequest `json:"items"`
}

// OrderRequest is the body of POST /orders
type OrderRequest struct {
	WeekStartDate Date       `json:"week_start_date"`
	Days          []DayOrder `json:"days"`
}

// Order is the server-side record returned by the order endpoints
type Order struct {
	ID            int             `json:"id"`
	Status        OrderStatus     `json:"status"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	WeekStartDate Date            `json:"week_start_date"`
}

// SummaryItem is one dish line of the daily revenue report
type SummaryItem struct {
	Dish    string          `json:"dish"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// SummaryReport aggregates paid orders for a single day
type SummaryReport struct {
	Date         Date            `json:"date"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
	Items        []SummaryItem   `json:"items"`
}
