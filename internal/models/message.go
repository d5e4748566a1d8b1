package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderEventType names what happened to an order on this terminal
type OrderEventType string

const (
	EventOrderPlaced     OrderEventType = "order_placed"
	EventPaymentUploaded OrderEventType = "payment_uploaded"
)

// OrderEvent is published after the backend accepted an order-mutating call
type OrderEvent struct {
	Type          OrderEventType  `json:"type"`
	OrderID       int             `json:"order_id"`
	UserID        int             `json:"user_id"`
	UserEmail     string          `json:"user_email,omitempty"`
	WeekStartDate Date            `json:"week_start_date"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Days          int             `json:"days"`
	Terminal      string          `json:"terminal,omitempty"`
	Timestamp     time.Time       `json:"timestamp"`
}

// StatusUpdateMessage represents an order status change notification
type StatusUpdateMessage struct {
	OrderID   int         `json:"order_id"`
	OldStatus OrderStatus `json:"old_status,omitempty"`
	NewStatus OrderStatus `json:"new_status"`
	ChangedBy string      `json:"changed_by"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewOrderEvent builds an event stamped with the current time
func NewOrderEvent(eventType OrderEventType, order Order, user User, days int, terminal string) *OrderEvent {
	return &OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		UserID:        user.ID,
		UserEmail:     user.Email,
		WeekStartDate: order.WeekStartDate,
		TotalAmount:   order.TotalAmount,
		Days:          days,
		Terminal:      terminal,
		Timestamp:     time.Now().UTC(),
	}
}

// NewStatusUpdateMessage creates a StatusUpdateMessage for an order status change
func NewStatusUpdateMessage(orderID int, oldStatus, newStatus OrderStatus, changedBy string) *StatusUpdateMessage {
	return &StatusUpdateMessage{
		OrderID:   orderID,
		OldStatus: oldStatus,
		NewStatus: newStatus,
		ChangedBy: changedBy,
		Timestamp: time.Now().UTC(),
	}
}
