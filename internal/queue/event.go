package queue

import (
	"fmt"
	"time"
)

// Order lifecycle event types published to Kafka.
const (
	EventOrderCreated       = "order.created"
	EventOrderPaid          = "order.paid"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is an order lifecycle notification. Total is the decimal total
// as a string so downstream consumers never touch binary floats.
type OrderEvent struct {
	EventType  string    `json:"event_type"`
	OrderID    uint      `json:"order_id"`
	OrderNo    string    `json:"order_no"`
	UserID     uint      `json:"user_id"`
	Total      string    `json:"total"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Validate does minimal field checks so the relay never forwards dirty
// messages.
func (e OrderEvent) Validate() error {
	switch e.EventType {
	case EventOrderCreated, EventOrderPaid, EventOrderStatusChanged:
	default:
		return fmt.Errorf("unknown event_type %q", e.EventType)
	}
	if e.OrderID == 0 {
		return fmt.Errorf("order_id is required")
	}
	if e.OrderNo == "" {
		return fmt.Errorf("order_no is required")
	}
	if e.UserID == 0 {
		return fmt.Errorf("user_id is required")
	}
	if e.Status == "" {
		return fmt.Errorf("status is required")
	}
	return nil
}
