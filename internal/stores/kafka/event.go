package kafka

import "time"

const (
	TopicOrderCreated   = `order-service.order-created`
	TopicOrderCancelled = `order-service.order-cancelled`
)

// Events published on order state changes. Delivery is best effort; the
// notification service consumes these on its own schedule.

type OrderCreatedEvent struct {
	OrderId     string    `json:"order_id"`
	UserId      string    `json:"user_id"`
	TotalAmount float64   `json:"total_amount"`
	CreatedAt   time.Time `json:"created_at"`
}

type OrderCancelledEvent struct {
	OrderId     string    `json:"order_id"`
	UserId      string    `json:"user_id"`
	CancelledAt time.Time `json:"cancelled_at"`
}
