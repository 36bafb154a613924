package domain

import (
	"time"

	"github.com/google/uuid"
)

// Event types published on the order-events topic.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// OrderEvent is one outbox row. Payload is the already-marshalled JSON body
// written in the same transaction as the change it describes.
type OrderEvent struct {
	ID        int64
	OrderID   uuid.UUID
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// OrderCreatedPayload carries everything a notification consumer needs to
// alert vendors and logistics without re-querying any table.
type OrderCreatedPayload struct {
	OrderID         string      `json:"order_id"`
	UserID          string      `json:"user_id"`
	Status          OrderStatus `json:"status"`
	Items           []OrderItem `json:"items"`
	Vendors         []string    `json:"vendors"`
	Total           float64     `json:"total"`
	DeliveryFee     float64     `json:"delivery_fee"`
	DeliveryAddress string      `json:"delivery_address"`
	Phone           string      `json:"phone"`
	Landmark        string      `json:"landmark"`
	CreatedAt       time.Time   `json:"created_at"`
}

// OrderStatusChangedPayload describes one status transition.
type OrderStatusChangedPayload struct {
	OrderID         string      `json:"order_id"`
	From            OrderStatus `json:"from"`
	To              OrderStatus `json:"to"`
	Vendors         []string    `json:"vendors"`
	DeliveryAddress string      `json:"delivery_address"`
	ChangedAt       time.Time   `json:"changed_at"`
}
