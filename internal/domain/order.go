package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPickedUp  OrderStatus = "picked_up"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPickedUp,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo reports whether next is a legal successor of s. The
// lifecycle moves strictly forward one step at a time; the only skip is the
// creation-time pending shortcut, which never goes through here because an
// order created as confirmed starts in confirmed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return next == OrderStatusConfirmed || next == OrderStatusCancelled
	case OrderStatusConfirmed:
		return next == OrderStatusPickedUp || next == OrderStatusCancelled
	case OrderStatusPickedUp:
		return next == OrderStatusDelivered
	default:
		return false
	}
}

// OrderItem is a denormalized snapshot of a product at order time. It stays
// intact no matter what later happens to the product record.
type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Vendor    string  `json:"vendor"`
	Quantity  int     `json:"quantity"`
}

// DeliveryInfo carries where and whom to deliver to.
type DeliveryInfo struct {
	Area     string `json:"area"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Landmark string `json:"landmark"`
}

// Order is the durable result of a successful checkout. Total equals the sum
// of line item prices plus the delivery fee at creation time and is never
// recomputed.
type Order struct {
	ID            uuid.UUID    `json:"id"`
	UserID        string       `json:"user_id"`
	Items         []OrderItem  `json:"items"`
	Total         float64      `json:"total"`
	DeliveryFee   float64      `json:"delivery_fee"`
	PaymentMethod string       `json:"payment_method"`
	Status        OrderStatus  `json:"status"`
	Delivery      DeliveryInfo `json:"delivery"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// Vendors returns the distinct vendor names across the order's items, in
// first-seen order. Notification fan-out keys on this.
func (o *Order) Vendors() []string {
	seen := make(map[string]struct{}, len(o.Items))
	var vendors []string
	for _, item := range o.Items {
		if _, ok := seen[item.Vendor]; ok {
			continue
		}
		seen[item.Vendor] = struct{}{}
		vendors = append(vendors, item.Vendor)
	}
	return vendors
}
