// Package orders exposes order reads and the role-guarded status
// transitions that happen after an order exists. Transitions are simple
// conditional writes; they never touch inventory.
package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Daddtdrey/eatai/internal/config"
	"github.com/Daddtdrey/eatai/internal/domain"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "orders").Logger()

var (
	ErrInvalidTransition = errors.New("illegal order status transition")
	ErrForbidden         = errors.New("actor is not allowed to perform this transition")
	ErrNotOwner          = errors.New("order belongs to another user")
)

// Actor is the resolved identity performing an operation.
type Actor struct {
	UserID string
	Email  string
	Role   config.Role
	Vendor string
}

// OrderRepository is what the service needs from storage.
type OrderRepository interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error)
	ListAllOrders(ctx context.Context) ([]*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, eventPayload []byte) error
}

type Service struct {
	repo OrderRepository
}

func NewService(repo OrderRepository) *Service {
	return &Service{repo: repo}
}

// GetOrder returns one order. Customers may only read their own; staff roles
// read anything.
func (s *Service) GetOrder(ctx context.Context, actor Actor, id uuid.UUID) (*domain.Order, error) {
	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == config.RoleCustomer && order.UserID != actor.UserID {
		return nil, ErrNotOwner
	}
	return order, nil
}

// ListOrders returns the actor's own orders for customers and the full book
// for staff roles.
func (s *Service) ListOrders(ctx context.Context, actor Actor) ([]*domain.Order, error) {
	if actor.Role == config.RoleCustomer {
		return s.repo.ListOrdersByUserID(ctx, actor.UserID)
	}
	return s.repo.ListAllOrders(ctx)
}

// UpdateStatus moves an order one step along the lifecycle. The write is
// conditional on the status the actor saw, so concurrent transitions lose
// cleanly instead of double-applying.
func (s *Service) UpdateStatus(ctx context.Context, actor Actor, id uuid.UUID, next domain.OrderStatus) (*domain.Order, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, next)
	}

	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, order.Status, next)
	}
	if !allowed(actor, order, next) {
		return nil, ErrForbidden
	}

	payload, err := json.Marshal(domain.OrderStatusChangedPayload{
		OrderID:         order.ID.String(),
		From:            order.Status,
		To:              next,
		Vendors:         order.Vendors(),
		DeliveryAddress: order.Delivery.Address,
		ChangedAt:       time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal status payload: %w", err)
	}

	if err := s.repo.UpdateOrderStatus(ctx, id, order.Status, next, payload); err != nil {
		return nil, err
	}

	logger.Info().
		Str("order_id", order.ID.String()).
		Str("from", order.Status.String()).
		Str("to", next.String()).
		Str("actor", actor.Email).
		Msg("order status updated")

	order.Status = next
	return order, nil
}

// allowed encodes who may perform which transition. Vendors confirm payment
// for orders that include their products; logistics move confirmed orders
// through pickup and delivery; super admins may perform any legal
// transition including cancellation.
func allowed(actor Actor, order *domain.Order, next domain.OrderStatus) bool {
	switch actor.Role {
	case config.RoleSuper:
		return true
	case config.RoleVendor:
		if !vendorOnOrder(actor.Vendor, order) {
			return false
		}
		return order.Status == domain.OrderStatusPending &&
			(next == domain.OrderStatusConfirmed || next == domain.OrderStatusCancelled)
	case config.RoleLogistics:
		return (order.Status == domain.OrderStatusConfirmed && next == domain.OrderStatusPickedUp) ||
			(order.Status == domain.OrderStatusPickedUp && next == domain.OrderStatusDelivered)
	default:
		return false
	}
}

func vendorOnOrder(vendor string, order *domain.Order) bool {
	for _, v := range order.Vendors() {
		if v == vendor {
			return true
		}
	}
	return false
}
