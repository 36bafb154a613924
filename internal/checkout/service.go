package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Daddtdrey/eatai/internal/domain"
	"github.com/Daddtdrey/eatai/internal/inventory"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "checkout").Logger()

const (
	// maxAttempts bounds the transparent restart loop on commit conflicts.
	maxAttempts = 3

	// retryBackoff is the base delay between attempts; attempt n waits n
	// times this.
	retryBackoff = 25 * time.Millisecond
)

// PlaceOrderRequest is the coordinator's input. DeliveryFee arrives
// precomputed; fee logic lives at the boundary, not here.
type PlaceOrderRequest struct {
	UserID        string
	Lines         []domain.CartLine
	PaymentMethod string
	InitialStatus domain.OrderStatus
	DeliveryFee   float64
	Delivery      domain.DeliveryInfo
}

// Service is the sole entry point for turning a cart into a durable order
// while enforcing the inventory invariants atomically. It holds no locks;
// correctness comes from the store's transactional isolation.
type Service struct {
	store  Store
	ledger inventory.Ledger
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// PlaceOrder groups the cart, then runs one atomic transaction that
// validates and decrements stock and writes the order plus its created
// event. Commit conflicts restart the whole transaction transparently up to
// maxAttempts; every failure path leaves both collections untouched.
func (s *Service) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*domain.Order, error) {
	if req.UserID == "" {
		return nil, ErrMissingUser
	}
	if req.InitialStatus != domain.OrderStatusPending && req.InitialStatus != domain.OrderStatusConfirmed {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidInitialStatus, req.InitialStatus)
	}
	if req.DeliveryFee < 0 {
		return nil, ErrInvalidDeliveryFee
	}

	reqs, err := groupLines(req.Lines)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		order, txErr := s.runAttempt(ctx, req, reqs)
		if txErr == nil {
			return order, nil
		}
		if !errors.Is(txErr, ErrCommitConflict) {
			return nil, txErr
		}
		lastErr = txErr
		logger.Warn().
			Int("attempt", attempt).
			Str("user_id", req.UserID).
			Err(txErr).
			Msg("order transaction conflicted, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * retryBackoff):
		}
	}

	logger.Error().Str("user_id", req.UserID).Err(lastErr).Msg("order transaction retries exhausted")
	return nil, ErrTransactionConflict
}

func (s *Service) runAttempt(ctx context.Context, req *PlaceOrderRequest, reqs []inventory.Requirement) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.RunOrderTransaction(ctx, func(tx Tx) error {
		snapshots, err := s.ledger.DecrementAll(ctx, tx, reqs)
		if err != nil {
			return err
		}

		o := buildOrder(req, reqs, snapshots)
		if err := tx.CreateOrder(ctx, o); err != nil {
			return err
		}

		event, err := createdEvent(o)
		if err != nil {
			return err
		}
		if err := tx.AppendEvent(ctx, event); err != nil {
			return err
		}

		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// groupLines aggregates cart lines into per-product requirements. Repeated
// lines for the same product sum; a zero quantity counts as one unit.
// First-seen product order is preserved, though grouping is commutative and
// the outcome does not depend on it.
func groupLines(lines []domain.CartLine) ([]inventory.Requirement, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	index := make(map[int64]int, len(lines))
	reqs := make([]inventory.Requirement, 0, len(lines))
	for _, line := range lines {
		if line.ProductID <= 0 {
			return nil, fmt.Errorf("%w: missing product id", ErrInvalidLine)
		}
		if line.Quantity < 0 {
			return nil, fmt.Errorf("%w: negative quantity for product %d", ErrInvalidLine, line.ProductID)
		}
		qty := line.Quantity
		if qty == 0 {
			qty = 1
		}
		if i, ok := index[line.ProductID]; ok {
			reqs[i].Quantity += qty
			continue
		}
		index[line.ProductID] = len(reqs)
		reqs = append(reqs, inventory.Requirement{ProductID: line.ProductID, Quantity: qty})
	}
	return reqs, nil
}

// buildOrder assembles the order from the in-transaction snapshots, so the
// denormalized items and the total reflect the same consistent read the
// stock checks used.
func buildOrder(req *PlaceOrderRequest, reqs []inventory.Requirement, snapshots []inventory.Snapshot) *domain.Order {
	now := time.Now().UTC()
	items := make([]domain.OrderItem, len(reqs))
	var itemsTotal float64
	for i, r := range reqs {
		snap := snapshots[i]
		items[i] = domain.OrderItem{
			ProductID: snap.ProductID,
			Name:      snap.Name,
			Price:     snap.Price,
			Vendor:    snap.Vendor,
			Quantity:  r.Quantity,
		}
		itemsTotal += snap.Price * float64(r.Quantity)
	}

	return &domain.Order{
		ID:            uuid.New(),
		UserID:        req.UserID,
		Items:         items,
		Total:         itemsTotal + req.DeliveryFee,
		DeliveryFee:   req.DeliveryFee,
		PaymentMethod: req.PaymentMethod,
		Status:        req.InitialStatus,
		Delivery:      req.Delivery,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func createdEvent(o *domain.Order) (*domain.OrderEvent, error) {
	payload, err := json.Marshal(domain.OrderCreatedPayload{
		OrderID:         o.ID.String(),
		UserID:          o.UserID,
		Status:          o.Status,
		Items:           o.Items,
		Vendors:         o.Vendors(),
		Total:           o.Total,
		DeliveryFee:     o.DeliveryFee,
		DeliveryAddress: o.Delivery.Address,
		Phone:           o.Delivery.Phone,
		Landmark:        o.Delivery.Landmark,
		CreatedAt:       o.CreatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal order created payload: %w", err)
	}
	return &domain.OrderEvent{
		OrderID: o.ID,
		Type:    domain.EventOrderCreated,
		Payload: payload,
	}, nil
}
