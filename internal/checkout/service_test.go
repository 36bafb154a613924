package checkout

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Daddtdrey/eatai/internal/domain"
	"github.com/Daddtdrey/eatai/internal/inventory"
)

// memStore is an in-memory Store with transactional semantics: writes made
// through a tx only land if the whole function succeeds, and commit
// conflicts can be injected to exercise the retry loop.
type memStore struct {
	mu        sync.Mutex
	products  map[int64]inventory.Snapshot
	orders    []*domain.Order
	events    []*domain.OrderEvent
	conflicts int // commit conflicts to inject before allowing a commit
}

func newMemStore(products ...inventory.Snapshot) *memStore {
	s := &memStore{products: make(map[int64]inventory.Snapshot)}
	for _, p := range products {
		s.products[p.ProductID] = p
	}
	return s
}

func (s *memStore) RunOrderTransaction(_ context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s, stockWrites: make(map[int64]int)}
	if err := fn(tx); err != nil {
		return err
	}

	if s.conflicts > 0 {
		s.conflicts--
		return fmt.Errorf("restarting transaction: %w", ErrCommitConflict)
	}

	for id, stock := range tx.stockWrites {
		p := s.products[id]
		p.Stock = stock
		s.products[id] = p
	}
	s.orders = append(s.orders, tx.orders...)
	s.events = append(s.events, tx.events...)
	return nil
}

func (s *memStore) stock(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

type memTx struct {
	store       *memStore
	stockWrites map[int64]int
	orders      []*domain.Order
	events      []*domain.OrderEvent
}

func (t *memTx) ReadStock(_ context.Context, productID int64) (*inventory.Snapshot, error) {
	p, ok := t.store.products[productID]
	if !ok {
		return nil, inventory.ErrProductNotFound
	}
	return &p, nil
}

func (t *memTx) WriteStock(_ context.Context, productID int64, stock int) error {
	t.stockWrites[productID] = stock
	return nil
}

func (t *memTx) CreateOrder(_ context.Context, o *domain.Order) error {
	t.orders = append(t.orders, o)
	return nil
}

func (t *memTx) AppendEvent(_ context.Context, e *domain.OrderEvent) error {
	t.events = append(t.events, e)
	return nil
}

func validRequest(lines ...domain.CartLine) *PlaceOrderRequest {
	return &PlaceOrderRequest{
		UserID:        "user-1",
		Lines:         lines,
		PaymentMethod: "transfer",
		InitialStatus: domain.OrderStatusPending,
		Delivery:      domain.DeliveryInfo{Area: "Irrua", Address: "12 College Rd", Phone: "0801"},
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	svc := NewService(newMemStore())

	req := validRequest(domain.CartLine{ProductID: 1, Quantity: 1})
	req.UserID = ""
	_, err := svc.PlaceOrder(context.Background(), req)
	assert.ErrorIs(t, err, ErrMissingUser)

	req = validRequest(domain.CartLine{ProductID: 1, Quantity: 1})
	req.InitialStatus = domain.OrderStatusDelivered
	_, err = svc.PlaceOrder(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInitialStatus)

	req = validRequest(domain.CartLine{ProductID: 1, Quantity: 1})
	req.DeliveryFee = -100
	_, err = svc.PlaceOrder(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDeliveryFee)

	_, err = svc.PlaceOrder(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = svc.PlaceOrder(context.Background(), validRequest(domain.CartLine{ProductID: 0, Quantity: 1}))
	assert.ErrorIs(t, err, ErrInvalidLine)

	_, err = svc.PlaceOrder(context.Background(), validRequest(domain.CartLine{ProductID: 1, Quantity: -1}))
	assert.ErrorIs(t, err, ErrInvalidLine)
}

func TestPlaceOrderGroupsRepeatedLines(t *testing.T) {
	store := newMemStore(
		inventory.Snapshot{ProductID: 1, Name: "Jollof Rice", Price: 500, Vendor: "Mama Cass Kitchen", Stock: 10},
		inventory.Snapshot{ProductID: 2, Name: "Suya", Price: 300, Vendor: "Crunchies Irrua", Stock: 10},
	)
	svc := NewService(store)

	// Two lines for product 1: a zero quantity counts as one unit
	req := validRequest(
		domain.CartLine{ProductID: 1, Quantity: 0},
		domain.CartLine{ProductID: 1, Quantity: 1},
		domain.CartLine{ProductID: 2, Quantity: 1},
	)
	req.DeliveryFee = 1000

	order, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, order.Items, 2)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, 1, order.Items[1].Quantity)
	assert.Equal(t, 500.0*2+300+1000, order.Total)
	assert.Equal(t, 8, store.stock(1))
	assert.Equal(t, 9, store.stock(2))
}

func TestPlaceOrderInsufficientStockTouchesNothing(t *testing.T) {
	store := newMemStore(
		inventory.Snapshot{ProductID: 1, Name: "Jollof Rice", Price: 500, Stock: 3},
		inventory.Snapshot{ProductID: 2, Name: "Suya", Price: 300, Stock: 0},
	)
	svc := NewService(store)

	_, err := svc.PlaceOrder(context.Background(), validRequest(
		domain.CartLine{ProductID: 1, Quantity: 2},
		domain.CartLine{ProductID: 2, Quantity: 1},
	))

	var shortfall *inventory.InsufficientStockError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, int64(2), shortfall.ProductID)
	assert.Equal(t, 0, shortfall.Remaining)

	// The satisfiable product was not decremented and nothing was created
	assert.Equal(t, 3, store.stock(1))
	assert.Empty(t, store.orders)
	assert.Empty(t, store.events)
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	store := newMemStore(inventory.Snapshot{ProductID: 1, Stock: 5})
	svc := NewService(store)

	_, err := svc.PlaceOrder(context.Background(), validRequest(domain.CartLine{ProductID: 42, Quantity: 1}))

	var unavailable *inventory.UnavailableError
	require.ErrorAs(t, err, &unavailable)
	assert.Equal(t, int64(42), unavailable.ProductID)
	assert.Empty(t, store.orders)
}

func TestPlaceOrderConfirmedWithFee(t *testing.T) {
	store := newMemStore(inventory.Snapshot{ProductID: 1, Name: "Jollof Rice", Price: 1000, Vendor: "Mama Cass Kitchen", Stock: 5})
	svc := NewService(store)

	req := validRequest(domain.CartLine{ProductID: 1, Quantity: 1})
	req.InitialStatus = domain.OrderStatusConfirmed
	req.PaymentMethod = "paystack"
	req.DeliveryFee = 2000

	order, err := svc.PlaceOrder(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusConfirmed, order.Status)
	assert.Equal(t, 3000.0, order.Total)
	assert.Equal(t, 2000.0, order.DeliveryFee)
	assert.Equal(t, 4, store.stock(1))

	require.Len(t, store.events, 1)
	assert.Equal(t, domain.EventOrderCreated, store.events[0].Type)
	assert.Equal(t, order.ID, store.events[0].OrderID)
}

func TestPlaceOrderSequentialExhaustsStock(t *testing.T) {
	store := newMemStore(inventory.Snapshot{ProductID: 1, Name: "Last Plate", Price: 700, Stock: 1})
	svc := NewService(store)

	_, err := svc.PlaceOrder(context.Background(), validRequest(domain.CartLine{ProductID: 1, Quantity: 1}))
	require.NoError(t, err)

	_, err = svc.PlaceOrder(context.Background(), validRequest(domain.CartLine{ProductID: 1, Quantity: 1}))
	var shortfall *inventory.InsufficientStockError
	require.ErrorAs(t, err, &shortfall)
	assert.Equal(t, 0, shortfall.Remaining)
	assert.Equal(t, 0, store.stock(1))
	assert.Len(t, store.orders, 1)
}

func TestPlaceOrderRetriesCommitConflicts(t *testing.T) {
	store := newMemStore(inventory.Snapshot{ProductID: 1, Price: 500, Stock: 5})
	store.conflicts = 2
	svc := NewService(store)

	order, err := svc.PlaceOrder(context.Background(), validRequest(domain.CartLine{ProductID: 1, Quantity: 1}))
	require.NoError(t, err)
	assert.NotNil(t, order)
	assert.Equal(t, 4, store.stock(1))
	assert.Len(t, store.orders, 1)
}

func TestPlaceOrderConflictExhaustion(t *testing.T) {
	store := newMemStore(inventory.Snapshot{ProductID: 1, Price: 500, Stock: 5})
	store.conflicts = 3
	svc := NewService(store)

	_, err := svc.PlaceOrder(context.Background(), validRequest(domain.CartLine{ProductID: 1, Quantity: 1}))
	assert.ErrorIs(t, err, ErrTransactionConflict)

	assert.Equal(t, 5, store.stock(1))
	assert.Empty(t, store.orders)
	assert.Empty(t, store.events)
}

func TestPlaceOrderConcurrentNoOversell(t *testing.T) {
	store := newMemStore(inventory.Snapshot{ProductID: 1, Price: 500, Stock: 5})
	svc := NewService(store)

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), validRequest(domain.CartLine{ProductID: 1, Quantity: 1}))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, failed int
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		failed++
		var shortfall *inventory.InsufficientStockError
		assert.ErrorAs(t, err, &shortfall)
	}

	assert.Equal(t, 5, ok)
	assert.Equal(t, 5, failed)
	assert.Equal(t, 0, store.stock(1))
	assert.Len(t, store.orders, 5)
}
