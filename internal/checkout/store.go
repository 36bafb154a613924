package checkout

import (
	"context"

	"github.com/Daddtdrey/eatai/internal/domain"
	"github.com/Daddtdrey/eatai/internal/inventory"
)

// Tx is the atomic scope an order placement runs in: ledger reads and writes
// plus the order document and its outbox event, all visible together or not
// at all.
type Tx interface {
	inventory.Tx

	// CreateOrder writes the order document inside the transaction.
	CreateOrder(ctx context.Context, order *domain.Order) error

	// AppendEvent writes an outbox event inside the transaction so that
	// event publication can never observe an order that was rolled back.
	AppendEvent(ctx context.Context, event *domain.OrderEvent) error
}

// Store runs order transactions against the backing store with optimistic
// concurrency. Implementations return ErrCommitConflict (possibly wrapped)
// when commit validation fails and ErrStoreUnavailable when the store is
// unreachable; any error from fn aborts the transaction with no effect.
type Store interface {
	RunOrderTransaction(ctx context.Context, fn func(tx Tx) error) error
}
