package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/Daddtdrey/eatai/internal/checkout"
	"github.com/Daddtdrey/eatai/internal/domain"
	"github.com/Daddtdrey/eatai/internal/inventory"
)

// RunOrderTransaction runs fn in one SERIALIZABLE transaction. Postgres
// validates the read set at commit time; a serialization failure surfaces as
// checkout.ErrCommitConflict so the coordinator can restart the attempt.
func (r *Repository) RunOrderTransaction(ctx context.Context, fn func(tx checkout.Tx) error) error {
	sqlTx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return mapTxError(err)
	}

	if err := fn(&orderTx{tx: sqlTx}); err != nil {
		_ = sqlTx.Rollback()
		return mapTxError(err)
	}

	if err := sqlTx.Commit(); err != nil {
		return mapTxError(err)
	}
	return nil
}

// mapTxError classifies driver errors into the checkout taxonomy. 40001 is
// serialization_failure, 40P01 deadlock_detected; class 08 is connection
// failure.
func mapTxError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == "40001" || pqErr.Code == "40P01":
			return fmt.Errorf("%w: %v", checkout.ErrCommitConflict, err)
		case pqErr.Code.Class() == "08":
			return fmt.Errorf("%w: %v", checkout.ErrStoreUnavailable, err)
		}
	}
	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", checkout.ErrStoreUnavailable, err)
	}
	return err
}

// orderTx adapts one *sql.Tx to the scope the coordinator and ledger run in.
type orderTx struct {
	tx *sql.Tx
}

func (t *orderTx) ReadStock(ctx context.Context, productID int64) (*inventory.Snapshot, error) {
	query := `SELECT id, name, price, vendor, stock FROM products WHERE id = $1`

	var snap inventory.Snapshot
	err := t.tx.QueryRowContext(ctx, query, productID).Scan(
		&snap.ProductID,
		&snap.Name,
		&snap.Price,
		&snap.Vendor,
		&snap.Stock,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, inventory.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read stock for product %d: %w", productID, err)
	}
	return &snap, nil
}

func (t *orderTx) WriteStock(ctx context.Context, productID int64, stock int) error {
	query := `UPDATE products SET stock = $2, updated_at = NOW() WHERE id = $1`

	if _, err := t.tx.ExecContext(ctx, query, productID, stock); err != nil {
		return fmt.Errorf("write stock for product %d: %w", productID, err)
	}
	return nil
}

func (t *orderTx) CreateOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	query := `INSERT INTO orders (id, user_id, items, total, delivery_fee, payment_method, status,
	                              delivery_area, delivery_address, phone, landmark, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $12)`

	_, err = t.tx.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		itemsJSON,
		order.Total,
		order.DeliveryFee,
		order.PaymentMethod,
		order.Status,
		order.Delivery.Area,
		order.Delivery.Address,
		order.Delivery.Phone,
		order.Delivery.Landmark,
		order.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (t *orderTx) AppendEvent(ctx context.Context, event *domain.OrderEvent) error {
	query := `INSERT INTO order_events (order_id, event_type, payload, created_at)
	          VALUES ($1, $2, $3, NOW())`

	if _, err := t.tx.ExecContext(ctx, query, event.OrderID, event.Type, event.Payload); err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}
