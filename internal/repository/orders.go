package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Daddtdrey/eatai/internal/domain"
)

const orderColumns = `id, user_id, items, total, delivery_fee, payment_method, status,
	delivery_area, delivery_address, phone, landmark, created_at, updated_at`

func scanOrder(scan func(dest ...any) error) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON []byte
	if err := scan(
		&order.ID,
		&order.UserID,
		&itemsJSON,
		&order.Total,
		&order.DeliveryFee,
		&order.PaymentMethod,
		&order.Status,
		&order.Delivery.Area,
		&order.Delivery.Address,
		&order.Delivery.Phone,
		&order.Delivery.Landmark,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &order, nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	return r.listOrders(ctx, query, userID)
}

func (r *Repository) ListAllOrders(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.listOrders(ctx, query)
}

func (r *Repository) listOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return orders, nil
}

// UpdateOrderStatus performs the conditional status write: it only applies
// when the current status still equals from, and appends the status-changed
// event in the same small transaction. Status transitions never revisit
// inventory.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus, eventPayload []byte) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin status transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update order status rows affected: %w", err)
	}
	if rows == 0 {
		return ErrStatusConflict
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO order_events (order_id, event_type, payload, created_at) VALUES ($1, $2, $3, NOW())`,
		id, domain.EventOrderStatusChanged, eventPayload)
	if err != nil {
		return fmt.Errorf("insert status event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status transaction: %w", err)
	}
	return nil
}
