package repository

import (
	"context"
	"fmt"

	"github.com/Daddtdrey/eatai/internal/domain"
)

// GetUnprocessedEvents returns pending outbox events oldest first, bounded
// by limit.
func (r *Repository) GetUnprocessedEvents(ctx context.Context, limit int) ([]*domain.OrderEvent, error) {
	query := `SELECT id, order_id, event_type, payload, created_at
	          FROM order_events
	          WHERE processed_at IS NULL
	          ORDER BY id
	          LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query unprocessed events: %w", err)
	}
	defer rows.Close()

	var events []*domain.OrderEvent
	for rows.Next() {
		var event domain.OrderEvent
		if err := rows.Scan(&event.ID, &event.OrderID, &event.Type, &event.Payload, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, &event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return events, nil
}

func (r *Repository) MarkEventProcessed(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE order_events SET processed_at = NOW() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("mark event processed: %w", err)
	}
	return nil
}
