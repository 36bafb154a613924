// Package notify reacts to order lifecycle events from Kafka and alerts the
// people who have to act on them: vendors when an order lands, logistics
// once payment is confirmed. It is fully decoupled from the coordinator;
// everything it needs rides in the event payload.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/Daddtdrey/eatai/internal/domain"
	"github.com/Daddtdrey/eatai/internal/outbox"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "notify").Logger()

type Consumer struct {
	pusher Pusher
	reader *kafka.Reader
}

func NewConsumer(pusher Pusher, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    outbox.Topic,
		GroupID:  "notify-service",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{pusher: pusher, reader: reader}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		logger.Error().Err(err).Msg("error closing kafka reader")
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error().Err(err).Msg("error reading message")
		return
	}

	if err := c.route(ctx, eventType(m), m.Value); err != nil {
		logger.Error().Err(err).Msg("error handling order event")
	}
}

func eventType(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}

// route dispatches one event. Vendors hear about every new order; logistics
// only about confirmed ones, whether confirmed at creation (synchronous
// payment) or by a later transition.
func (c *Consumer) route(ctx context.Context, kind string, payload []byte) error {
	switch kind {
	case domain.EventOrderCreated:
		var event domain.OrderCreatedPayload
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("parse created event: %w", err)
		}
		return c.handleCreated(ctx, &event)

	case domain.EventOrderStatusChanged:
		var event domain.OrderStatusChangedPayload
		if err := json.Unmarshal(payload, &event); err != nil {
			return fmt.Errorf("parse status event: %w", err)
		}
		return c.handleStatusChanged(ctx, &event)

	default:
		logger.Warn().Str("event_type", kind).Msg("ignoring unknown event type")
		return nil
	}
}

func (c *Consumer) handleCreated(ctx context.Context, event *domain.OrderCreatedPayload) error {
	for _, vendor := range event.Vendors {
		alert := Alert{
			Audience: AudienceVendor,
			Vendor:   vendor,
			Title:    "New Order",
			Body:     fmt.Sprintf("Order #%s: %d items for %s", shortID(event.OrderID), len(event.Items), event.DeliveryAddress),
			OrderID:  event.OrderID,
		}
		if err := c.pusher.Push(ctx, alert); err != nil {
			return fmt.Errorf("alert vendor %s: %w", vendor, err)
		}
	}

	if event.Status == domain.OrderStatusConfirmed {
		return c.alertLogistics(ctx, event.OrderID, event.Vendors, event.DeliveryAddress)
	}
	return nil
}

func (c *Consumer) handleStatusChanged(ctx context.Context, event *domain.OrderStatusChangedPayload) error {
	// Only the transition into confirmed matters here; pickup and delivery
	// are driven by the people already holding the order.
	if event.To != domain.OrderStatusConfirmed || event.From == domain.OrderStatusConfirmed {
		return nil
	}
	return c.alertLogistics(ctx, event.OrderID, event.Vendors, event.DeliveryAddress)
}

func (c *Consumer) alertLogistics(ctx context.Context, orderID string, vendors []string, address string) error {
	alert := Alert{
		Audience: AudienceLogistics,
		Title:    "New Job! Pickup Ready",
		Body:     fmt.Sprintf("Pickup: %s. Dropoff: %s", strings.Join(vendors, ", "), address),
		OrderID:  orderID,
	}
	if err := c.pusher.Push(ctx, alert); err != nil {
		return fmt.Errorf("alert logistics: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}
