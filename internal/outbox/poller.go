// Package outbox publishes order events to Kafka from the transactional
// outbox table. Events are written in the same transaction as the change
// they describe, so the poller can never publish an order that was rolled
// back.
package outbox

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"github.com/Daddtdrey/eatai/internal/domain"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "outbox").Logger()

const Topic = "order-events"

// EventSource is what the poller needs from the repository.
type EventSource interface {
	GetUnprocessedEvents(ctx context.Context, limit int) ([]*domain.OrderEvent, error)
	MarkEventProcessed(ctx context.Context, id int64) error
}

// messageWriter is the slice of kafka.Writer the poller uses; tests swap in
// a fake.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Poller struct {
	tick      time.Duration
	batchSize int
	source    EventSource
	writer    messageWriter
}

func NewPoller(source EventSource, brokers ...string) *Poller {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  Topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
	return &Poller{
		tick:      time.Second,
		batchSize: 100,
		source:    source,
		writer:    w,
	}
}

func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// processPending publishes each pending event and marks it processed only
// after the publish succeeded. A failed publish leaves the event pending for
// the next tick; at-least-once, consumers dedupe on order id.
func (p *Poller) processPending(ctx context.Context) {
	events, err := p.source.GetUnprocessedEvents(ctx, p.batchSize)
	if err != nil {
		logger.Error().Err(err).Msg("failed to fetch outbox events")
		return
	}

	for _, event := range events {
		if errPublish := p.publish(ctx, event); errPublish != nil {
			logger.Error().Err(errPublish).Int64("event_id", event.ID).Msg("failed to publish event")
			continue
		}

		if errMark := p.source.MarkEventProcessed(ctx, event.ID); errMark != nil {
			logger.Error().Err(errMark).Int64("event_id", event.ID).Msg("failed to mark event processed")
		}
	}
}

func (p *Poller) publish(ctx context.Context, event *domain.OrderEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.OrderID.String()), // order id keys partitioning, keeps per-order ordering
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
