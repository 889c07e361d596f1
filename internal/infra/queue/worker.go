package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/atlasai/outbound/internal/usecase"
)

// Worker consumes engagement events from the queue and feeds them to the
// tracker. Malformed payloads are rejected without requeue so they dead
// letter instead of blocking the queue.
type Worker struct {
	ch      *amqp.Channel
	tracker *usecase.Tracker
	log     *zap.Logger
}

func NewWorker(ch *amqp.Channel, tracker *usecase.Tracker, log *zap.Logger) *Worker {
	return &Worker{ch: ch, tracker: tracker, log: log}
}

// Start consumes until the context is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context) error {
	msgs, err := w.ch.Consume(
		QueueName,
		"",    // consumer tag
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer: %w", err)
	}

	w.log.Info("engagement worker started", zap.String("queue", QueueName))

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	var event EngagementEvent
	if err := json.Unmarshal(d.Body, &event); err != nil {
		w.log.Warn("malformed engagement event, dead-lettering", zap.Error(err))
		d.Nack(false, false)
		return
	}

	if err := w.process(ctx, event); err != nil {
		w.log.Error("engagement event failed",
			zap.String("kind", event.Kind), zap.Error(err))
		d.Nack(false, false)
		return
	}
	d.Ack(false)
}

func (w *Worker) process(ctx context.Context, event EngagementEvent) error {
	meta := usecase.EventMeta{UserAgent: event.UserAgent, IPAddress: event.IPAddress}

	switch event.Kind {
	case "open":
		return w.tracker.RecordOpen(ctx, event.TrackingID, meta)
	case "click":
		return w.tracker.RecordClick(ctx, event.TrackingID, event.URL, meta)
	case "reply":
		return w.tracker.RecordReply(ctx, event.MessageID, event.Content)
	case "bounce":
		return w.tracker.RecordBounce(ctx, event.MessageID, event.BounceType)
	case "delivered":
		return w.tracker.RecordDelivered(ctx, event.MessageID)
	default:
		return fmt.Errorf("unknown event kind %q", event.Kind)
	}
}
