package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/atlasai/outbound/internal/usecase"
)

// EngagementEvent is the wire payload for one engagement signal.
type EngagementEvent struct {
	Kind       string    `json:"kind"`
	TrackingID string    `json:"tracking_id,omitempty"`
	MessageID  string    `json:"message_id,omitempty"`
	URL        string    `json:"url,omitempty"`
	Content    string    `json:"content,omitempty"`
	BounceType string    `json:"bounce_type,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	IPAddress  string    `json:"ip_address,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

// Producer publishes engagement signals to the broker. It is the async
// implementation of the event sink: HTTP handlers return immediately and
// the worker ingests in the background.
type Producer struct {
	ch *amqp.Channel
}

func NewProducer(ch *amqp.Channel) *Producer {
	return &Producer{ch: ch}
}

func (p *Producer) Open(ctx context.Context, trackingID string, meta usecase.EventMeta) error {
	return p.publish(ctx, EngagementEvent{
		Kind:       "open",
		TrackingID: trackingID,
		UserAgent:  meta.UserAgent,
		IPAddress:  meta.IPAddress,
	})
}

func (p *Producer) Click(ctx context.Context, trackingID, url string, meta usecase.EventMeta) error {
	return p.publish(ctx, EngagementEvent{
		Kind:       "click",
		TrackingID: trackingID,
		URL:        url,
		UserAgent:  meta.UserAgent,
		IPAddress:  meta.IPAddress,
	})
}

func (p *Producer) Reply(ctx context.Context, messageID, content string) error {
	return p.publish(ctx, EngagementEvent{Kind: "reply", MessageID: messageID, Content: content})
}

func (p *Producer) Bounce(ctx context.Context, messageID, bounceType string) error {
	return p.publish(ctx, EngagementEvent{Kind: "bounce", MessageID: messageID, BounceType: bounceType})
}

func (p *Producer) Delivered(ctx context.Context, messageID string) error {
	return p.publish(ctx, EngagementEvent{Kind: "delivered", MessageID: messageID})
}

func (p *Producer) publish(ctx context.Context, event EngagementEvent) error {
	event.ReceivedAt = time.Now()

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal engagement event: %w", err)
	}

	err = p.ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("publish engagement event: %w", err)
	}
	return nil
}
