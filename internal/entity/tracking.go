package entity

import "time"

type EventType string

const (
	EventOpen      EventType = "open"
	EventClick     EventType = "click"
	EventReply     EventType = "reply"
	EventBounce    EventType = "bounce"
	EventDelivered EventType = "delivered"
)

// TrackingEvent is an append-only audit record of an engagement signal.
// Derived metrics are always recomputable from these rows plus messages.
type TrackingEvent struct {
	ID        int64     `json:"id"`
	MessageID string    `json:"message_id"`
	LeadID    string    `json:"lead_id"`
	EventType EventType `json:"event_type"`
	Payload   string    `json:"payload,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	IPAddress string    `json:"ip_address,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SendMetric is a per-day, per-channel aggregate counter row. Derived data:
// rebuilding it from messages and tracking events is always safe.
type SendMetric struct {
	Date         time.Time `json:"date"`
	Channel      Channel   `json:"channel"`
	SentCount    int       `json:"sent_count"`
	DeliveredCnt int       `json:"delivered_count"`
	OpenedCount  int       `json:"opened_count"`
	ClickedCount int       `json:"clicked_count"`
	RepliedCount int       `json:"replied_count"`
	BouncedCount int       `json:"bounced_count"`
}

// CampaignPerformance is a per-day, per-campaign aggregate of outcomes.
type CampaignPerformance struct {
	Campaign  string    `json:"campaign"`
	Date      time.Time `json:"date"`
	Sent      int       `json:"sent"`
	Delivered int       `json:"delivered"`
	Opened    int       `json:"opened"`
	Clicked   int       `json:"clicked"`
	Replied   int       `json:"replied"`
	Bounced   int       `json:"bounced"`
}
